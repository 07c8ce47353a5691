package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for different phases of a run.
type TimingStats struct {
	TotalTime           time.Duration
	DataLoadingTime     time.Duration
	ModelInitTime       time.Duration
	ForwardPassTime     time.Duration
	BackwardPassTime    time.Duration
	UpdateTime          time.Duration
	LossComputationTime time.Duration
	EvaluationTime      time.Duration
	// Steps counts mini-batch updates.
	Steps int
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats) {
	if !Verbose || stats == nil {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Steps completed: %d\n", stats.Steps)
	if stats.Steps > 0 {
		fmt.Fprintf(Output, "Average time per step: %v\n", (stats.ForwardPassTime+stats.BackwardPassTime+stats.UpdateTime)/time.Duration(stats.Steps))
	}
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	printShare("Data loading", stats.DataLoadingTime, stats.TotalTime)
	printShare("Model initialization", stats.ModelInitTime, stats.TotalTime)
	printShare("Forward pass", stats.ForwardPassTime, stats.TotalTime)
	printShare("Backward pass", stats.BackwardPassTime, stats.TotalTime)
	printShare("Parameter updates", stats.UpdateTime, stats.TotalTime)
	printShare("Loss computation", stats.LossComputationTime, stats.TotalTime)
	printShare("Evaluation", stats.EvaluationTime, stats.TotalTime)
	if stats.Steps > 0 {
		fmt.Fprintln(Output, "\nPerformance metrics:")
		fmt.Fprintf(Output, "  Average forward pass time: %v\n", stats.ForwardPassTime/time.Duration(stats.Steps))
		fmt.Fprintf(Output, "  Average backward pass time: %v\n", stats.BackwardPassTime/time.Duration(stats.Steps))
		fmt.Fprintf(Output, "  Average update time: %v\n", stats.UpdateTime/time.Duration(stats.Steps))
	}
}

func printShare(name string, d, total time.Duration) {
	share := 0.0
	if total > 0 {
		share = float64(d) / float64(total) * 100
	}
	fmt.Fprintf(Output, "  %s: %v (%.1f%%)\n", name, d, share)
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
