// train: mini-batch trainer for a sigmoid/softmax feedforward classifier
//
// Usage:
//
//	train --config=configs/cifar.yaml --epochs=30 --lr=0.0005 --optimizer=adam
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"mlptrain/m"
	"mlptrain/utils"
)

var (
	configFile     = flag.String("config", "", "YAML config file (defaults are used when empty)")
	architecture   = flag.String("arch", "", "Layer sizes, e.g. \"3072,512,256,128,10\"")
	trainFile      = flag.String("train", "", "Training CSV (label,x1,...,xn)")
	testFile       = flag.String("test", "", "Test CSV evaluated after training")
	optimizer      = flag.String("optimizer", "", "Optimizer: sgd, sgd-l2, adam")
	epochs         = flag.Int("epochs", 0, "Number of training epochs")
	batchSize      = flag.Int("batch", 0, "Mini-batch size")
	learningRate   = flag.Float64("lr", 0, "Base learning rate")
	decayRate      = flag.Float64("decay", 0, "Exponential learning-rate decay per epoch")
	regularization = flag.String("regularization", "", "Use the L2-regularized backward pass (true/false)")
	seed           = flag.Int64("seed", 0, "Random seed")
	metricsFile    = flag.String("metrics", "", "Write per-epoch metrics CSV here")
	verbose        = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	utils.Verbose = *verbose && cfg.Verbose
	opt, err := m.ParseOptimizer(cfg.Optimizer)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Architecture:   %v\n", cfg.Architecture)
	fmt.Printf("  Optimizer:      %s\n", opt)
	fmt.Printf("  Epochs:         %d\n", cfg.Epochs)
	fmt.Printf("  Batch size:     %d\n", cfg.BatchSize)
	fmt.Printf("  Learning rate:  %g (decay %g)\n", cfg.LearningRate, cfg.DecayRate)
	fmt.Printf("  Regularization: %v (lambda %g)\n", cfg.Regularization, cfg.Lambda)
	fmt.Println()

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	inputs := cfg.Architecture[0]
	classes := cfg.Architecture[len(cfg.Architecture)-1]

	start := time.Now()
	all, err := m.LoadCSVFile(cfg.TrainFile, inputs, classes, cfg.MaxValue)
	if err != nil {
		log.Fatalf("loading training data: %v", err)
	}
	train, val, err := m.SplitValidation(all, cfg.ValFraction)
	if err != nil {
		log.Fatalf("splitting validation data: %v", err)
	}
	stats.DataLoadingTime += time.Since(start)
	log.Printf("train_examples=%d val_examples=%d", train.Len(), val.Len())

	start = time.Now()
	net, err := m.NewNetwork(cfg.Architecture, opt, m.WithSeed(cfg.Seed), m.WithLambda(cfg.Lambda))
	if err != nil {
		log.Fatalf("building network: %v", err)
	}
	stats.ModelInitTime += time.Since(start)

	var logger *log.Logger
	if utils.Verbose {
		logger = log.Default()
	}
	history, err := net.Train(train, val, m.TrainConfig{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		DecayRate:    cfg.DecayRate,
		Regularized:  cfg.Regularization,
		Logger:       logger,
		Stats:        stats,
	})
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if cfg.MetricsFile != "" {
		if err := m.SaveMetrics(cfg.MetricsFile, history); err != nil {
			log.Fatalf("saving metrics: %v", err)
		}
		log.Printf("metrics written to %s", cfg.MetricsFile)
	}

	if cfg.TestFile != "" {
		start = time.Now()
		test, err := m.LoadCSVFile(cfg.TestFile, inputs, classes, cfg.MaxValue)
		if err != nil {
			log.Fatalf("loading test data: %v", err)
		}
		stats.DataLoadingTime += time.Since(start)

		start = time.Now()
		loss, acc, err := net.Evaluate(test)
		if err != nil {
			log.Fatalf("evaluating test data: %v", err)
		}
		stats.EvaluationTime += time.Since(start)
		fmt.Printf("Test loss: %.6f\n", loss)
		fmt.Printf("Accuracy %.2f%%\n", acc*100)
	}

	stats.TotalTime = time.Since(totalStart)
	fmt.Printf("\nTraining complete! Total time: %.2fs\n", stats.TotalTime.Seconds())
	utils.PrintTimingStats(stats)
}

func loadConfig() (*utils.Config, error) {
	var cfg *utils.Config
	if *configFile != "" {
		loaded, err := utils.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := utils.DefaultConfig()
		cfg = &def
	}

	err := cfg.ApplyOverrides(utils.Overrides{
		Architecture:   *architecture,
		TrainFile:      *trainFile,
		TestFile:       *testFile,
		Optimizer:      *optimizer,
		Epochs:         *epochs,
		BatchSize:      *batchSize,
		LearningRate:   *learningRate,
		DecayRate:      *decayRate,
		Regularization: *regularization,
		Seed:           *seed,
		MetricsFile:    *metricsFile,
	})
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
