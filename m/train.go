package m

import (
	"log"
	"math"
	"time"

	"mlptrain/utils"
)

// TrainConfig holds the knobs of one Train call.
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	DecayRate    float64
	// Regularized selects the L2-regularized backward pass. It is independent
	// of the Regularized optimizer.
	Regularized bool
	// FirstIteration is the schedule index used by the first epoch. Zero
	// means 1.
	FirstIteration int

	Logger    *log.Logger
	Stats     *utils.TimingStats
	OnEpoch   func(EpochMetrics)
	OnWarning func(NumericWarning)
}

// EpochMetrics is recorded once per epoch.
type EpochMetrics struct {
	Epoch        int
	TrainLoss    float64
	ValLoss      float64
	ValAccuracy  float64
	LearningRate float64
	Clipped      int
}

func (c *TrainConfig) validate() error {
	if c.Epochs <= 0 {
		return configErrorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return configErrorf("batch size must be > 0 (got %d)", c.BatchSize)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return configErrorf("learning rate must be a finite value > 0 (got %g)", c.LearningRate)
	}
	if math.IsNaN(c.DecayRate) || math.IsInf(c.DecayRate, 0) {
		return configErrorf("decay rate must be finite (got %g)", c.DecayRate)
	}
	if c.FirstIteration < 0 {
		return configErrorf("first iteration must be >= 0 (got %d)", c.FirstIteration)
	}
	return nil
}

// Train runs cfg.Epochs passes of mini-batch gradient descent over train and
// scores val after every epoch. Batches are contiguous column ranges; the last
// one is shorter when the split size is not a multiple of the batch size.
//
// Arguments are checked before any parameter is touched. Parameters are
// updated in place, batch after batch.
func (net *Network) Train(train, val Split, cfg TrainConfig) ([]EpochMetrics, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := net.checkSplit("train", train); err != nil {
		return nil, err
	}
	if err := net.checkSplit("validation", val); err != nil {
		return nil, err
	}

	iteration := cfg.FirstIteration
	if iteration == 0 {
		iteration = 1
	}
	schedule := Schedule{Base: cfg.LearningRate, Decay: cfg.DecayRate}
	n := train.Len()
	l2 := 0.0
	if cfg.Regularized {
		l2 = net.lambda / float64(n)
	}

	history := make([]EpochMetrics, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		eta := schedule.At(iteration)
		lossSum := 0.0
		batches := 0
		clipped := 0

		for k := 0; k < n; k += cfg.BatchSize {
			end := k + cfg.BatchSize
			if end > n {
				end = n
			}
			batch := train.columns(k, end)

			start := time.Now()
			pass := net.forward(batch.Features)
			cfg.record(func(s *utils.TimingStats) { s.ForwardPassTime += time.Since(start) })

			start = time.Now()
			grads := net.backward(pass, batch.Labels, l2)
			cfg.record(func(s *utils.TimingStats) { s.BackwardPassTime += time.Since(start) })

			start = time.Now()
			net.update(grads, eta, n)
			cfg.record(func(s *utils.TimingStats) { s.UpdateTime += time.Since(start) })

			start = time.Now()
			loss, c := crossEntropy(batch.Labels, pass.Output)
			cfg.record(func(s *utils.TimingStats) { s.LossComputationTime += time.Since(start) })

			lossSum += loss
			clipped += c
			batches++
		}
		iteration++

		start := time.Now()
		valLoss, valAcc, valClipped := net.evaluate(val)
		cfg.record(func(s *utils.TimingStats) { s.EvaluationTime += time.Since(start) })

		metrics := EpochMetrics{
			Epoch:        epoch,
			TrainLoss:    lossSum / float64(batches),
			ValLoss:      valLoss,
			ValAccuracy:  valAcc,
			LearningRate: eta,
			Clipped:      clipped + valClipped,
		}
		history = append(history, metrics)

		if metrics.Clipped > 0 {
			cfg.warn(NumericWarning{Op: "cross-entropy", Clipped: metrics.Clipped})
		}
		if cfg.Logger != nil {
			cfg.Logger.Printf("epoch=%d/%d eta=%.6g train_loss=%.4f val_loss=%.4f val_accuracy=%.4f",
				epoch, cfg.Epochs, eta, metrics.TrainLoss, metrics.ValLoss, metrics.ValAccuracy)
		}
		if cfg.OnEpoch != nil {
			cfg.OnEpoch(metrics)
		}
	}

	if cfg.Stats != nil {
		cfg.Stats.Steps += cfg.Epochs * batchCount(n, cfg.BatchSize)
	}
	return history, nil
}

func (c *TrainConfig) record(fn func(*utils.TimingStats)) {
	if c.Stats != nil {
		fn(c.Stats)
	}
}

func (c *TrainConfig) warn(w NumericWarning) {
	if c.Logger != nil {
		c.Logger.Printf("warning: %s", w)
	}
	if c.OnWarning != nil {
		c.OnWarning(w)
	}
}

func batchCount(n, size int) int {
	return (n + size - 1) / size
}
