package utils

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds training configuration
type Config struct {
	Architecture   []int   `yaml:"architecture"`
	TrainFile      string  `yaml:"train_file"`
	TestFile       string  `yaml:"test_file"`
	MaxValue       float64 `yaml:"max_value"`
	ValFraction    float64 `yaml:"val_fraction"`
	Optimizer      string  `yaml:"optimizer"`
	Epochs         int     `yaml:"epochs"`
	BatchSize      int     `yaml:"batch_size"`
	LearningRate   float64 `yaml:"learning_rate"`
	DecayRate      float64 `yaml:"decay_rate"`
	Regularization bool    `yaml:"regularization"`
	Lambda         float64 `yaml:"lambda"`
	Seed           int64   `yaml:"seed"`
	MetricsFile    string  `yaml:"metrics_file"`
	Verbose        bool    `yaml:"verbose"`
}

// DefaultConfig mirrors the reference CIFAR-10 run.
func DefaultConfig() Config {
	return Config{
		Architecture:   []int{3072, 512, 256, 128, 10},
		TrainFile:      "data/train.csv",
		TestFile:       "data/test.csv",
		MaxValue:       255,
		ValFraction:    0.1,
		Optimizer:      "adam",
		Epochs:         30,
		BatchSize:      64,
		LearningRate:   0.0005,
		DecayRate:      0.005,
		Regularization: true,
		Lambda:         0.05,
		Seed:           42,
		Verbose:        true,
	}
}

// Overrides captures CLI supplied values. Zero values leave the config alone.
type Overrides struct {
	Architecture   string
	TrainFile      string
	TestFile       string
	Optimizer      string
	Epochs         int
	BatchSize      int
	LearningRate   float64
	DecayRate      float64
	Regularization string
	Seed           int64
	MetricsFile    string
}

// Load reads a YAML config on top of DefaultConfig and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Architecture != "" {
		arch, err := ParseArchitecture(o.Architecture)
		if err != nil {
			return errors.Wrap(err, "architecture override")
		}
		c.Architecture = arch
	}
	if o.TrainFile != "" {
		c.TrainFile = o.TrainFile
	}
	if o.TestFile != "" {
		c.TestFile = o.TestFile
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.DecayRate != 0 {
		c.DecayRate = o.DecayRate
	}
	if o.Regularization != "" {
		v, err := strconv.ParseBool(o.Regularization)
		if err != nil {
			return errors.Wrap(err, "regularization override")
		}
		c.Regularization = v
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.MetricsFile != "" {
		c.MetricsFile = o.MetricsFile
	}
	return nil
}

// ParseArchitecture parses architecture string into slice of integers.
// Sizes may be separated by spaces or commas.
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.FieldsFunc(archStr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is nil")
	}
	if len(config.Architecture) < 2 {
		return fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}
	for i, n := range config.Architecture {
		if n <= 0 {
			return fmt.Errorf("layer %d must be positive (got %d)", i, n)
		}
	}
	if config.TrainFile == "" {
		return fmt.Errorf("train_file must be set")
	}
	if config.MaxValue <= 0 {
		return fmt.Errorf("max_value must be positive (got %g)", config.MaxValue)
	}
	if config.ValFraction <= 0 || config.ValFraction >= 1 {
		return fmt.Errorf("val_fraction must be in (0, 1) (got %g)", config.ValFraction)
	}
	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if config.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}
	if math.IsNaN(config.DecayRate) || math.IsInf(config.DecayRate, 0) {
		return fmt.Errorf("decay rate must be finite")
	}
	if config.Lambda < 0 {
		return fmt.Errorf("lambda must not be negative")
	}
	return nil
}
