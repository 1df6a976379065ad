package trainer

import (
	"fmt"

	"go_code_tuner/services/tuner/internal/config"
)

// Options is fixed for the lifetime of a Session.
type Options struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	WarmupSteps  int
	EvalInterval int
	LogInterval  int
	OutputDir    string
	Seed         int64
}

func OptionsFromConfig(cfg config.TrainingSection) Options {
	return Options{
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		WarmupSteps:  cfg.WarmupSteps,
		EvalInterval: cfg.EvalInterval,
		LogInterval:  cfg.LogInterval,
		OutputDir:    cfg.OutputDir,
		Seed:         cfg.Seed,
	}
}

func (o Options) validate() error {
	switch {
	case o.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", o.Epochs)
	case o.BatchSize <= 0:
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	case o.LearningRate <= 0:
		return fmt.Errorf("learning rate must be positive, got %v", o.LearningRate)
	case o.WarmupSteps < 0:
		return fmt.Errorf("warmup steps must not be negative, got %d", o.WarmupSteps)
	case o.OutputDir == "":
		return fmt.Errorf("output dir is required")
	}
	return nil
}
