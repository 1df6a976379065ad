package lm

import "go_code_tuner/services/tuner/internal/models"

//go:generate mockgen -destination=mocks/model_mock.go -package=mocks . LanguageModel

// LanguageModel is a causal language model with a trainable adapter.
type LanguageModel interface {
	VocabSize() int
	// TrainStep accumulates adapter gradients for the batch and returns its mean loss.
	TrainStep(batch []models.Block) (float64, error)
	EvalLoss(batch []models.Block) (float64, error)
	NextTokenLogits(ids []int) []float64
	Step(learningRate float64)
	ZeroGrad()
	SaveAdapter(dir string) error
	LoadAdapter(dir string) error
}
