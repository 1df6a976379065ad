package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/tuner/internal/events"
	"go_code_tuner/services/tuner/internal/lm"
	"go_code_tuner/services/tuner/internal/metrics"
	"go_code_tuner/services/tuner/internal/models"
	"go_code_tuner/services/tuner/internal/tokenizer"
)

var (
	ErrSessionClosed = errors.New("training session is closed")
	ErrNoTrainBlocks = errors.New("no training blocks")
)

type Result struct {
	RunID          string   `json:"run_id"`
	Steps          int      `json:"steps"`
	FinalTrainLoss float64  `json:"final_train_loss"`
	FinalEvalLoss  float64  `json:"final_eval_loss"`
	Checkpoints    []string `json:"checkpoints"`
}

// Session trains one model once. It is not safe for concurrent use.
type Session struct {
	runID     string
	opts      Options
	model     lm.LanguageModel
	tokenizer tokenizer.Tokenizer
	publisher events.Publisher
	closed    bool
}

func NewSession(runID string, opts Options, model lm.LanguageModel, tok tokenizer.Tokenizer, publisher events.Publisher) (*Session, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &Session{
		runID:     runID,
		opts:      opts,
		model:     model,
		tokenizer: tok,
		publisher: publisher,
	}, nil
}

func (s *Session) Options() Options {
	return s.opts
}

func (s *Session) Run(ctx context.Context, split models.Split) (*Result, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if len(split.Train) == 0 {
		return nil, ErrNoTrainBlocks
	}

	logger := log.GetLogger().WithField("run_id", s.runID)
	stepsPerEpoch := (len(split.Train) + s.opts.BatchSize - 1) / s.opts.BatchSize
	schedule := LinearSchedule{
		Base:   s.opts.LearningRate,
		Warmup: s.opts.WarmupSteps,
		Total:  s.opts.Epochs * stepsPerEpoch,
	}
	logger.WithFields(logrus.Fields{
		"train_blocks": len(split.Train),
		"test_blocks":  len(split.Test),
		"epochs":       s.opts.Epochs,
		"total_steps":  schedule.Total,
	}).Info("training started")
	s.publish(ctx, events.Event{Type: events.TypeRunStarted})

	rng := rand.New(rand.NewSource(s.opts.Seed))
	result := &Result{RunID: s.runID}
	order := make([]models.Block, len(split.Train))

	for epoch := 1; epoch <= s.opts.Epochs; epoch++ {
		for i, idx := range rng.Perm(len(split.Train)) {
			order[i] = split.Train[idx]
		}

		for start := 0; start < len(order); start += s.opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			batch := order[start:min(start+s.opts.BatchSize, len(order))]
			lr := schedule.At(result.Steps)

			s.model.ZeroGrad()
			loss, err := s.model.TrainStep(batch)
			if err != nil {
				return result, fmt.Errorf("step %d: %w", result.Steps+1, err)
			}
			s.model.Step(lr)
			result.Steps++
			result.FinalTrainLoss = loss
			metrics.Get().ObserveTrainingStep(loss, lr)

			if s.opts.LogInterval > 0 && result.Steps%s.opts.LogInterval == 0 {
				logger.WithFields(logrus.Fields{
					"epoch": epoch,
					"step":  result.Steps,
					"loss":  loss,
					"lr":    lr,
				}).Info("training step")
				s.publish(ctx, events.Event{Type: events.TypeStep, Epoch: epoch, Step: result.Steps, Loss: loss, LearningRate: lr})
			}

			if s.opts.EvalInterval > 0 && result.Steps%s.opts.EvalInterval == 0 {
				if err := s.evaluate(ctx, split.Test, epoch, result); err != nil {
					return result, err
				}
			}
		}

		if err := s.evaluate(ctx, split.Test, epoch, result); err != nil {
			return result, err
		}
		checkpoint, err := s.checkpoint(ctx, epoch, result.Steps)
		if err != nil {
			return result, err
		}
		result.Checkpoints = append(result.Checkpoints, checkpoint)
	}

	logger.WithFields(logrus.Fields{
		"steps":      result.Steps,
		"train_loss": result.FinalTrainLoss,
		"eval_loss":  result.FinalEvalLoss,
	}).Info("training finished")
	return result, nil
}

func (s *Session) evaluate(ctx context.Context, test []models.Block, epoch int, result *Result) error {
	if len(test) == 0 {
		return nil
	}

	loss, err := s.model.EvalLoss(test)
	if err != nil {
		return fmt.Errorf("evaluation at step %d: %w", result.Steps, err)
	}
	result.FinalEvalLoss = loss
	metrics.Get().ObserveEvalLoss(loss)
	log.GetLogger().WithFields(logrus.Fields{
		"run_id":    s.runID,
		"epoch":     epoch,
		"step":      result.Steps,
		"eval_loss": loss,
	}).Info("evaluation")
	s.publish(ctx, events.Event{Type: events.TypeEval, Epoch: epoch, Step: result.Steps, Loss: loss})
	return nil
}

type vocabularySaver interface {
	Save(dir string) error
}

func (s *Session) checkpoint(ctx context.Context, epoch, step int) (string, error) {
	dir := filepath.Join(s.opts.OutputDir, fmt.Sprintf("epoch_%d", epoch))
	if err := s.model.SaveAdapter(dir); err != nil {
		return "", fmt.Errorf("failed to save checkpoint %s: %w", dir, err)
	}
	if saver, ok := s.tokenizer.(vocabularySaver); ok {
		if err := saver.Save(dir); err != nil {
			return "", fmt.Errorf("failed to save vocabulary to %s: %w", dir, err)
		}
	}

	metrics.Get().ObserveCheckpoint()
	log.GetLogger().WithField("run_id", s.runID).WithField("dir", dir).Info("checkpoint saved")
	s.publish(ctx, events.Event{Type: events.TypeCheckpoint, Epoch: epoch, Step: step, Checkpoint: dir})
	return dir, nil
}

func (s *Session) publish(ctx context.Context, event events.Event) {
	event.RunID = s.runID
	event.Time = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.GetLogger().WithError(err).Debug("training event dropped")
	}
}

// Close ends the session; Run fails afterwards.
func (s *Session) Close() {
	s.closed = true
	s.model = nil
	s.tokenizer = nil
}
