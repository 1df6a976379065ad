package internal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/tuner/internal/errors"
	"go_code_tuner/services/tuner/internal/models"
)

type pipelineRunner interface {
	Run(ctx context.Context, runID string) (*models.RunReport, *Trained, error)
}

// Runner executes at most one pipeline run at a time in the background.
type Runner struct {
	ctx      context.Context
	pipeline pipelineRunner
	onTrain  func(*Trained)

	mu      sync.Mutex
	current *models.RunStatus
	wg      sync.WaitGroup
}

// NewRunner binds background runs to ctx. onTrain, if set, receives the model of every successful run.
func NewRunner(ctx context.Context, pipeline pipelineRunner, onTrain func(*Trained)) *Runner {
	return &Runner{
		ctx:      ctx,
		pipeline: pipeline,
		onTrain:  onTrain,
	}
}

func (r *Runner) Start() (models.RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.State == models.RunStateRunning {
		return *r.current, errors.ErrRunInProgress
	}

	status := &models.RunStatus{
		ID:        uuid.New().String(),
		State:     models.RunStateRunning,
		StartedAt: time.Now().UTC(),
	}
	r.current = status

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		report, trained, err := r.pipeline.Run(r.ctx, status.ID)
		if err == nil && r.onTrain != nil {
			r.onTrain(trained)
		}
		r.finish(status, report, err)
	}()

	return *status, nil
}

func (r *Runner) finish(status *models.RunStatus, report *models.RunReport, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := time.Now().UTC()
	status.FinishedAt = &finished
	status.Report = report
	status.State = models.RunStateSucceeded
	if err != nil {
		status.State = models.RunStateFailed
		status.Error = err.Error()
		log.GetLogger().WithError(err).WithField("run_id", status.ID).Error("pipeline run failed")
	}
}

func (r *Runner) Current() (models.RunStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return models.RunStatus{}, false
	}
	return *r.current, true
}

// Wait blocks until the background run, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
