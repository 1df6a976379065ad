package events

import (
	"context"
	"time"
)

type Type string

const (
	TypeRunStarted  Type = "run_started"
	TypeStep        Type = "step"
	TypeEval        Type = "eval"
	TypeCheckpoint  Type = "checkpoint"
	TypeRunFinished Type = "run_finished"
	TypeRunFailed   Type = "run_failed"
)

type Event struct {
	Type         Type      `json:"type"`
	RunID        string    `json:"run_id"`
	Epoch        int       `json:"epoch,omitempty"`
	Step         int       `json:"step,omitempty"`
	Loss         float64   `json:"loss,omitempty"`
	LearningRate float64   `json:"learning_rate,omitempty"`
	Checkpoint   string    `json:"checkpoint,omitempty"`
	Message      string    `json:"message,omitempty"`
	Time         time.Time `json:"time"`
}

//go:generate mockgen -source=event.go -destination=mocks/publisher_mock.go -package=mocks

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}

func (noopPublisher) Close() {}
