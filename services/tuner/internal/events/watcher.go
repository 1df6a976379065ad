package events

import (
	"context"
	"encoding/json"
	"sync"

	"go_code_tuner/pkg/kafka"
	"go_code_tuner/pkg/log"
)

type Handler func(event Event) error

// Watcher consumes training events and commits each one after its handler succeeds.
type Watcher struct {
	consumer    kafka.Consumer
	handler     Handler
	workerCount int
}

func NewWatcher(consumer kafka.Consumer, handler Handler, workerCount int) *Watcher {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Watcher{
		consumer:    consumer,
		handler:     handler,
		workerCount: workerCount,
	}
}

// Start blocks until the consumer stops and all workers have drained.
func (w *Watcher) Start(ctx context.Context) error {
	logger := log.GetLogger()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case message, ok := <-w.consumer.Channel():
					if !ok {
						return
					}

					var event Event
					if err := json.Unmarshal(message.Value, &event); err != nil {
						logger.WithError(err).Error("failed to unmarshal event")
						continue
					}

					if err := w.handler(event); err != nil {
						logger.WithError(err).Warn("failed to handle event")
						continue
					}

					if err := w.consumer.CommitMessage(message); err != nil {
						logger.WithError(err).Error("failed to commit message")
					}
				}
			}
		}()
	}

	err := w.consumer.Start(ctx)
	cancel()
	wg.Wait()
	return err
}

func (w *Watcher) Close() {
	if err := w.consumer.Close(); err != nil {
		log.GetLogger().WithError(err).Warn("failed to close consumer")
	}
}
