package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go_code_tuner/pkg/kafka"
	"go_code_tuner/pkg/log"
	"go_code_tuner/pkg/retry"
)

type KafkaPublisher struct {
	producer     kafka.Producer
	topic        string
	retryOptions retry.Options
}

func NewKafkaPublisher(producer kafka.Producer, topic string, retryOptions retry.Options) *KafkaPublisher {
	if retryOptions.Strategy == nil {
		retryOptions.Strategy = retry.ExponentialJitterBackoff(200*time.Millisecond, 2*time.Second)
	}
	return &KafkaPublisher{
		producer:     producer,
		topic:        topic,
		retryOptions: retryOptions,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	err = retry.DoErr(ctx, p.retryOptions, func() error {
		return p.producer.Send(p.topic, []byte(event.RunID), value)
	})
	if err != nil {
		log.GetLogger().WithError(err).WithField("type", event.Type).Error("failed to publish training event")
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.producer.Close()
}
