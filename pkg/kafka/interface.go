package kafka

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type Consumer interface {
	Start(ctx context.Context) error
	Close() error
	CommitMessage(msg *kafka.Message) error
	Channel() chan *kafka.Message
}

type Producer interface {
	Send(topic string, key, value []byte) error
	Close()
}
