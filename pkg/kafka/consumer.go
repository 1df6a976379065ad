package kafka

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const pollTimeoutMilliSeconds = 2000

type kafkaConsumer struct {
	conf         ConsumerConfig
	opts         *options
	client       *kafka.Consumer
	messagesChan chan *kafka.Message
}

func NewConsumer(conf ConsumerConfig, opts ...Option) (Consumer, error) {
	client, err := kafka.NewConsumer(&kafka.ConfigMap{
		bootstrapServersKey: conf.Brokers,
		groupIdKey:          conf.GroupID,
		autoOffsetResetKey:  conf.AutoOffset,
		enableAutoCommitKey: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}

	if err := client.SubscribeTopics(conf.Topics, nil); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to subscribe to topics: %w", err)
	}

	return &kafkaConsumer{
		conf:         conf,
		opts:         buildOptions(opts),
		client:       client,
		messagesChan: make(chan *kafka.Message),
	}, nil
}

// Start polls until ctx is done or the broker reports an error.
func (c *kafkaConsumer) Start(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		ev := c.client.Poll(pollTimeoutMilliSeconds)
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				c.opts.observe(e.TopicPartition.Error)
				return e.TopicPartition.Error
			}
			c.opts.observe(nil)
			select {
			case c.messagesChan <- e:
			case <-ctx.Done():
				return nil
			}
		case kafka.Error:
			c.opts.observe(e)
			return e
		case nil:
		}
	}
}

func (c *kafkaConsumer) Close() error {
	close(c.messagesChan)
	return c.client.Close()
}

func (c *kafkaConsumer) CommitMessage(msg *kafka.Message) error {
	_, err := c.client.CommitMessage(msg)
	return err
}

func (c *kafkaConsumer) Channel() chan *kafka.Message {
	return c.messagesChan
}
