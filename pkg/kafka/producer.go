package kafka

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const flushTimeoutMilliSeconds = 5000

type kafkaProducer struct {
	conf   ProducerConfig
	opts   *options
	client *kafka.Producer
}

func NewProducer(conf ProducerConfig, opts ...Option) (Producer, error) {
	configMap := &kafka.ConfigMap{
		bootstrapServersKey: conf.Brokers,
	}
	if conf.ClientID != "" {
		_ = configMap.SetKey(clientIdKey, conf.ClientID)
	}

	client, err := kafka.NewProducer(configMap)
	if err != nil {
		return nil, err
	}

	return &kafkaProducer{
		conf:   conf,
		opts:   buildOptions(opts),
		client: client,
	}, nil
}

func (p *kafkaProducer) Send(topic string, key, value []byte) error {
	err := p.client.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}, nil)
	p.opts.observe(err)
	return err
}

func (p *kafkaProducer) Close() {
	p.client.Flush(flushTimeoutMilliSeconds)
	p.client.Close()
}
