package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go_code_tuner/pkg/kafka/mocks"
	"go_code_tuner/pkg/retry"
)

func fastRetry() retry.Options {
	return retry.Options{MaxRetries: 3, Strategy: retry.ConstantBackoff(time.Millisecond)}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockProducer(ctrl)
	publisher := NewKafkaPublisher(producer, "training-events", fastRetry())

	gomock.InOrder(
		producer.EXPECT().Send("training-events", []byte("run-1"), gomock.Any()).Return(errors.New("queue full")),
		producer.EXPECT().Send("training-events", []byte("run-1"), gomock.Any()).DoAndReturn(
			func(topic string, key, value []byte) error {
				var event Event
				require.NoError(t, json.Unmarshal(value, &event))
				assert.Equal(t, TypeStep, event.Type)
				assert.Equal(t, 12, event.Step)
				assert.False(t, event.Time.IsZero())
				return nil
			}),
	)

	err := publisher.Publish(context.Background(), Event{Type: TypeStep, RunID: "run-1", Step: 12, Loss: 1.5})
	require.NoError(t, err)
}

func TestKafkaPublisher_GivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockProducer(ctrl)
	publisher := NewKafkaPublisher(producer, "training-events", fastRetry())

	producer.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(3)
	producer.EXPECT().Close()

	err := publisher.Publish(context.Background(), Event{Type: TypeEval, RunID: "run-1"})
	require.Error(t, err)
	publisher.Close()
}

func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher()
	require.NoError(t, publisher.Publish(context.Background(), Event{Type: TypeStep}))
	publisher.Close()
}

func message(t *testing.T, value []byte) *kafka.Message {
	t.Helper()
	topic := "training-events"
	return &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic}, Value: value}
}

func TestWatcher_HandlesAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	consumer := mocks.NewMockConsumer(ctrl)
	channel := make(chan *kafka.Message)

	good, err := json.Marshal(Event{Type: TypeCheckpoint, RunID: "run-1", Checkpoint: "out/epoch_1"})
	require.NoError(t, err)
	rejected, err := json.Marshal(Event{Type: TypeRunFailed, RunID: "run-1"})
	require.NoError(t, err)

	goodMessage := message(t, good)
	consumer.EXPECT().Channel().Return(channel).AnyTimes()
	consumer.EXPECT().CommitMessage(goodMessage).Return(nil)
	consumer.EXPECT().Start(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		channel <- goodMessage
		channel <- message(t, []byte("not json"))
		channel <- message(t, rejected)
		return nil
	})

	var mu sync.Mutex
	var handled []Event
	watcher := NewWatcher(consumer, func(event Event) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, event)
		if event.Type == TypeRunFailed {
			return errors.New("rejected")
		}
		return nil
	}, 1)

	require.NoError(t, watcher.Start(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, handled, 2)
	assert.Equal(t, "out/epoch_1", handled[0].Checkpoint)
}

func TestWatcher_ConsumerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	consumer := mocks.NewMockConsumer(ctrl)
	channel := make(chan *kafka.Message)

	consumer.EXPECT().Channel().Return(channel).AnyTimes()
	consumer.EXPECT().Start(gomock.Any()).Return(errors.New("broker unreachable"))
	consumer.EXPECT().Close().Return(nil)

	watcher := NewWatcher(consumer, func(Event) error { return nil }, 2)
	require.Error(t, watcher.Start(context.Background()))
	watcher.Close()
}
