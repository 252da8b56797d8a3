// Package sink delivers workout events to Kafka or to the log.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/pkg/logger"
)

// EventType is the type header carried by every published message.
const EventType = "workout.recorded"

// MessageWriter is the subset of *kafka.Writer the Kafka sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON keyed by user id, so one user's events
// stay ordered within a partition.
type Kafka struct {
	writer MessageWriter
	topic  string
}

// NewKafkaWriter builds a synchronous writer that waits for all replicas.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewKafka wraps a writer.
func NewKafka(w MessageWriter, topic string) *Kafka {
	return &Kafka{writer: w, topic: topic}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Publish(ctx context.Context, e model.WorkoutRecorded) error { //nolint:gocritic // hugeParam: events travel by value
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.UserID),
		Value: body,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventType)},
			{Key: "event_id", Value: []byte(e.EventID)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: topic %s: %w", ErrPublish, k.topic, err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.writer.Close() }

// Log writes events to the application log. Used when no brokers are set.
type Log struct {
	logger logger.Logger
}

// NewLog creates a log sink.
func NewLog(l logger.Logger) *Log {
	return &Log{logger: l}
}

func (s *Log) Name() string { return "log" }

func (s *Log) Publish(ctx context.Context, e model.WorkoutRecorded) error { //nolint:gocritic // hugeParam: events travel by value
	s.logger.Info(ctx, EventType,
		logger.String("eventID", e.EventID),
		logger.String("userID", e.UserID),
		logger.Int64("workoutID", e.WorkoutID),
		logger.Int64("points", e.PointsEarned),
		logger.Int64("totalPoints", e.TotalPoints),
		logger.Int("streak", e.CurrentStreak),
	)
	return nil
}

func (s *Log) Close() error { return nil }
