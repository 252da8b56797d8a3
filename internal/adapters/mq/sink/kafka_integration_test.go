//go:build integration

package sink_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/okian/fitquest/internal/adapters/mq/sink"
	"github.com/okian/fitquest/internal/domain/model"
)

func TestKafkaSinkPublishesWorkoutEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.Run(ctx, "confluentinc/confluent-local:7.5.0",
		testcontainers.WithEnv(map[string]string{"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true"}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	const topic = "fitquest.workouts"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
	_ = conn.Close()

	s := sink.NewKafka(sink.NewKafkaWriter(brokers, topic), topic)
	defer s.Close()

	evt := model.WorkoutRecorded{
		EventID:      "evt-int",
		WorkoutID:    1,
		UserID:       "user-1",
		ExerciseType: "running",
		Duration:     30,
		Intensity:    "moderate",
		PointsEarned: 18,
		TotalPoints:  18,
		OccurredAt:   time.Now().UTC(),
	}
	require.NoError(t, s.Publish(ctx, evt))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)

	require.Equal(t, "user-1", string(msg.Key))
	var got model.WorkoutRecorded
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.Equal(t, evt.EventID, got.EventID)
	require.Equal(t, int64(18), got.PointsEarned)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, sink.EventType, headers["type"])
	require.Equal(t, "evt-int", headers["event_id"])
}
