package sink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/fitquest/internal/adapters/mq/sink"
	"github.com/okian/fitquest/internal/domain/model"
	"github.com/okian/fitquest/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleEvent() model.WorkoutRecorded {
	return model.WorkoutRecorded{
		EventID:       "evt-1",
		WorkoutID:     7,
		UserID:        "alice",
		ExerciseType:  "run",
		Duration:      30,
		Intensity:     "moderate",
		PointsEarned:  18,
		TotalPoints:   118,
		CurrentStreak: 3,
		OccurredAt:    time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaSink(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Kafka sink over a fake writer", t, func() {
		w := &fakeWriter{}
		k := sink.NewKafka(w, "fitquest.workouts")
		So(k.Name(), ShouldEqual, "kafka")

		Convey("An event becomes one JSON message keyed by user", func() {
			So(k.Publish(ctx, sampleEvent()), ShouldBeNil)
			So(w.msgs, ShouldHaveLength, 1)

			msg := w.msgs[0]
			So(string(msg.Key), ShouldEqual, "alice")
			So(msg.Headers[0].Key, ShouldEqual, "type")
			So(string(msg.Headers[0].Value), ShouldEqual, sink.EventType)

			var decoded model.WorkoutRecorded
			So(json.Unmarshal(msg.Value, &decoded), ShouldBeNil)
			So(decoded, ShouldResemble, sampleEvent())
		})

		Convey("Writer failures are wrapped", func() {
			w.err = errors.New("no leader")
			err := k.Publish(ctx, sampleEvent())
			So(errors.Is(err, sink.ErrPublish), ShouldBeTrue)
		})

		Convey("Close closes the writer", func() {
			So(k.Close(), ShouldBeNil)
			So(w.closed, ShouldBeTrue)
		})
	})

	Convey("NewKafkaWriter targets the configured topic", t, func() {
		w := sink.NewKafkaWriter([]string{"localhost:9092"}, "fitquest.workouts")
		So(w.Topic, ShouldEqual, "fitquest.workouts")
		So(w.RequiredAcks, ShouldEqual, kafka.RequireAll)
	})
}

func TestLogSink(t *testing.T) {
	Convey("The log sink writes one line per event", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithOutput(&buf)), ShouldBeNil)

		s := sink.NewLog(logger.Get().Named("events"))
		So(s.Publish(context.Background(), sampleEvent()), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, sink.EventType)
		So(buf.String(), ShouldContainSubstring, "userID=alice")
		So(s.Name(), ShouldEqual, "log")
	})
}
