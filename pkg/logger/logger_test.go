package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)
		ctx := context.Background()

		Convey("Info records carry fields and the caller", func() {
			Get().Info(ctx, "workout recorded", String("user", "u-1"), Int("points", 18))
			out := buf.String()
			So(out, ShouldContainSubstring, "workout recorded")
			So(out, ShouldContainSubstring, "user=u-1")
			So(out, ShouldContainSubstring, "points=18")
			So(out, ShouldContainSubstring, "logger_test.go")
		})

		Convey("Debug is suppressed at info level", func() {
			Get().Debug(ctx, "noisy")
			So(buf.String(), ShouldNotContainSubstring, "noisy")
		})

		Convey("Named loggers tag their records", func() {
			Named("coach").Warn(ctx, "slow reply")
			So(buf.String(), ShouldContainSubstring, "logger=coach")
		})

		Convey("JSON output is selectable", func() {
			buf.Reset()
			So(Init(WithOutput(&buf), WithJSON(true)), ShouldBeNil)
			Get().Error(ctx, "boom", Bool("retry", false))
			So(buf.String(), ShouldStartWith, "{")
			So(buf.String(), ShouldContainSubstring, `"retry":false`)
		})
	})

	Convey("Given a file sink", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "logs", "fitquest.log")
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFile(path), WithRotation(1, 1, 1, false)), ShouldBeNil)

		Get().Info(context.Background(), "to both sinks")
		So(Sync(), ShouldBeNil)

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "to both sinks")
		So(buf.String(), ShouldContainSubstring, "to both sinks")
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Known levels parse and unknown ones fail", t, func() {
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}
