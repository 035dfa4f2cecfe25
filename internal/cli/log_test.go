package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("loaded index") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("loaded repository") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("loaded repository") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("version mismatch") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	if err := setLogFormat(l, logFormatJSON); err != nil {
		t.Fatal(err)
	}
	l.Info("listening", "addr", ":8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json output %q: %v", buf.String(), err)
	}
	if entry["msg"] != "listening" || entry["addr"] != ":8080" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	if err := setLogFormat(l, logFormatLogfmt); err != nil {
		t.Fatal(err)
	}
	l.Info("listening", "addr", ":8080")
	if !strings.Contains(buf.String(), "msg=listening") {
		t.Errorf("logfmt output = %q", buf.String())
	}

	if err := setLogFormat(l, "xml"); !pkgerrors.Is(err, pkgerrors.ErrCodeInvalidFormat) {
		t.Errorf("setLogFormat(xml) = %v", err)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Analysed curl 8.5.0-r0")

	if !strings.Contains(buf.String(), "Analysed curl 8.5.0-r0 (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should give log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
