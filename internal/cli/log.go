package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
)

// Log formats accepted by --log-format.
const (
	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

// newLogger returns a logger writing to w at level, stamped like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// setLogFormat switches l to one of the --log-format encodings.
func setLogFormat(l *log.Logger, format string) error {
	switch format {
	case "", logFormatText:
		l.SetFormatter(log.TextFormatter)
	case logFormatJSON:
		l.SetFormatter(log.JSONFormatter)
	case logFormatLogfmt:
		l.SetFormatter(log.LogfmtFormatter)
	default:
		return pkgerrors.New(pkgerrors.ErrCodeInvalidFormat,
			"log format must be %q, %q or %q, got %q", logFormatText, logFormatJSON, logFormatLogfmt, format)
	}
	return nil
}

// progress times one operation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Analysed curl 8.5.0-r0 (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
