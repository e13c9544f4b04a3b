//go:build unix

package logger

import (
	"log/slog"
	"log/syslog"
)

// syslogHandler returns a handler writing to the local syslog daemon, or nil
// when syslog is unavailable. Timestamps are stripped, syslog adds its own.
func syslogHandler(level slog.Level) slog.Handler {
	sw, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, "battlelan")
	if err != nil {
		return nil
	}
	return slog.NewTextHandler(syslogWriter{sw}, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
}

// syslogWriter adapts *syslog.Writer to io.Writer.
type syslogWriter struct {
	w *syslog.Writer
}

func (s syslogWriter) Write(p []byte) (n int, err error) {
	return len(p), s.w.Info(string(p))
}
