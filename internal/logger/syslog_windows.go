//go:build windows

package logger

import "log/slog"

// syslogHandler returns nil on Windows; there is no syslog daemon to reach.
func syslogHandler(level slog.Level) slog.Handler {
	return nil
}
