// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is immutable once made. Configuration is applied with
// functional options at creation time, and [Logger.Wrap] derives a new
// Logger with overrides:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("RFC3339Nano"))
//
//	logger.Debug("template compiled", slog.Int("instructions", 12))
//
// The zero Logger discards everything, so library types may embed a Logger
// field without requiring callers to configure one.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's Debug and is used
// for per-instruction output.
//
// # Formats
//
// [FormatJSON] (default) and [FormatText]. With [WithPretty] enabled, both
// formats are colorized with lipgloss styles for terminal reading.
//
// # Default logger
//
// Package-level functions ([Info], [DebugContext], ...) write through a
// process-wide default logger that is reconfigured with [Config].
package log
