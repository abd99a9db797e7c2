package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/domly/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, early enough to affect parse error messages.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) options() []log.Option {
	opts := []log.Option{
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	}

	if f.TimeLayout != "" {
		opts = append(opts, log.WithTimeLayout(f.TimeLayout))
	}

	return opts
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(f.options()...)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to apply logger
// configuration before Kong begins parsing. Level and format also apply
// themselves through UnmarshalText during parsing, but boolean flags and the
// time layout do not.
func (f *logConfig) scan(args []string) {
	value := map[string]*string{
		"--log-level":       (*string)(&f.Level),
		"--log-format":      (*string)(&f.Format),
		"--log-time-layout": &f.TimeLayout,
	}

	toggle := map[string]*bool{
		"log-caller": &f.Caller,
		"log-pretty": &f.Pretty,
	}

	seen := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		if !strings.HasPrefix(arg, "--log-") && !strings.HasPrefix(arg, "--no-log-") {
			continue
		}

		name, val, assigned := strings.Cut(arg, "=")

		if dst, ok := value[name]; ok {
			// Non-boolean flag: consume next arg as value if not assigned.
			if !assigned && i+1 < len(args) && args[i+1] != "" &&
				args[i+1][0] != '-' {
				val = args[i+1]
				i++
			}

			*dst = val
			seen = true

			continue
		}

		negate := strings.HasPrefix(name, "--no-")
		key := strings.TrimPrefix(strings.TrimPrefix(name, "--no-"), "--")

		dst, ok := toggle[key]
		if !ok {
			continue
		}

		on := true

		if assigned {
			v, err := strconv.ParseBool(val)
			if err != nil {
				continue
			}

			on = v
		}

		*dst = on != negate
		seen = true
	}

	if seen {
		log.Config(f.options()...)
	}
}
