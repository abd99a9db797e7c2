// Package cli contains the command line interface for domly.
//
// # Commands
//
//	domly render page.html -d data.yaml -o page.out.html
//	domly dump page.html --format yaml
//	domly check page.html -d data.yaml
//	domly version
//
// render is the default command, so "domly page.html -d data.yaml" works too.
// Data files are YAML or JSON objects; several are merged in order, and
// --set KEY=VALUE overrides them.
//
// # Configuration
//
// Flag defaults may be set in $XDG_CONFIG_HOME/domly/config.yaml (or
// config.json). The YAML file is either a flat mapping of flag names to
// values or a mapping under the key "config":
//
//	config:
//	  log-level: debug
//	  log_format: text
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o domly .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/domly/pprof)
package cli
