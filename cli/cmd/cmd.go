package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/domly/log"
	"github.com/ardnew/domly/tmpl"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns w if set, else the Kong application's stdout, else
// os.Stdout.
func stdout(ctx context.Context, w io.Writer) io.Writer {
	if w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// TemplateFlags selects a template and how it is compiled.
type TemplateFlags struct {
	Template string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"template"`
	Strip    bool   `help:"Omit whitespace-only text."                  short:"s"`
	Strict   bool   `help:"Reject stray end tags and unclosed elements."`
}

// compile reads and compiles the selected template. Debug logging of the
// parsed tree and listing follows the logger's level.
func (f *TemplateFlags) compile(ctx context.Context) (*tmpl.Template, error) {
	r, err := openSource(f.Template)
	if err != nil {
		return nil, ErrReadTemplate.Wrap(err).
			With(slog.String("file", f.Template))
	}
	defer r.Close()

	logger := log.Default()

	return tmpl.CompileReader(ctx, r,
		tmpl.WithStripWhitespace(f.Strip),
		tmpl.WithStrict(f.Strict),
		tmpl.WithLogger(logger),
		tmpl.WithDebug(logger.Enabled(ctx, log.LevelDebug)),
	)
}

// DataFlags selects the data object a template is executed against.
type DataFlags struct {
	Data []string          `help:"YAML or JSON data file(s), merged in order; '-' for stdin." placeholder:"FILE"      short:"d"`
	Set  map[string]string `help:"Set a data key, overriding data files."                     placeholder:"KEY=VALUE" short:"D"`
}

// load decodes and merges the data files, then applies --set values.
// Later files override earlier ones key by key; a path naming a file already
// read is skipped.
func (f *DataFlags) load(ctx context.Context, stdinTaken bool) (map[string]any, error) {
	data := make(map[string]any)

	seen := make(map[fileKey]struct{})

	for _, path := range f.Data {
		if path == stdinSource && stdinTaken {
			return nil, ErrStdinReused
		}

		m, err := decodeSource(path, seen)
		if err != nil {
			return nil, err
		}

		if path == stdinSource {
			stdinTaken = true
		}

		maps.Copy(data, m)
	}

	for k, v := range f.Set {
		data[k] = v
	}

	log.TraceContext(ctx, "data loaded",
		slog.Int("files", len(f.Data)),
		slog.Int("keys", len(data)),
	)

	return data, nil
}

// decodeSource decodes one YAML or JSON object. It returns nil for an empty
// document or for a file already in seen.
func decodeSource(path string, seen map[fileKey]struct{}) (map[string]any, error) {
	if path != stdinSource {
		key, ok := statFileKey(path)
		if ok {
			if _, dup := seen[key]; dup {
				return nil, nil
			}

			seen[key] = struct{}{}
		}
	}

	r, err := openSource(path)
	if err != nil {
		return nil, ErrReadData.Wrap(err).With(slog.String("file", path))
	}
	defer r.Close()

	var m map[string]any

	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, ErrDecodeData.Wrap(err).With(slog.String("file", path))
	}

	return m, nil
}

// openSource opens path for reading; "-" is stdin, which is never closed.
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

// createOutput opens path for writing; "-" is w.
func createOutput(path string, w io.Writer) (io.WriteCloser, error) {
	if path == "" || path == stdinSource {
		return nopWriteCloser{w}, nil
	}

	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks and relative paths.
type fileKey struct {
	dev uint64
	ino uint64
}

// statFileKey resolves path and returns its device/inode key. It returns
// false if the file cannot be resolved or the platform lacks inode data.
func statFileKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
