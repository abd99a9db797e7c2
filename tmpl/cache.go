package tmpl

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores compiled templates keyed by (source_hash ^ opts_hash).
var globalCache sync.Map

// entry compiles its source at most once.
type entry struct {
	once sync.Once
	tmpl *Template
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(opts.stripWhitespace)
	_ = enc.Encode(opts.strict)

	return xxh3.Hash(buf.Bytes())
}

// CompileReader reads a template from r and compiles it. Results are cached
// by source and options, so a template read repeatedly is compiled once.
// Failed compilations are not cached.
//
// A cached Template keeps the logger of the call that compiled it.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return CompileCached(ctx, string(data), opts...)
}

// CompileCached is [Compile] backed by the process-wide template cache.
//
// Only the source and the parsing options (whitespace stripping, strict
// mode) form the cache key. [WithLogger] and [WithDebug] take effect only on
// the call that compiles the entry; on a cache hit they are ignored and the
// Template keeps the logger and debug flag of its first caller. Call
// [ClearCache] or use [Compile] to get a fresh debug dump.
func CompileCached(ctx context.Context, src string, opts ...Option) (*Template, error) {
	var cfg Template

	applyOptions(&cfg, opts...)

	sourceHash := xxh3.HashString(src)
	optsHash := hashOptions(cfg.opts)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	ent, ok := value.(*entry)
	if !ok {
		return nil, ErrCompile.With(slog.String("issue", "invalid cache entry"))
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	ent.once.Do(func() {
		ent.tmpl, ent.err = Compile(ctx, src, opts...)
	})

	if ent.err != nil {
		globalCache.CompareAndDelete(key, ent)

		return nil, ent.err
	}

	return ent.tmpl, nil
}

// ClearCache removes all cached templates.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
