package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/layerwatch/internal/layer"
)

// Fetcher fetches one field value. A fetcher never fails: columns it cannot
// resolve come back as "".
type Fetcher interface {
	Fetch(ctx context.Context, t layer.Target, spec layer.FieldSpec) string
}

// Builder assembles one Snapshot per cycle by fanning out all field fetches
// for an account concurrently and merging the results by column key.
type Builder struct {
	fetcher Fetcher
	fields  []layer.FieldSpec
}

// NewBuilder creates a Builder over a fixed field set.
func NewBuilder(fetcher Fetcher, fields []layer.FieldSpec) *Builder {
	return &Builder{fetcher: fetcher, fields: fields}
}

// Build fetches every configured field for the target in parallel and merges
// the results into one timestamped Snapshot. The snapshot is always complete:
// one entry per configured column, with "" for any fetch that failed. The
// timestamp is captured at cycle start, before the fan-out.
func (b *Builder) Build(ctx context.Context, t layer.Target) Snapshot {
	log.Debug().
		Str("account", t.Name).
		Str("address", t.Address).
		Str("valoper", t.Valoper).
		Msg("Building snapshot")

	snap := Snapshot{
		Timestamp: time.Now().Format(TimestampFormat),
		Columns:   layer.Columns(b.fields),
		Values:    make(map[string]string, len(b.fields)),
	}

	type result struct {
		column string
		value  string
	}

	results := make(chan result, len(b.fields))
	var wg sync.WaitGroup
	for _, spec := range b.fields {
		wg.Add(1)
		go func(spec layer.FieldSpec) {
			defer wg.Done()
			results <- result{column: spec.Column, value: b.fetcher.Fetch(ctx, t, spec)}
		}(spec)
	}
	wg.Wait()
	close(results)

	for r := range results {
		snap.Values[r.column] = r.value
	}
	return snap
}

// AccountSource binds a Builder to one target so the monitor loop can request
// snapshots without knowing which account it serves.
type AccountSource struct {
	builder *Builder
	target  layer.Target
}

// ForAccount returns a per-account snapshot source.
func (b *Builder) ForAccount(t layer.Target) *AccountSource {
	return &AccountSource{builder: b, target: t}
}

// Build produces the next snapshot for the bound account.
func (s *AccountSource) Build(ctx context.Context) (Snapshot, error) {
	return s.builder.Build(ctx, s.target), nil
}
