package fetchers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/harvest-cli/internal/core/domain"
	"github.com/custodia-labs/harvest-cli/internal/core/ports/driven"
)

// slowFetcher echoes the locator after a short delay, reversing completion
// order relative to input order.
type slowFetcher struct {
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *slowFetcher) Name() string                         { return "slow" }
func (f *slowFetcher) Supports(k domain.SourceKind) bool    { return k == domain.SourceURL }
func (f *slowFetcher) Fetch(ctx context.Context, src domain.Source, _ driven.FetchOptions) domain.Document {
	n := f.inflight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer f.inflight.Add(-1)

	// Later sources finish first.
	if src.Locator == "http://a" {
		time.Sleep(30 * time.Millisecond)
	}
	return domain.Document{SourceID: src.Locator, Content: src.Locator, Status: domain.FetchOK}
}

func TestBatch_PreservesInputOrder(t *testing.T) {
	b := NewBatch(&slowFetcher{})
	sources := []domain.Source{
		{Locator: "http://a", Kind: domain.SourceURL},
		{Locator: "http://b", Kind: domain.SourceURL},
		{Locator: "http://c", Kind: domain.SourceURL},
	}

	docs, err := b.Fetch(context.Background(), sources, driven.FetchOptions{Concurrency: 3})
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.Equal(t, "http://a", docs[0].SourceID)
	assert.Equal(t, "http://b", docs[1].SourceID)
	assert.Equal(t, "http://c", docs[2].SourceID)
}

func TestBatch_RespectsConcurrencyLimit(t *testing.T) {
	f := &slowFetcher{}
	b := NewBatch(f)
	sources := make([]domain.Source, 8)
	for i := range sources {
		sources[i] = domain.Source{Locator: "http://x", Kind: domain.SourceURL}
	}

	_, err := b.Fetch(context.Background(), sources, driven.FetchOptions{Concurrency: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, f.peak.Load(), int32(2))
}

func TestBatch_UnsupportedKindRecordedAsError(t *testing.T) {
	b := NewBatch(&slowFetcher{})
	docs, err := b.Fetch(context.Background(), []domain.Source{
		{Locator: "/some/file", Kind: domain.SourceFile},
	}, driven.FetchOptions{})
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, domain.FetchError, docs[0].Status)
	assert.Contains(t, docs[0].Err, "no fetcher")
}

func TestBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatch(&slowFetcher{})
	_, err := b.Fetch(ctx, []domain.Source{{Locator: "http://a", Kind: domain.SourceURL}}, driven.FetchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
