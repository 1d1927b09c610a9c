package remote

import (
	"context"
	"testing"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/couchcryptid/case-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	body  []byte
	err   error
}

func (s *countingSource) Get(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.body, s.err
}

func TestCachedSource_Hit(t *testing.T) {
	inner := &countingSource{body: []byte(`{"date":"2020-03-01"}`)}
	cached, err := NewCachedSource(inner, 10, observability.NewMetricsForTesting())
	require.NoError(t, err)

	b1, err := cached.Get(context.Background(), "http://x/d/a.json")
	require.NoError(t, err)
	b2, err := cached.Get(context.Background(), "http://x/d/a.json")
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedSource_DifferentKeys(t *testing.T) {
	inner := &countingSource{body: []byte("x")}
	cached, err := NewCachedSource(inner, 10, observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, _ = cached.Get(context.Background(), "http://x/d/a.json")
	_, _ = cached.Get(context.Background(), "http://x/d/b.json")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	inner := &countingSource{err: &StatusError{URL: "u", Code: 404}}
	cached, err := NewCachedSource(inner, 10, observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, err = cached.Get(context.Background(), "http://x/d/a.json")
	assert.ErrorIs(t, err, domain.ErrNoData)
	_, err = cached.Get(context.Background(), "http://x/d/a.json")
	assert.ErrorIs(t, err, domain.ErrNoData)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.Len())
}

func TestCachedSource_Eviction(t *testing.T) {
	inner := &countingSource{body: []byte("x")}
	cached, err := NewCachedSource(inner, 2, observability.NewMetricsForTesting())
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = cached.Get(ctx, "a")
	_, _ = cached.Get(ctx, "b")
	_, _ = cached.Get(ctx, "c") // evicts "a"
	_, _ = cached.Get(ctx, "a")

	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestNewCachedSource_InvalidSize(t *testing.T) {
	_, err := NewCachedSource(&countingSource{}, 0, observability.NewMetricsForTesting())
	assert.Error(t, err)
}
