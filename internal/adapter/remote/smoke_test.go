//go:build smoke

package remote

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/case-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public data repository.
// Run with: go test -tags=smoke ./internal/adapter/remote/ -v -count=1

const smokeBaseURL = "https://raw.githubusercontent.com/ghdsi/covid-19/master/"

func smokeClient() *Client {
	return NewClient(20*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_SliceIndex(t *testing.T) {
	body, err := smokeClient().Get(context.Background(), smokeBaseURL+"d/index.txt")
	require.NoError(t, err)

	names := domain.ParseSliceIndex(string(body))
	assert.NotEmpty(t, names)
}

func TestSmoke_MissingFile(t *testing.T) {
	_, err := smokeClient().Get(context.Background(), smokeBaseURL+"d/does-not-exist.json")
	assert.ErrorIs(t, err, domain.ErrNoData)
}
