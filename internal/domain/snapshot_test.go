package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshots(t *testing.T) {
	fixed := time.Date(2020, 3, 2, 8, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	got := BuildSnapshots("2020-03-01", map[string]Totals{
		"US": {Total: 12, New: 2},
		"FR": {Total: 3},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "FR", got[0].Code)
	assert.Equal(t, "2020-03-01|US", got[1].Key())
	assert.Equal(t, 12, got[1].Total)
	assert.Equal(t, fixed, got[1].ProcessedAt)
}

func TestSerializeSnapshot(t *testing.T) {
	s := DaySnapshot{Date: "2020-03-01", Code: "US", Total: 1, ProcessedAt: time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)}

	data, err := SerializeSnapshot(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "US", decoded["code"])
	assert.Equal(t, "2020-03-02T00:00:00Z", decoded["processed_at"])
}
