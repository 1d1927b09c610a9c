package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// BuildSnapshots converts one day's country totals into snapshots sorted by
// country code, stamped with the package clock.
func BuildSnapshots(date string, totals map[string]Totals) []DaySnapshot {
	now := Now().UTC()
	out := make([]DaySnapshot, 0, len(totals))
	for code, t := range totals {
		out = append(out, DaySnapshot{
			Date:        date,
			Code:        code,
			Total:       t.Total,
			New:         t.New,
			ProcessedAt: now,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Key identifies a snapshot as "date|code".
func (s DaySnapshot) Key() string {
	return s.Date + "|" + s.Code
}

// SerializeSnapshot encodes a snapshot as JSON.
func SerializeSnapshot(s DaySnapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot %s: %w", s.Key(), err)
	}
	return data, nil
}
