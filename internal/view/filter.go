// Package view turns the stored records into what the dashboard shows.
package view

import (
	"sort"
	"strings"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
)

// Apply returns the visible rows: newest first, then filtered by a
// case-insensitive title substring and by status ("all" or empty matches any).
// The input slice is not modified.
func Apply(records []model.Record, filter model.RecordFilter) []model.Record {
	sorted := SortByUpdated(records)

	q := strings.ToLower(strings.TrimSpace(filter.Text))
	st := strings.TrimSpace(filter.Status)
	if st == "" {
		st = model.FilterAll
	}

	out := make([]model.Record, 0, len(sorted))
	for _, r := range sorted {
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) {
			continue
		}
		if st != model.FilterAll && string(r.Status) != st {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortByUpdated returns a copy ordered by UpdatedAt descending, ties by id descending.
func SortByUpdated(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func ComputeStats(records []model.Record) model.Stats {
	s := model.Stats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusDone:
			s.Done++
		}
	}
	return s
}
