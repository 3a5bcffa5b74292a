package model

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// Toggled returns the other status.
func (s Status) Toggled() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}

// Record is a single activity entry of the dashboard.
type Record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// recordJSON is the persisted shape: updatedAt in Unix milliseconds.
type recordJSON struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Status    Status `json:"status"`
	UpdatedAt int64  `json:"updatedAt"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:        r.ID,
		Title:     r.Title,
		Status:    r.Status,
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Title = raw.Title
	r.Status = raw.Status
	r.UpdatedAt = time.UnixMilli(raw.UpdatedAt)
	return nil
}

const FilterAll = "all"

// RecordFilter is the dashboard search box plus the status select.
type RecordFilter struct {
	Text   string
	Status string
}

type Stats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Done    int `json:"done"`
}
