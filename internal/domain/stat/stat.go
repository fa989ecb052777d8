package stat

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("stat not found")

// Actions tracked per minute bucket.
var Actions = []string{"Read", "Create", "Update", "Delete"}

type LogEntry struct {
	Actions     map[string]int `json:"Actions"`
	StatusCodes map[string]int `json:"status_codes"`
}

// Stat is the per-model usage record. Logs is keyed by minutes since the unix epoch.
type Stat struct {
	ID    string              `json:"_id"`
	Model string              `json:"model"`
	Count int                 `json:"count"`
	Logs  map[string]LogEntry `json:"logs,omitempty"`
}

type ListResponse struct {
	Stats []Stat `json:"stats"`
}

// UnmarshalJSON accepts both {"stats": [...]} and a bare array.
func (l *ListResponse) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Stats)
	}
	type plain ListResponse
	return json.Unmarshal(b, (*plain)(l))
}

// Point is one minute bucket of a chart.
type Point struct {
	At     time.Time
	Counts map[string]int
}

// Series converts the minute-keyed logs into points ordered by time.
// Keys that are not integers are skipped.
func (s Stat) Series() []Point {
	points := make([]Point, 0, len(s.Logs))
	for key, entry := range s.Logs {
		minutes, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		counts := make(map[string]int, len(Actions))
		for _, a := range Actions {
			counts[a] = entry.Actions[a]
		}
		points = append(points, Point{
			At:     time.Unix(minutes*60, 0).UTC(),
			Counts: counts,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })
	return points
}

// StatusTotals sums the status-code breakdown across all buckets.
func (s Stat) StatusTotals() map[string]int {
	out := make(map[string]int)
	for _, entry := range s.Logs {
		for code, n := range entry.StatusCodes {
			out[code] += n
		}
	}
	return out
}
