package stat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSeriesOrdersBucketsByTime(t *testing.T) {
	s := Stat{
		Logs: map[string]LogEntry{
			"29000001": {Actions: map[string]int{"Read": 3}},
			"29000000": {Actions: map[string]int{"Create": 1, "Read": 1}},
			"bogus":    {Actions: map[string]int{"Read": 99}},
		},
	}

	points := s.Series()
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if !points[0].At.Equal(time.Unix(29000000*60, 0)) {
		t.Fatalf("first bucket at %v", points[0].At)
	}
	if points[0].Counts["Create"] != 1 || points[1].Counts["Read"] != 3 {
		t.Fatalf("unexpected counts: %+v", points)
	}
	if points[1].Counts["Delete"] != 0 {
		t.Fatalf("missing action should count as zero")
	}
}

func TestBuildChartScalesToBox(t *testing.T) {
	points := []Point{
		{At: time.Unix(0, 0), Counts: map[string]int{"Read": 0}},
		{At: time.Unix(60, 0), Counts: map[string]int{"Read": 4}},
	}

	c := BuildChart(points, 100, 50)
	if c.Max != 4 {
		t.Fatalf("max = %d, want 4", c.Max)
	}
	if c.Lines[0].Action != "Read" || c.Lines[0].Points != "0,50 100,0" {
		t.Fatalf("read line = %+v", c.Lines[0])
	}
	if len(c.Labels) != 2 {
		t.Fatalf("labels = %v", c.Labels)
	}
}

func TestStatusTotals(t *testing.T) {
	s := Stat{Logs: map[string]LogEntry{
		"1": {StatusCodes: map[string]int{"200": 2}},
		"2": {StatusCodes: map[string]int{"200": 1, "404": 1}},
	}}
	got := s.StatusTotals()
	if got["200"] != 3 || got["404"] != 1 {
		t.Fatalf("totals = %v", got)
	}
}

func TestListResponseAcceptsBothShapes(t *testing.T) {
	for _, body := range []string{
		`{"stats":[{"_id":"1","model":"recipe","count":3}]}`,
		`[{"_id":"1","model":"recipe","count":3}]`,
	} {
		var got ListResponse
		if err := json.Unmarshal([]byte(body), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if len(got.Stats) != 1 || got.Stats[0].Model != "recipe" || got.Stats[0].Count != 3 {
			t.Fatalf("unexpected result for %s: %+v", body, got)
		}
	}
}
