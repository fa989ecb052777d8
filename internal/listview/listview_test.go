package listview

import (
	"net/url"
	"testing"
)

func TestSearchResetsPage(t *testing.T) {
	p := New().WithFilter(Flag(Vegan)).WithPage(4)

	got := p.WithSearch("chicken")
	if got.Page != 1 {
		t.Fatalf("page = %d, want 1 after search change", got.Page)
	}
	if got.Search != "chicken" || !got.Has(Vegan) {
		t.Fatalf("search change lost state: %+v", got)
	}

	if same := got.WithPage(3).WithSearch("  chicken "); same.Page != 3 {
		t.Fatalf("unchanged search text must keep the page, got %d", same.Page)
	}
}

func TestPageChangeKeepsSearchAndFilters(t *testing.T) {
	p := New().WithSearch("soup").WithFilter(Flag(GlutenFree)).WithFilter(ReadyWithin(30))

	got := p.WithPage(5)
	if got.Page != 5 || got.Search != "soup" {
		t.Fatalf("got %+v", got)
	}
	if m, ok := got.Filter(MaxReadyMinutes); !ok {
		t.Fatal("ready filter lost")
	} else if v, _ := m.Minutes(); v != 30 {
		t.Fatalf("minutes = %d", v)
	}
	if !got.Has(GlutenFree) {
		t.Fatal("flag filter lost")
	}
}

func TestFilterChangesResetPage(t *testing.T) {
	p := New().WithPage(7)

	if got := p.WithFilter(Flag(Budget)); got.Page != 1 {
		t.Fatalf("WithFilter page = %d", got.Page)
	}
	if got := p.WithFilter(Flag(Budget)).WithPage(2).WithoutFilter(Budget); got.Page != 1 || got.Has(Budget) {
		t.Fatalf("WithoutFilter = %+v", got)
	}
	if got := p.WithLimit(20); got.Page != 1 || got.Limit != 20 {
		t.Fatalf("WithLimit = %+v", got)
	}
}

func TestWithFilterReplacesSameKind(t *testing.T) {
	p := New().WithFilter(ReadyWithin(60)).WithFilter(ReadyWithin(15))
	if n := len(p.Filters()); n != 1 {
		t.Fatalf("filters = %d, want 1", n)
	}
	f, _ := p.Filter(MaxReadyMinutes)
	if v, _ := f.Minutes(); v != 15 {
		t.Fatalf("minutes = %d, want 15", v)
	}

	if got := New().WithPage(3).WithFilter(ReadyWithin(0)); got.Page != 3 || got.Has(MaxReadyMinutes) {
		t.Fatal("invalid filter must be ignored")
	}
}

func TestQueryEncoding(t *testing.T) {
	p := New().WithSearch("green curry").WithFilter(Flag(Vegetarian)).WithFilter(Flag(Budget)).WithFilter(ReadyWithin(20)).WithPage(2)

	q := p.Query()
	want := map[string]string{
		"search":       "green curry",
		"page":         "2",
		"limit":        "10",
		"vegetarian":   "true",
		"cheep":        "true",
		"maxReadyTime": "20",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, q.Get(k), v)
		}
	}
	if q.Has("vegan") {
		t.Error("inactive filters must be omitted")
	}

	if New().Query().Has("search") {
		t.Error("empty search must be omitted")
	}
}

func TestParseRoundTripsAndNormalizes(t *testing.T) {
	p := Parse(url.Values{
		"search":       {"  tofu   bowl "},
		"page":         {"3"},
		"limit":        {"20"},
		"dairyFree":    {"true"},
		"vegan":        {"false"},
		"maxReadyTime": {"abc"},
	})
	if p.Search != "tofu bowl" || p.Page != 3 || p.Limit != 20 {
		t.Fatalf("parsed %+v", p)
	}
	if !p.Has(DairyFree) || p.Has(Vegan) || p.Has(MaxReadyMinutes) {
		t.Fatalf("filters = %v", p.Filters())
	}

	if again := Parse(p.Query()); again.Query().Encode() != p.Query().Encode() {
		t.Fatalf("round trip changed query: %s vs %s", again.Query().Encode(), p.Query().Encode())
	}

	bad := Parse(url.Values{"page": {"-2"}, "limit": {"7"}})
	if bad.Page != 1 || bad.Limit != DefaultLimit {
		t.Fatalf("bad input not normalized: %+v", bad)
	}
}

func TestPageInfo(t *testing.T) {
	tests := []struct {
		name              string
		page, pages       int
		wantPrev, wantNxt bool
	}{
		{"first of many", 1, 3, false, true},
		{"middle", 2, 3, true, true},
		{"last page", 3, 3, true, false},
		{"page 2 of 2 from an empty tail", 2, 2, true, false},
		{"single page", 1, 1, false, false},
		{"zero pages clamps", 1, 0, false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.pages, 0)
			if pi.HasPrev() != tt.wantPrev || pi.HasNext() != tt.wantNxt {
				t.Fatalf("HasPrev=%v HasNext=%v, want %v %v", pi.HasPrev(), pi.HasNext(), tt.wantPrev, tt.wantNxt)
			}
		})
	}
}

func TestPagerLinks(t *testing.T) {
	params := New().WithSearch("kale").WithPage(2)
	pager := NewPager("/recipes", params, NewPageInfo(2, 2, 15))

	if pager.HasNext() {
		t.Fatal("next must be disabled on the last page")
	}
	if pager.NextHref != params.Href("/recipes") {
		t.Fatalf("next href = %q", pager.NextHref)
	}
	prev, _ := url.Parse(pager.PrevHref)
	if prev.Query().Get("page") != "1" || prev.Query().Get("search") != "kale" {
		t.Fatalf("prev href = %q", pager.PrevHref)
	}
}
