package listview

import (
	"fmt"
	"net/url"
	"strconv"
)

// FilterKind enumerates the recipe list filters the backend understands.
type FilterKind int

const (
	Vegetarian FilterKind = iota + 1
	Vegan
	GlutenFree
	DairyFree
	Budget
	MaxReadyMinutes
)

// Kinds lists every filter in display order.
var Kinds = []FilterKind{Vegetarian, Vegan, GlutenFree, DairyFree, Budget, MaxReadyMinutes}

var kindParams = map[FilterKind]string{
	Vegetarian:      "vegetarian",
	Vegan:           "vegan",
	GlutenFree:      "glutenFree",
	DairyFree:       "dairyFree",
	Budget:          "cheep",
	MaxReadyMinutes: "maxReadyTime",
}

var kindLabels = map[FilterKind]string{
	Vegetarian:      "Vegetarian",
	Vegan:           "Vegan",
	GlutenFree:      "Gluten free",
	DairyFree:       "Dairy free",
	Budget:          "Budget",
	MaxReadyMinutes: "Ready within (minutes)",
}

// Param is the query parameter name for k.
func (k FilterKind) Param() string { return kindParams[k] }

func (k FilterKind) Label() string { return kindLabels[k] }

// IsFlag reports whether k carries a boolean value; the only other shape is
// MaxReadyMinutes with an integer.
func (k FilterKind) IsFlag() bool { return k != MaxReadyMinutes }

func (k FilterKind) String() string {
	if p, ok := kindParams[k]; ok {
		return p
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// Filter is one active filter: a kind plus the value typed for that kind.
// Build them with Flag and ReadyWithin.
type Filter struct {
	Kind    FilterKind
	flag    bool
	minutes int
}

func Flag(k FilterKind) Filter {
	return Filter{Kind: k, flag: true}
}

func ReadyWithin(minutes int) Filter {
	return Filter{Kind: MaxReadyMinutes, minutes: minutes}
}

// Minutes is the MaxReadyMinutes value; ok is false for flag filters.
func (f Filter) Minutes() (int, bool) {
	if f.Kind != MaxReadyMinutes {
		return 0, false
	}
	return f.minutes, true
}

func (f Filter) valid() bool {
	if _, ok := kindParams[f.Kind]; !ok {
		return false
	}
	if f.Kind == MaxReadyMinutes {
		return f.minutes > 0
	}
	return f.flag
}

func (f Filter) value() string {
	if f.Kind == MaxReadyMinutes {
		return strconv.Itoa(f.minutes)
	}
	return strconv.FormatBool(f.flag)
}

// parseFilters reads the filters present in q. Unknown or malformed values are
// dropped rather than reported.
func parseFilters(q url.Values) []Filter {
	var out []Filter
	for _, k := range Kinds {
		raw := q.Get(k.Param())
		if raw == "" {
			continue
		}
		if k.IsFlag() {
			if b, err := strconv.ParseBool(raw); err == nil && b {
				out = append(out, Flag(k))
			}
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			out = append(out, ReadyWithin(n))
		}
	}
	return out
}
