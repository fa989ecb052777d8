package mealplan

import (
	"errors"
	"sort"
)

var ErrNotFound = errors.New("meal plan not found")

// DayPlan maps time-of-day strings to recipe ids.
type DayPlan struct {
	Day     string            `json:"day"`
	Summary string            `json:"summary"`
	Recipes map[string]string `json:"recipes"`
}

type MealPlan struct {
	ID          string    `json:"_id"`
	User        string    `json:"user,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Summary     string    `json:"summary"`
	Private     bool      `json:"private"`
	DailyPlans  []DayPlan `json:"dailyPlans"`
}

type ListResponse struct {
	MealPlans []MealPlan `json:"meal_plans"`
	Page      int        `json:"page"`
	Pages     int        `json:"pages"`
	Total     int        `json:"total"`
}

// Payload is the body of a create or update call.
type Payload struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Summary     string    `json:"summary"`
	Private     bool      `json:"private"`
	DailyPlans  []DayPlan `json:"dailyPlans"`
}

// Slot is one (time, recipe) pair of a day plan.
type Slot struct {
	Time     string
	RecipeID string
}

// SortedSlots returns the day's slots ordered by time.
func (d DayPlan) SortedSlots() []Slot {
	out := make([]Slot, 0, len(d.Recipes))
	for t, id := range d.Recipes {
		out = append(out, Slot{Time: t, RecipeID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
