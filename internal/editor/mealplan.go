package editor

import (
	"fmt"

	"github.com/geocoder89/fitspark/internal/domain/mealplan"
	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/google/uuid"
)

// Slot is one time-of-day entry of a day. ID is stable for the slot's whole
// life; Time is an ordinary editable field. Two slots of a day never share a
// non-empty Time.
type Slot struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	RecipeID string `json:"recipeId"`
}

type DayDraft struct {
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Slots   []Slot `json:"slots"`
}

type MealPlanDraft struct {
	lifecycle

	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Summary     string     `json:"summary"`
	Private     bool       `json:"private"`
	Days        []DayDraft `json:"days"`
}

func (d *MealPlanDraft) DraftID() string {
	return d.ID
}

// NewMealPlanDraft starts an empty create draft.
func NewMealPlanDraft() *MealPlanDraft {
	return &MealPlanDraft{ID: uuid.NewString()}
}

// NewMealPlanEditDraft starts an edit draft in Loading; call Load or Fail next.
func NewMealPlanEditDraft(entityID string) *MealPlanDraft {
	d := NewMealPlanDraft()
	d.Phase = PhaseLoading
	d.EntityID = entityID
	return d
}

// Load fills an edit draft from the stored entity. Slots come out sorted by time.
func (d *MealPlanDraft) Load(m mealplan.MealPlan) error {
	if err := d.move(PhasePopulated); err != nil {
		return err
	}

	d.Title = m.Title
	d.Description = m.Description
	d.Summary = m.Summary
	d.Private = m.Private
	d.Days = make([]DayDraft, 0, len(m.DailyPlans))

	for _, dp := range m.DailyPlans {
		day := DayDraft{Date: dp.Day, Summary: dp.Summary}
		for _, s := range dp.SortedSlots() {
			day.Slots = append(day.Slots, Slot{ID: uuid.NewString(), Time: s.Time, RecipeID: s.RecipeID})
		}
		d.Days = append(d.Days, day)
	}
	return nil
}

func (d *MealPlanDraft) SetTitle(s string) error {
	return set(&d.lifecycle, &d.Title, s)
}

func (d *MealPlanDraft) SetDescription(s string) error {
	return set(&d.lifecycle, &d.Description, s)
}

func (d *MealPlanDraft) SetSummary(s string) error {
	return set(&d.lifecycle, &d.Summary, s)
}

func (d *MealPlanDraft) SetPrivate(b bool) error {
	return set(&d.lifecycle, &d.Private, b)
}

// AddDay appends a day with no date, no summary and no slots.
func (d *MealPlanDraft) AddDay() error {
	if err := d.touch(); err != nil {
		return err
	}
	d.Days = append(d.Days, DayDraft{})
	return nil
}

// RemoveDay drops day i; later days move down by one.
func (d *MealPlanDraft) RemoveDay(i int) error {
	if err := d.checkDay(i); err != nil {
		return err
	}
	if err := d.touch(); err != nil {
		return err
	}
	d.Days = append(d.Days[:i], d.Days[i+1:]...)
	return nil
}

// SetDayDate stores s as given; it is not parsed.
func (d *MealPlanDraft) SetDayDate(i int, s string) error {
	if err := d.checkDay(i); err != nil {
		return err
	}
	return set(&d.lifecycle, &d.Days[i].Date, s)
}

func (d *MealPlanDraft) SetDaySummary(i int, s string) error {
	if err := d.checkDay(i); err != nil {
		return err
	}
	return set(&d.lifecycle, &d.Days[i].Summary, s)
}

// AddSlot appends an unset slot to day i and returns its id. Any number of
// unset slots may coexist.
func (d *MealPlanDraft) AddSlot(i int) (string, error) {
	if err := d.checkDay(i); err != nil {
		return "", err
	}
	if err := d.touch(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	d.Days[i].Slots = append(d.Days[i].Slots, Slot{ID: id})
	return id, nil
}

// RemoveSlot drops one slot of day i.
func (d *MealPlanDraft) RemoveSlot(i int, slotID string) error {
	j, err := d.slotIndex(i, slotID)
	if err != nil {
		return err
	}
	if err := d.touch(); err != nil {
		return err
	}
	slots := d.Days[i].Slots
	d.Days[i].Slots = append(slots[:j], slots[j+1:]...)
	return nil
}

// RetimeSlot moves a slot to time t in one step. If another slot of the day
// already sits at t, that slot is removed and the retimed slot, with its own
// recipe, takes its place in the mapping.
func (d *MealPlanDraft) RetimeSlot(i int, slotID, t string) error {
	j, err := d.slotIndex(i, slotID)
	if err != nil {
		return err
	}
	if d.Days[i].Slots[j].Time == t {
		return nil
	}
	if err := d.touch(); err != nil {
		return err
	}

	kept := d.Days[i].Slots[:0]
	for k, s := range d.Days[i].Slots {
		if k != j && t != "" && s.Time == t {
			continue
		}
		if k == j {
			s.Time = t
		}
		kept = append(kept, s)
	}
	d.Days[i].Slots = kept
	return nil
}

// AssignRecipe sets the recipe of one slot.
func (d *MealPlanDraft) AssignRecipe(i int, slotID, recipeID string) error {
	j, err := d.slotIndex(i, slotID)
	if err != nil {
		return err
	}
	return set(&d.lifecycle, &d.Days[i].Slots[j].RecipeID, recipeID)
}

// SlotCount is the number of slots across all days.
func (d *MealPlanDraft) SlotCount() int {
	n := 0
	for _, day := range d.Days {
		n += len(day.Slots)
	}
	return n
}

// Payload serializes the draft for a create or update call. It is refused
// while any slot lacks a time, since the time is the slot's key on the wire.
func (d *MealPlanDraft) Payload() (mealplan.Payload, error) {
	var verr validation.Error
	if d.Title == "" {
		verr.Add("title", "required", "is required")
	}

	days := make([]mealplan.DayPlan, 0, len(d.Days))
	for i, day := range d.Days {
		recipes := make(map[string]string, len(day.Slots))
		for _, s := range day.Slots {
			if s.Time == "" {
				verr.Add(fmt.Sprintf("days[%d].slots", i), "required", "every time slot needs a time")
				continue
			}
			recipes[s.Time] = s.RecipeID
		}
		days = append(days, mealplan.DayPlan{Day: day.Date, Summary: day.Summary, Recipes: recipes})
	}

	if err := verr.OrNil(); err != nil {
		return mealplan.Payload{}, err
	}

	return mealplan.Payload{
		Title:       d.Title,
		Description: d.Description,
		Summary:     d.Summary,
		Private:     d.Private,
		DailyPlans:  days,
	}, nil
}

// BeginSubmit validates the draft and moves it to Submitting. On a validation
// error the draft stays where it was.
func (d *MealPlanDraft) BeginSubmit() (mealplan.Payload, error) {
	if d.Phase == PhaseEmpty {
		return mealplan.Payload{}, ErrNothingToSubmit
	}
	if !d.Phase.can(PhaseSubmitting) {
		return mealplan.Payload{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Phase, PhaseSubmitting)
	}

	p, err := d.Payload()
	if err != nil {
		return mealplan.Payload{}, err
	}
	if err := d.move(PhaseSubmitting); err != nil {
		return mealplan.Payload{}, err
	}
	return p, nil
}

func (d *MealPlanDraft) checkDay(i int) error {
	if i < 0 || i >= len(d.Days) {
		return fmt.Errorf("%w: day %d of %d", ErrIndexOutOfRange, i, len(d.Days))
	}
	return nil
}

func (d *MealPlanDraft) slotIndex(i int, slotID string) (int, error) {
	if err := d.checkDay(i); err != nil {
		return -1, err
	}
	for j, s := range d.Days[i].Slots {
		if s.ID == slotID {
			return j, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in day %d", ErrSlotNotFound, slotID, i)
}
