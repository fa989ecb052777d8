package editor

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/geocoder89/fitspark/internal/domain/recipe"
	"github.com/geocoder89/fitspark/internal/validation"
)

// Form field names. Every editor post carries the complete form, so a sync
// rewrites each field from the posted values before the requested op runs.
//
//	meal plan: title, description, summary, private,
//	           days.<i>.date, days.<i>.summary,
//	           days.<i>.slots.<slotID>.time, days.<i>.slots.<slotID>.recipe
//	recipe:    title, image, readyInMinutes, servings, vegetarian, vegan,
//	           glutenFree, dairyFree, cheep,
//	           ingredients.<i>.name|amount|unit, nutrients.<i>.name|amount|unit,
//	           steps.<i>
func DayField(i int, name string) string {
	return "days." + strconv.Itoa(i) + "." + name
}

func SlotField(i int, slotID, name string) string {
	return DayField(i, "slots."+slotID+"."+name)
}

func ListField(k ListKind, i int, name string) string {
	f := string(k) + "." + strconv.Itoa(i)
	if name != "" {
		f += "." + name
	}
	return f
}

// ErrorPath is the key a *validation.Error uses for a list entry, matching
// the validator's own paths such as ingredients[0].name or steps[2].
func ErrorPath(k ListKind, i int, name string) string {
	f := string(k) + "[" + strconv.Itoa(i) + "]"
	if name != "" {
		f += "." + name
	}
	return f
}

// Sync copies posted values into the draft. Fields missing from v are left
// alone, except the private checkbox, whose absence means false.
func (d *MealPlanDraft) Sync(v url.Values) error {
	if !d.Editable() {
		return fmt.Errorf("%w (%s)", ErrNotEditable, d.Phase)
	}

	for _, f := range []struct {
		key string
		set func(string) error
	}{
		{"title", d.SetTitle},
		{"description", d.SetDescription},
		{"summary", d.SetSummary},
	} {
		if v.Has(f.key) {
			if err := f.set(v.Get(f.key)); err != nil {
				return err
			}
		}
	}
	if err := d.SetPrivate(v.Has("private")); err != nil {
		return err
	}

	for i := range d.Days {
		if key := DayField(i, "date"); v.Has(key) {
			if err := d.SetDayDate(i, v.Get(key)); err != nil {
				return err
			}
		}
		if key := DayField(i, "summary"); v.Has(key) {
			if err := d.SetDaySummary(i, v.Get(key)); err != nil {
				return err
			}
		}
		if err := d.syncSlots(i, v); err != nil {
			return err
		}
	}
	return nil
}

// syncSlots applies posted slot times and recipes for day i. Retimes that
// would land on a slot which is itself moving are deferred until that slot
// has moved, so a chain of edits in one post does not eat its own entries.
// What still collides afterwards resolves last write wins.
func (d *MealPlanDraft) syncSlots(i int, v url.Values) error {
	order := make([]string, 0, len(d.Days[i].Slots))
	pending := make(map[string]string)
	for _, s := range d.Days[i].Slots {
		order = append(order, s.ID)
		if key := SlotField(i, s.ID, "time"); v.Has(key) {
			if t := strings.TrimSpace(v.Get(key)); t != s.Time {
				pending[s.ID] = t
			}
		}
	}

	for progress := true; progress && len(pending) > 0; {
		progress = false
		for _, id := range order {
			t, ok := pending[id]
			if !ok {
				continue
			}
			if blocker := d.slotAt(i, t, id); blocker != "" {
				if _, moving := pending[blocker]; moving {
					continue
				}
			}
			if err := d.RetimeSlot(i, id, t); ignoreMissing(err) != nil {
				return err
			}
			delete(pending, id)
			progress = true
		}
	}
	for _, id := range order {
		if t, ok := pending[id]; ok {
			if err := d.RetimeSlot(i, id, t); ignoreMissing(err) != nil {
				return err
			}
		}
	}

	for _, id := range order {
		if key := SlotField(i, id, "recipe"); v.Has(key) {
			if err := d.AssignRecipe(i, id, v.Get(key)); ignoreMissing(err) != nil {
				return err
			}
		}
	}
	return nil
}

// slotAt returns the id of the slot of day i at time t, other than except.
func (d *MealPlanDraft) slotAt(i int, t, except string) string {
	if t == "" {
		return ""
	}
	for _, s := range d.Days[i].Slots {
		if s.ID != except && s.Time == t {
			return s.ID
		}
	}
	return ""
}

func ignoreMissing(err error) error {
	if errors.Is(err, ErrSlotNotFound) {
		return nil
	}
	return err
}

// Sync copies posted values into the draft. Numbers that do not parse keep
// their previous value and are reported in the returned *validation.Error;
// every other field is still applied.
func (d *RecipeDraft) Sync(v url.Values) error {
	if !d.Editable() {
		return fmt.Errorf("%w (%s)", ErrNotEditable, d.Phase)
	}

	var verr validation.Error

	if v.Has("title") {
		if err := d.SetTitle(strings.TrimSpace(v.Get("title"))); err != nil {
			return err
		}
	}
	if v.Has("image") {
		if err := d.SetImage(strings.TrimSpace(v.Get("image"))); err != nil {
			return err
		}
	}
	if n, ok := intField(v, "readyInMinutes", &verr); ok {
		if err := d.SetReadyInMinutes(n); err != nil {
			return err
		}
	}
	if n, ok := intField(v, "servings", &verr); ok {
		if err := d.SetServings(n); err != nil {
			return err
		}
	}

	tags := recipe.Tags{
		Vegetarian: v.Has("vegetarian"),
		Vegan:      v.Has("vegan"),
		GlutenFree: v.Has("glutenFree"),
		DairyFree:  v.Has("dairyFree"),
		Cheep:      v.Has("cheep"),
	}
	if err := d.SetTags(tags); err != nil {
		return err
	}

	for i, m := range d.Ingredients {
		if err := d.SetIngredient(i, measureField(v, Ingredients, i, m, &verr)); err != nil {
			return err
		}
	}
	for i, m := range d.Nutrients {
		if err := d.SetNutrient(i, measureField(v, Nutrients, i, m, &verr)); err != nil {
			return err
		}
	}
	for i := range d.Steps {
		if key := ListField(Steps, i, ""); v.Has(key) {
			if err := d.SetStep(i, strings.TrimSpace(v.Get(key))); err != nil {
				return err
			}
		}
	}

	return verr.OrNil()
}

func intField(v url.Values, key string, verr *validation.Error) (int, bool) {
	if !v.Has(key) {
		return 0, false
	}
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(key, "number", "must be a whole number")
		return 0, false
	}
	return n, true
}

func measureField(v url.Values, k ListKind, i int, cur recipe.Measure, verr *validation.Error) recipe.Measure {
	if key := ListField(k, i, "name"); v.Has(key) {
		cur.Name = strings.TrimSpace(v.Get(key))
	}
	if key := ListField(k, i, "unit"); v.Has(key) {
		cur.Unit = strings.TrimSpace(v.Get(key))
	}
	if key := ListField(k, i, "amount"); v.Has(key) {
		raw := strings.TrimSpace(v.Get(key))
		if raw == "" {
			cur.Amount = 0
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			cur.Amount = f
		} else {
			verr.Add(ErrorPath(k, i, "amount"), "number", "must be a number")
		}
	}
	return cur
}
