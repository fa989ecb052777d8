package editor

import (
	"fmt"

	"github.com/geocoder89/fitspark/internal/domain/recipe"
	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/google/uuid"
)

// ListKind names one of the recipe draft's ordered lists.
type ListKind string

const (
	Ingredients ListKind = "ingredients"
	Nutrients   ListKind = "nutrients"
	Steps       ListKind = "steps"
)

type RecipeDraft struct {
	lifecycle

	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Image          string           `json:"image"`
	ReadyInMinutes int              `json:"readyInMinutes"`
	Servings       int              `json:"servings"`
	Tags           recipe.Tags      `json:"tags"`
	Ingredients    []recipe.Measure `json:"ingredients"`
	Nutrients      []recipe.Measure `json:"nutrients"`
	Steps          []string         `json:"steps"`
}

func (d *RecipeDraft) DraftID() string {
	return d.ID
}

// NewRecipeDraft starts an empty create draft serving one.
func NewRecipeDraft() *RecipeDraft {
	return &RecipeDraft{ID: uuid.NewString(), Servings: 1}
}

// NewRecipeEditDraft starts an edit draft in Loading; call Load or Fail next.
func NewRecipeEditDraft(entityID string) *RecipeDraft {
	d := NewRecipeDraft()
	d.Phase = PhaseLoading
	d.EntityID = entityID
	return d
}

func (d *RecipeDraft) Load(r recipe.Recipe) error {
	if err := d.move(PhasePopulated); err != nil {
		return err
	}
	d.Title = r.Title
	d.Image = r.Image
	d.ReadyInMinutes = r.ReadyInMinutes
	d.Servings = r.Servings
	d.Tags = r.Tags
	d.Ingredients = append([]recipe.Measure(nil), r.Ingredients...)
	d.Nutrients = append([]recipe.Measure(nil), r.Nutrients...)
	d.Steps = append([]string(nil), r.Steps...)
	return nil
}

func (d *RecipeDraft) SetTitle(s string) error {
	return set(&d.lifecycle, &d.Title, s)
}

func (d *RecipeDraft) SetImage(s string) error {
	return set(&d.lifecycle, &d.Image, s)
}

func (d *RecipeDraft) SetReadyInMinutes(n int) error {
	return set(&d.lifecycle, &d.ReadyInMinutes, n)
}

func (d *RecipeDraft) SetServings(n int) error {
	return set(&d.lifecycle, &d.Servings, n)
}

func (d *RecipeDraft) SetTags(t recipe.Tags) error {
	return set(&d.lifecycle, &d.Tags, t)
}

// Append adds an empty entry to list k.
func (d *RecipeDraft) Append(k ListKind) error {
	if err := d.touch(); err != nil {
		return err
	}
	switch k {
	case Ingredients:
		d.Ingredients = append(d.Ingredients, recipe.Measure{})
	case Nutrients:
		d.Nutrients = append(d.Nutrients, recipe.Measure{})
	case Steps:
		d.Steps = append(d.Steps, "")
	default:
		return fmt.Errorf("%w: list %q", ErrUnknownOp, k)
	}
	return nil
}

// Remove drops entry i of list k; later entries move down by one.
func (d *RecipeDraft) Remove(k ListKind, i int) error {
	var err error
	switch k {
	case Ingredients:
		d.Ingredients, err = removeAt(&d.lifecycle, d.Ingredients, i)
	case Nutrients:
		d.Nutrients, err = removeAt(&d.lifecycle, d.Nutrients, i)
	case Steps:
		d.Steps, err = removeAt(&d.lifecycle, d.Steps, i)
	default:
		err = fmt.Errorf("%w: list %q", ErrUnknownOp, k)
	}
	return err
}

func (d *RecipeDraft) SetIngredient(i int, m recipe.Measure) error {
	return setAt(&d.lifecycle, d.Ingredients, i, m)
}

func (d *RecipeDraft) SetNutrient(i int, m recipe.Measure) error {
	return setAt(&d.lifecycle, d.Nutrients, i, m)
}

func (d *RecipeDraft) SetStep(i int, s string) error {
	return setAt(&d.lifecycle, d.Steps, i, s)
}

func (d *RecipeDraft) Payload() (recipe.Payload, error) {
	p := recipe.Payload{
		Title:          d.Title,
		Image:          d.Image,
		ReadyInMinutes: d.ReadyInMinutes,
		Servings:       d.Servings,
		Tags:           d.Tags,
		Ingredients:    nonNil(d.Ingredients),
		Nutrients:      nonNil(d.Nutrients),
		Steps:          nonNil(d.Steps),
	}
	if err := validation.Struct(p); err != nil {
		return recipe.Payload{}, err
	}
	return p, nil
}

// BeginSubmit validates the draft and moves it to Submitting.
func (d *RecipeDraft) BeginSubmit() (recipe.Payload, error) {
	if d.Phase == PhaseEmpty {
		return recipe.Payload{}, ErrNothingToSubmit
	}
	if !d.Phase.can(PhaseSubmitting) {
		return recipe.Payload{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Phase, PhaseSubmitting)
	}

	p, err := d.Payload()
	if err != nil {
		return recipe.Payload{}, err
	}
	if err := d.move(PhaseSubmitting); err != nil {
		return recipe.Payload{}, err
	}
	return p, nil
}

func set[T comparable](l *lifecycle, field *T, v T) error {
	if *field == v {
		return nil
	}
	if err := l.touch(); err != nil {
		return err
	}
	*field = v
	return nil
}

func setAt[T comparable](l *lifecycle, list []T, i int, v T) error {
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(list))
	}
	return set(l, &list[i], v)
}

func removeAt[T any](l *lifecycle, list []T, i int) ([]T, error) {
	if i < 0 || i >= len(list) {
		return list, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(list))
	}
	if err := l.touch(); err != nil {
		return list, err
	}
	return append(list[:i], list[i+1:]...), nil
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
