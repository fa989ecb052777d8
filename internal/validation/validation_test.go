package validation

import (
	"errors"
	"testing"

	"github.com/geocoder89/fitspark/internal/domain/recipe"
)

func TestStructMapsJSONPaths(t *testing.T) {
	p := recipe.Payload{
		Title:       "",
		Servings:    0,
		Ingredients: []recipe.Measure{{Name: "", Amount: 1}},
		Steps:       []string{"ok", ""},
	}

	err := Struct(p)
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *Error", err)
	}

	want := map[string]string{
		"title":               "is required",
		"servings":            "must be 1 or more",
		"ingredients[0].name": "is required",
		"steps[1]":            "is required",
	}
	for field, msg := range want {
		if got := ve.For(field); got != msg {
			t.Errorf("For(%q) = %q, want %q (all: %v)", field, got, msg, ve.Fields)
		}
	}
}

func TestStructValid(t *testing.T) {
	p := recipe.Payload{Title: "Grilled Chicken", Servings: 2, Steps: []string{"Grill"}}
	if err := Struct(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestErrorOrNil(t *testing.T) {
	var e Error
	if e.OrNil() != nil {
		t.Fatal("empty error should be nil")
	}
	e.Add("days[0].slots", "required", "every slot needs a time")
	if e.OrNil() == nil {
		t.Fatal("non-empty error should not be nil")
	}
	if e.Error() != "validation failed: days[0].slots every slot needs a time" {
		t.Fatalf("Error() = %q", e.Error())
	}
}

func TestMessage(t *testing.T) {
	tests := []struct{ rule, param, want string }{
		{"required", "", "is required"},
		{"oneof", "user admin", "must be one of user, admin"},
		{"gte", "0", "must be 0 or more"},
		{"weird", "", "failed weird validation"},
	}
	for _, tt := range tests {
		if got := Message(tt.rule, tt.param); got != tt.want {
			t.Errorf("Message(%q,%q) = %q, want %q", tt.rule, tt.param, got, tt.want)
		}
	}
}
