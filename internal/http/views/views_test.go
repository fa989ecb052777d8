package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/geocoder89/fitspark/internal/domain/recipe"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, name := range []string{
		"home.html", "about.html", "contact.html", "login.html", "signup.html", "profile.html",
		"recipes.html", "recipe.html", "meal_plans.html", "meal_plan.html", "error.html",
		"admin_dashboard.html", "admin_site_content.html", "admin_users.html", "admin_user_form.html",
		"admin_recipes.html", "admin_recipe_editor.html", "admin_meal_plans.html", "admin_meal_plan_editor.html",
	} {
		if !r.Has(name) {
			t.Errorf("page %s not registered", name)
		}
	}
}

func TestMissingPageFailsToRender(t *testing.T) {
	r := MustNew()
	if err := r.Instance("nope.html", nil).Render(nil); err == nil {
		t.Fatal("expected an error for an unknown page")
	}
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out := string(Markdown("**bold** <script>alert(1)</script>"))
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("markdown not rendered: %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html passed through: %s", out)
	}
}

func TestRecipeTitlePlaceholder(t *testing.T) {
	c := recipe.NewCatalog([]recipe.Summary{{ID: "r1", Title: "Oats"}})

	if got := RecipeTitle(c, "r1"); got != "Oats" {
		t.Fatalf("known id = %q", got)
	}
	if got := RecipeTitle(c, "r2"); got != UnknownRecipe {
		t.Fatalf("unknown id = %q", got)
	}
	if got := RecipeTitle(nil, "r1"); got != UnknownRecipe {
		t.Fatalf("nil catalog = %q", got)
	}
}

func TestFormatDay(t *testing.T) {
	tests := map[string]string{
		"2024-03-05":           "Tue, Mar 5 2024",
		"2024-03-05T00:00:00Z": "Tue, Mar 5 2024",
		"leg day":              "leg day",
		"":                     "",
	}
	for in, want := range tests {
		if got := FormatDay(in); got != want {
			t.Errorf("FormatDay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStaticServesStylesheet(t *testing.T) {
	f, err := Static().Open("site.css")
	if err != nil {
		t.Fatalf("open site.css: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil || buf.Len() == 0 {
		t.Fatalf("site.css empty: %v", err)
	}
}
