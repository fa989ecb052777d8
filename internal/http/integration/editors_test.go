package integration_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/geocoder89/fitspark/internal/session"
)

func serveCatalog(be *backend) {
	be.handle(http.MethodGet, "/api/v1/recipe/get/recipes_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"recipes": []map[string]string{{"_id": "r1", "title": "Overnight oats"}}})
	})
}

func slotIDs(doc *goquery.Document, day int) []string {
	var ids []string
	doc.Find("#day-" + strconv.Itoa(day) + " tr.slot").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("data-slot"); ok {
			ids = append(ids, id)
		}
	})
	return ids
}

func rowIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("#recipe-list tr[data-id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		ids = append(ids, id)
	})
	return ids
}

func TestAdminCreatesMealPlanThroughDraft(t *testing.T) {
	be, srv := newBackend(t)
	serveCatalog(be)

	var creates atomic.Int32
	be.handle(http.MethodPost, "/api/v1/admin/create/meal_plan/", func(w http.ResponseWriter, r *http.Request) {
		if creates.Add(1) == 1 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "Day 2024-01-01 overlaps an existing plan"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"_id": "p-new"})
	})

	b := newBrowser(t, newRouter(t, srv.URL))
	b.login("admin")

	draftURL := location(t, b.get("/admin/meal-plans/new"))
	if !strings.HasPrefix(draftURL, "/admin/meal-plans/drafts/") {
		t.Fatalf("unexpected draft url %q", draftURL)
	}

	step := func(op string) {
		t.Helper()
		w := b.post(draftURL, url.Values{"op": {op}, "title": {"Lean week"}})
		if got := location(t, w); got != draftURL {
			t.Fatalf("%s redirected to %q, want %q", op, got, draftURL)
		}
	}

	// Two days, drop the second one, then two slots on the first.
	step("add_day")
	step("add_day")
	step("remove_day:1")
	step("add_slot:0")
	step("add_slot:0")

	w := b.get(draftURL)
	if w.Code != http.StatusOK {
		t.Fatalf("draft page: got %d", w.Code)
	}
	doc := parseHTML(t, w)
	if n := doc.Find("fieldset.day").Length(); n != 1 {
		t.Fatalf("days = %d, want 1", n)
	}
	ids := slotIDs(doc, 0)
	if len(ids) != 2 {
		t.Fatalf("slots = %v, want 2", ids)
	}
	if doc.Find(`select option[value="r1"]`).Length() != 2 {
		t.Fatal("every slot should offer the catalog recipes")
	}

	form := url.Values{
		"op":                                 {"submit"},
		"title":                              {"Lean week"},
		"days.0.date":                        {"2024-01-01"},
		"days.0.slots." + ids[0] + ".time":   {"08:00"},
		"days.0.slots." + ids[0] + ".recipe": {"r1"},
		"days.0.slots." + ids[1] + ".time":   {"12:00"},
		"days.0.slots." + ids[1] + ".recipe": {"r1"},
	}

	// The backend refuses the first submit; the form comes back intact.
	w = b.post(draftURL, form)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("refused submit: got %d, want 422", w.Code)
	}
	if got := parseHTML(t, w).Find("#form-error").Text(); !strings.Contains(got, "overlaps an existing plan") {
		t.Fatalf("form error = %q", got)
	}

	doc = parseHTML(t, b.get(draftURL))
	if v, _ := doc.Find(`input[name="days.0.date"]`).Attr("value"); v != "2024-01-01" {
		t.Fatalf("date not kept after a refused submit: %q", v)
	}
	if v, _ := doc.Find(`input[name="days.0.slots.` + ids[1] + `.time"]`).Attr("value"); v != "12:00" {
		t.Fatalf("slot time not kept after a refused submit: %q", v)
	}

	w = b.post(draftURL, form)
	if got := location(t, w); got != "/admin/meal-plans" {
		t.Fatalf("retry redirected to %q, want /admin/meal-plans (status %d)", got, w.Code)
	}

	calls := be.callsTo(http.MethodPost, "/api/v1/admin/create/meal_plan/")
	if len(calls) != 2 {
		t.Fatalf("create calls = %d, want 2", len(calls))
	}

	var payload struct {
		Title      string `json:"title"`
		DailyPlans []struct {
			Day     string            `json:"day"`
			Recipes map[string]string `json:"recipes"`
		} `json:"dailyPlans"`
	}
	if err := json.Unmarshal(calls[1].Body, &payload); err != nil {
		t.Fatalf("decode create body: %v body=%s", err, calls[1].Body)
	}
	if payload.Title != "Lean week" || len(payload.DailyPlans) != 1 {
		t.Fatalf("unexpected payload %s", calls[1].Body)
	}
	day := payload.DailyPlans[0]
	if day.Day != "2024-01-01" || len(day.Recipes) != 2 || day.Recipes["08:00"] != "r1" || day.Recipes["12:00"] != "r1" {
		t.Fatalf("unexpected day %+v", day)
	}
	if string(calls[0].Body) != string(calls[1].Body) {
		t.Fatalf("retry sent a different payload:\n%s\n%s", calls[0].Body, calls[1].Body)
	}

	if got := location(t, b.get(draftURL)); got != "/admin/meal-plans" {
		t.Fatalf("finished draft should be gone, got redirect %q", got)
	}
}

func TestMealPlanEditorCatalogUnauthorizedEndsSession(t *testing.T) {
	be, srv := newBackend(t)
	be.handle(http.MethodGet, "/api/v1/recipe/get/recipes_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token expired"})
	})

	b := newBrowser(t, newRouter(t, srv.URL))
	b.login("admin")

	draftURL := location(t, b.get("/admin/meal-plans/new"))

	w := b.get(draftURL)
	if got := location(t, w); got != "/login" {
		t.Fatalf("got redirect %q, want /login", got)
	}
	if b.cookie(session.TokenCookie) != nil || b.cookie(session.AdminCookie) != nil {
		t.Fatal("session cookies should be cleared")
	}
}

func TestMealPlanEditorSurvivesCatalogOutage(t *testing.T) {
	be, srv := newBackend(t)
	be.handle(http.MethodGet, "/api/v1/recipe/get/recipes_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream down"})
	})

	b := newBrowser(t, newRouter(t, srv.URL))
	b.login("admin")

	w := b.get(location(t, b.get("/admin/meal-plans/new")))
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
	if parseHTML(t, w).Find("#catalog-error").Length() != 1 {
		t.Fatal("expected the catalog notice")
	}
	if b.cookie(session.TokenCookie) == nil {
		t.Fatal("a non-auth catalog failure must keep the session")
	}
}

func TestAdminDeleteRefetchesList(t *testing.T) {
	be, srv := newBackend(t)

	var deleted atomic.Bool
	be.handle(http.MethodGet, "/api/v1/admin/get/recipes", func(w http.ResponseWriter, r *http.Request) {
		rows := []map[string]any{{"_id": "r2", "title": "Lentil soup"}}
		if !deleted.Load() {
			rows = append([]map[string]any{{"_id": "r1", "title": "Overnight oats"}}, rows...)
		}
		writeJSON(w, http.StatusOK, map[string]any{"recipes": rows, "page": 1, "pages": 1, "total": len(rows)})
	})
	be.handle(http.MethodDelete, "/api/v1/admin/delete/recipe/r1", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})

	b := newBrowser(t, newRouter(t, srv.URL))
	b.login("admin")

	if got := rowIDs(parseHTML(t, b.get("/admin/recipes"))); len(got) != 2 {
		t.Fatalf("rows before delete = %v", got)
	}
	// A second render is served from the cache.
	b.get("/admin/recipes")
	if n := len(be.callsTo(http.MethodGet, "/api/v1/admin/get/recipes")); n != 1 {
		t.Fatalf("list fetches before delete = %d, want 1", n)
	}

	w := b.post("/admin/recipes/r1/delete", url.Values{})
	if got := location(t, w); got != "/admin/recipes" {
		t.Fatalf("delete redirected to %q", got)
	}
	if n := len(be.callsTo(http.MethodDelete, "/api/v1/admin/delete/recipe/r1")); n != 1 {
		t.Fatalf("delete calls = %d, want 1", n)
	}

	doc := parseHTML(t, b.get("/admin/recipes"))
	if n := len(be.callsTo(http.MethodGet, "/api/v1/admin/get/recipes")); n != 2 {
		t.Fatalf("list fetches after delete = %d, want 2", n)
	}
	after := rowIDs(doc)
	if len(after) != 1 || after[0] != "r2" {
		t.Fatalf("rows after delete = %v, want [r2]", after)
	}
	if got := doc.Find("#flash").Text(); !strings.Contains(got, "Recipe deleted.") {
		t.Fatalf("flash = %q", got)
	}
}

func TestFailedDeleteKeepsRow(t *testing.T) {
	be, srv := newBackend(t)
	be.handle(http.MethodGet, "/api/v1/admin/get/recipes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"recipes": []map[string]any{{"_id": "r1", "title": "Overnight oats"}},
			"page":    1, "pages": 1, "total": 1,
		})
	})
	be.handle(http.MethodDelete, "/api/v1/admin/delete/recipe/r1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
	})

	b := newBrowser(t, newRouter(t, srv.URL))
	b.login("admin")

	w := b.post("/admin/recipes/r1/delete", url.Values{})
	if got := location(t, w); got != "/admin/recipes" {
		t.Fatalf("delete redirected to %q", got)
	}

	doc := parseHTML(t, b.get("/admin/recipes"))
	if doc.Find(`#recipe-list tr[data-id="r1"]`).Length() != 1 {
		t.Fatal("a failed delete must not remove the row")
	}
	if doc.Find("#flash").Text() == "" {
		t.Fatal("expected a failure flash")
	}
}

func TestLogoutNeedsPost(t *testing.T) {
	_, srv := newBackend(t)
	b := newBrowser(t, newRouter(t, srv.URL))
	b.login("ana")

	w := b.get("/logout")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /logout: got %d, want 200", w.Code)
	}
	if parseHTML(t, w).Find("#logout-form").Length() != 1 {
		t.Fatal("GET /logout should ask for confirmation")
	}
	if b.cookie(session.TokenCookie) == nil {
		t.Fatal("GET /logout must not end the session")
	}

	w = b.post("/logout", url.Values{})
	if got := location(t, w); got != "/login" {
		t.Fatalf("POST /logout redirected to %q", got)
	}
	if b.cookie(session.TokenCookie) != nil {
		t.Fatal("POST /logout should clear the session")
	}
}
