// Package views holds the embedded page templates and the gin renderer that
// executes them. Every page is parsed together with the shared layout and
// partials, and is executed through the "layout" template.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/fitspark/internal/domain/recipe"
	"github.com/geocoder89/fitspark/internal/domain/user"
	"github.com/geocoder89/fitspark/internal/editor"
	"github.com/geocoder89/fitspark/internal/listview"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/gin-gonic/gin/render"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
)

// UnknownRecipe labels a recipe id the catalog cannot resolve, including
// every id when the catalog could not be fetched.
const UnknownRecipe = "Unknown recipe"

// Raw HTML in markdown input is dropped: WithUnsafe is not set.
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Page is the data every template receives. Data holds the page's own view.
type Page struct {
	Title     string
	Session   *session.State
	Flash     *session.Flash
	CSRFField template.HTML
	Path      string
	Admin     bool
	Data      any
}

// Renderer implements gin's render.HTMLRender over the embedded pages.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	entries, err := fs.Glob(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if entry == layoutFile || entry == partialsFile {
			continue
		}
		name := path.Base(entry)
		t, err := template.New(name).Funcs(Funcs()).ParseFS(templates, layoutFile, partialsFile, entry)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if t.Lookup("content") == nil {
			return nil, fmt.Errorf("parse %s: no content template", name)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustNew is New for program start-up.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Instance picks the page named name, e.g. "recipes.html".
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		return missingPage(name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Has reports whether a page is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

type missingPage string

func (m missingPage) Render(http.ResponseWriter) error {
	return fmt.Errorf("views: no page %q", string(m))
}

func (m missingPage) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Static is the stylesheet directory served under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Funcs is the template function map shared by every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":    Markdown,
		"recipeTitle": RecipeTitle,
		"catalogHas": func(c recipe.Catalog, id string) bool {
			_, ok := c.Title(id)
			return ok
		},
		"formatDay":   FormatDay,
		"dayField":    editor.DayField,
		"slotField":   editor.SlotField,
		"listField":   func(k string, i int, name string) string { return editor.ListField(editor.ListKind(k), i, name) },
		"errorPath":   func(k string, i int, name string) string { return editor.ErrorPath(editor.ListKind(k), i, name) },
		"debounceMs":  func() int64 { return listview.SearchDebounce.Milliseconds() },
		"limits":      func() []int { return listview.Limits },
		"filterKinds": func() []listview.FilterKind { return listview.Kinds },
		"readyWithin": func(p listview.Params) string {
			if f, ok := p.Filter(listview.MaxReadyMinutes); ok {
				if n, ok := f.Minutes(); ok {
					return strconv.Itoa(n)
				}
			}
			return ""
		},
		"userGroups": func() []string { return user.Groups },
		"hasGroup": func(groups []string, g string) bool {
			for _, have := range groups {
				if have == g {
					return true
				}
			}
			return false
		},
		"dict": dict,
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
	}
}

// dict builds the argument map of a partial from key/value pairs.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// Markdown renders s as HTML. On a render failure the escaped source is shown.
func Markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// RecipeTitle resolves id against the catalog, falling back to UnknownRecipe.
func RecipeTitle(c recipe.Catalog, id string) string {
	if t, ok := c.Title(id); ok && t != "" {
		return t
	}
	return UnknownRecipe
}

var dayLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// FormatDay renders a day plan date for display. Values that are not dates
// are shown as typed.
func FormatDay(s string) string {
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Mon, Jan 2 2006")
		}
	}
	return s
}
