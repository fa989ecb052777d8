package recipe

import "errors"

var ErrNotFound = errors.New("recipe not found")

// Measure is one ingredient or nutrient row.
type Measure struct {
	Name   string  `json:"name" validate:"required,max=100"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Unit   string  `json:"unit" validate:"max=20"`
}

// Tags are the fixed dietary flags of a recipe. Cheep is the backend's budget flag.
type Tags struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"glutenFree"`
	DairyFree  bool `json:"dairyFree"`
	Cheep      bool `json:"cheep"`
}

type Recipe struct {
	ID             string `json:"_id"`
	Title          string `json:"title"`
	Image          string `json:"image"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	Tags
	Ingredients []Measure `json:"ingredients"`
	Nutrients   []Measure `json:"nutrients"`
	Steps       []string  `json:"steps"`
}

// Summary is a catalog entry: enough to label a recipe in a select box.
type Summary struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type ListResponse struct {
	Recipes []Recipe `json:"recipes"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	Total   int      `json:"total"`
}

type CatalogResponse struct {
	Recipes []Summary `json:"recipes"`
}

// Payload is the body of a create or update call.
type Payload struct {
	Title          string `json:"title" validate:"required,max=200"`
	Image          string `json:"image" validate:"omitempty,url"`
	ReadyInMinutes int    `json:"readyInMinutes" validate:"gte=0"`
	Servings       int    `json:"servings" validate:"gte=1"`
	Tags
	Ingredients []Measure `json:"ingredients" validate:"dive"`
	Nutrients   []Measure `json:"nutrients" validate:"dive"`
	Steps       []string  `json:"steps" validate:"dive,required"`
}

// HighlightNutrients are the nutrients surfaced on the recipe detail page.
var HighlightNutrients = []string{"Calories", "Fat", "Protein", "Carbohydrates"}

// Highlights returns the nutrients listed in HighlightNutrients, in recipe order.
func (r Recipe) Highlights() []Measure {
	out := make([]Measure, 0, len(HighlightNutrients))
	for _, n := range r.Nutrients {
		for _, name := range HighlightNutrients {
			if n.Name == name {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Catalog indexes recipe summaries by id.
type Catalog map[string]string

func NewCatalog(items []Summary) Catalog {
	c := make(Catalog, len(items))
	for _, it := range items {
		c[it.ID] = it.Title
	}
	return c
}

// Title resolves a recipe id to its title. ok is false when the catalog does not know the id.
func (c Catalog) Title(id string) (string, bool) {
	if c == nil {
		return "", false
	}
	t, ok := c[id]
	return t, ok
}
