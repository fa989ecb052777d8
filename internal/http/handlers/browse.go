package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/domain/mealplan"
	"github.com/geocoder89/fitspark/internal/domain/recipe"
	"github.com/geocoder89/fitspark/internal/listview"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// BrowseHandler serves the public recipe and meal plan pages.
type BrowseHandler struct {
	*Base
}

func NewBrowseHandler(b *Base) *BrowseHandler {
	return &BrowseHandler{Base: b}
}

type recipeListView struct {
	Params  listview.Params
	Pager   listview.Pager
	Recipes []recipe.Recipe
	Error   string
}

type mealPlanListView struct {
	Params    listview.Params
	Pager     listview.Pager
	MealPlans []mealplan.MealPlan
	Error     string
}

type mealPlanView struct {
	Plan         mealplan.MealPlan
	Catalog      recipe.Catalog
	CatalogError bool
}

// pageInfo reads the paging block of a list answer. Backends that leave page
// out are taken to have answered the page that was asked for.
func pageInfo(params listview.Params, page, pages, total int) listview.PageInfo {
	if page == 0 {
		page = params.Page
	}
	return listview.NewPageInfo(page, pages, total)
}

func (h *BrowseHandler) ListRecipes(ctx *gin.Context) {
	params := listview.Parse(ctx.Request.URL.Query())
	token := h.token(ctx)
	view := recipeListView{Params: params}

	res, err := cached(ctx.Request.Context(), h.Base, h.owner(ctx), api.ResourceRecipes, params.CacheKeyParams(),
		func(c context.Context) (recipe.ListResponse, error) {
			return h.api.ListRecipes(c, token, params.Query())
		})
	if err != nil {
		msg, ok := h.loadError(ctx, err, "recipes")
		if !ok {
			return
		}
		view.Error = msg
		h.render(ctx, http.StatusOK, "recipes.html", "Recipes", view)
		return
	}

	view.Recipes = res.Recipes
	view.Pager = listview.NewPager("/recipes", params, pageInfo(params, res.Page, res.Pages, res.Total))
	h.render(ctx, http.StatusOK, "recipes.html", "Recipes", view)
}

func (h *BrowseHandler) GetRecipe(ctx *gin.Context) {
	id := ctx.Param("id")
	token := h.token(ctx)

	r, err := cached(ctx.Request.Context(), h.Base, h.owner(ctx), api.ResourceRecipe, idParams(id),
		func(c context.Context) (recipe.Recipe, error) {
			return h.api.GetRecipe(c, token, id)
		})
	if err != nil {
		h.failPage(ctx, err, "recipe", "/recipes")
		return
	}
	h.render(ctx, http.StatusOK, "recipe.html", r.Title, r)
}

func (h *BrowseHandler) ListMealPlans(ctx *gin.Context) {
	params := listview.Parse(ctx.Request.URL.Query())
	token := h.token(ctx)
	view := mealPlanListView{Params: params}

	res, err := cached(ctx.Request.Context(), h.Base, h.owner(ctx), api.ResourceMealPlans, params.CacheKeyParams(),
		func(c context.Context) (mealplan.ListResponse, error) {
			return h.api.ListMealPlans(c, token, params.Query())
		})
	if err != nil {
		msg, ok := h.loadError(ctx, err, "meal plans")
		if !ok {
			return
		}
		view.Error = msg
		h.render(ctx, http.StatusOK, "meal_plans.html", "Meal Plans", view)
		return
	}

	view.MealPlans = res.MealPlans
	view.Pager = listview.NewPager("/meal-plans", params, pageInfo(params, res.Page, res.Pages, res.Total))
	h.render(ctx, http.StatusOK, "meal_plans.html", "Meal Plans", view)
}

// GetMealPlan fetches the plan and the recipe catalog side by side. Only the
// plan is required; without the catalog recipes show as placeholders.
func (h *BrowseHandler) GetMealPlan(ctx *gin.Context) {
	id := ctx.Param("id")
	token := h.token(ctx)
	owner := h.owner(ctx)

	var (
		view       mealPlanView
		catalogErr error
	)

	g, gctx := errgroup.WithContext(ctx.Request.Context())
	g.Go(func() error {
		p, err := cached(gctx, h.Base, owner, api.ResourceMealPlan, idParams(id),
			func(c context.Context) (mealplan.MealPlan, error) {
				return h.api.GetMealPlan(c, token, id)
			})
		view.Plan = p
		return err
	})
	g.Go(func() error {
		view.Catalog, catalogErr = h.catalog(gctx, token, owner)
		// Unauthorized fails the page like the plan itself would.
		if errors.Is(catalogErr, api.ErrUnauthorized) {
			return catalogErr
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		h.failPage(ctx, err, "meal plan", "/meal-plans")
		return
	}

	if catalogErr != nil {
		view.CatalogError = true
		h.log.WarnContext(ctx.Request.Context(), "recipe_catalog_unavailable", "error", catalogErr.Error())
	}
	h.render(ctx, http.StatusOK, "meal_plan.html", view.Plan.Title, view)
}

type catalogEntry struct {
	Catalog recipe.Catalog
	Recipes []recipe.Summary
}

func (b *Base) catalogEntries(ctx context.Context, token, owner string) (catalogEntry, error) {
	return cached(ctx, b, owner, api.ResourceCatalog, nil,
		func(c context.Context) (catalogEntry, error) {
			cat, items, err := b.api.RecipeCatalog(c, token)
			return catalogEntry{Catalog: cat, Recipes: items}, err
		})
}

func (b *Base) catalog(ctx context.Context, token, owner string) (recipe.Catalog, error) {
	e, err := b.catalogEntries(ctx, token, owner)
	return e.Catalog, err
}

func idParams(id string) url.Values {
	return url.Values{"id": {id}}
}
