package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/geocoder89/fitspark/internal/api"
	"github.com/geocoder89/fitspark/internal/domain/mealplan"
	"github.com/geocoder89/fitspark/internal/domain/recipe"
	"github.com/geocoder89/fitspark/internal/domain/stat"
	"github.com/geocoder89/fitspark/internal/domain/user"
	"github.com/geocoder89/fitspark/internal/listview"
	"github.com/geocoder89/fitspark/internal/session"
	"github.com/geocoder89/fitspark/internal/validation"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	chartWidth  = 600
	chartHeight = 200

	// statFetchLimit caps concurrent stat detail calls on the dashboard.
	statFetchLimit = 4
)

type AdminHandler struct {
	*Base
}

func NewAdminHandler(b *Base) *AdminHandler {
	return &AdminHandler{Base: b}
}

type statCard struct {
	Model  string
	Count  int
	Chart  stat.Chart
	Totals map[string]int
	Error  string
}

type dashboardView struct {
	Cards []statCard
	Error string
}

type userListView struct {
	Params listview.Params
	Pager  listview.Pager
	Users  []user.User
	Error  string
}

type userFormView struct {
	ID       string
	Action   string
	Username string
	Email    string
	Groups   []string
	Errors   *validation.Error
	Message  string
}

// Dashboard lists the tracked models and charts each one's activity. A model
// whose detail fails keeps its card with an inline error.
func (h *AdminHandler) Dashboard(ctx *gin.Context) {
	token := h.token(ctx)
	owner := h.owner(ctx)
	rctx := ctx.Request.Context()

	list, err := cached(rctx, h.Base, owner, api.ResourceStats, nil,
		func(c context.Context) (stat.ListResponse, error) {
			return h.api.ListStats(c, token)
		})
	if err != nil {
		msg, ok := h.loadError(ctx, err, "statistics")
		if !ok {
			return
		}
		h.render(ctx, http.StatusOK, "admin_dashboard.html", "Admin Dashboard", dashboardView{Error: msg})
		return
	}

	cards := make([]statCard, len(list.Stats))
	var (
		mu      sync.Mutex
		authErr error
	)

	g, gctx := errgroup.WithContext(rctx)
	g.SetLimit(statFetchLimit)
	for i, s := range list.Stats {
		cards[i] = statCard{Model: s.Model, Count: s.Count}
		id := s.ID
		if id == "" {
			id = s.Model
		}

		g.Go(func() error {
			detail, err := cached(gctx, h.Base, owner, api.ResourceStat, idParams(id),
				func(c context.Context) (stat.Stat, error) {
					return h.api.GetStat(c, token, id)
				})
			if err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					mu.Lock()
					authErr = err
					mu.Unlock()
					return err
				}
				cards[i].Error = api.Message(err, "Failed to load activity.")
				h.log.WarnContext(gctx, "stat_detail_failed", "model", s.Model, "error", err.Error())
				return nil
			}
			cards[i].Chart = stat.BuildChart(detail.Series(), chartWidth, chartHeight)
			cards[i].Totals = detail.StatusTotals()
			return nil
		})
	}
	_ = g.Wait()

	if authErr != nil && h.apiFailure(ctx, authErr) {
		return
	}
	h.render(ctx, http.StatusOK, "admin_dashboard.html", "Admin Dashboard", dashboardView{Cards: cards})
}

func (h *AdminHandler) Users(ctx *gin.Context) {
	params := listview.Parse(ctx.Request.URL.Query())
	token := h.token(ctx)
	view := userListView{Params: params}

	res, err := cached(ctx.Request.Context(), h.Base, h.owner(ctx), api.ResourceUsers, params.CacheKeyParams(),
		func(c context.Context) (user.ListResponse, error) {
			return h.api.ListUsers(c, token, params.Query())
		})
	if err != nil {
		msg, ok := h.loadError(ctx, err, "users")
		if !ok {
			return
		}
		view.Error = msg
		h.render(ctx, http.StatusOK, "admin_users.html", "Users", view)
		return
	}

	view.Users = res.Users
	view.Pager = listview.NewPager("/admin/users", params, pageInfo(params, res.Page, res.Pages, res.Total))
	h.render(ctx, http.StatusOK, "admin_users.html", "Users", view)
}

func (h *AdminHandler) NewUser(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "admin_user_form.html", "New user", userFormView{
		Action: "/admin/users",
		Groups: []string{user.GroupUser},
		Errors: &validation.Error{},
	})
}

func (h *AdminHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateRequest
	view := userFormView{Action: "/admin/users", Errors: &validation.Error{}}

	if verr := BindForm(ctx, &req); verr != nil {
		view.Username, view.Email, view.Groups, view.Errors = req.Username, req.Email, req.Groups, verr
		h.render(ctx, http.StatusUnprocessableEntity, "admin_user_form.html", "New user", view)
		return
	}

	if err := h.api.CreateUser(ctx.Request.Context(), h.token(ctx), req); err != nil {
		status, msg, ok := h.submitFailure(ctx, err)
		if !ok {
			return
		}
		view.Username, view.Email, view.Groups, view.Message = req.Username, req.Email, req.Groups, msg
		h.render(ctx, status, "admin_user_form.html", "New user", view)
		return
	}

	h.invalidate(ctx.Request.Context(), api.RouteAdminUserCreate)
	h.sessions.SetFlash(ctx, session.FlashSuccess, "User "+req.Username+" created.")
	ctx.Redirect(http.StatusSeeOther, "/admin/users")
}

func (h *AdminHandler) EditUser(ctx *gin.Context) {
	id := ctx.Param("id")

	u, err := h.api.GetUser(ctx.Request.Context(), h.token(ctx), id)
	if err != nil {
		h.failPage(ctx, err, "user", "/admin/users")
		return
	}

	h.render(ctx, http.StatusOK, "admin_user_form.html", "Edit user", userFormView{
		ID:       id,
		Action:   "/admin/users/" + id,
		Username: u.Username,
		Email:    u.Email,
		Groups:   u.Groups,
		Errors:   &validation.Error{},
	})
}

func (h *AdminHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")
	var req user.UpdateRequest
	view := userFormView{ID: id, Action: "/admin/users/" + id, Errors: &validation.Error{}}

	if verr := BindForm(ctx, &req); verr != nil {
		view.Username, view.Email, view.Groups, view.Errors = req.Username, req.Email, req.Groups, verr
		h.render(ctx, http.StatusUnprocessableEntity, "admin_user_form.html", "Edit user", view)
		return
	}
	if req.Groups == nil {
		req.Groups = []string{}
	}

	if err := h.api.UpdateUser(ctx.Request.Context(), h.token(ctx), id, req); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			h.failPage(ctx, err, "user", "/admin/users")
			return
		}
		status, msg, ok := h.submitFailure(ctx, err)
		if !ok {
			return
		}
		view.Username, view.Email, view.Groups, view.Message = req.Username, req.Email, req.Groups, msg
		h.render(ctx, status, "admin_user_form.html", "Edit user", view)
		return
	}

	h.invalidate(ctx.Request.Context(), api.RouteAdminUserUpdate)
	h.sessions.SetFlash(ctx, session.FlashSuccess, "User "+req.Username+" updated.")
	ctx.Redirect(http.StatusSeeOther, "/admin/users")
}

func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	err := h.api.DeleteUser(ctx.Request.Context(), h.token(ctx), ctx.Param("id"))
	h.afterDelete(ctx, err, api.RouteAdminUserDelete, "User", "/admin/users")
}

func (h *AdminHandler) Recipes(ctx *gin.Context) {
	params := listview.Parse(ctx.Request.URL.Query())
	token := h.token(ctx)
	view := recipeListView{Params: params}

	res, err := cached(ctx.Request.Context(), h.Base, h.owner(ctx), api.ResourceAdminRecipes, params.CacheKeyParams(),
		func(c context.Context) (recipe.ListResponse, error) {
			return h.api.AdminListRecipes(c, token, params.Query())
		})
	if err != nil {
		msg, ok := h.loadError(ctx, err, "recipes")
		if !ok {
			return
		}
		view.Error = msg
		h.render(ctx, http.StatusOK, "admin_recipes.html", "Recipes", view)
		return
	}

	view.Recipes = res.Recipes
	view.Pager = listview.NewPager("/admin/recipes", params, pageInfo(params, res.Page, res.Pages, res.Total))
	h.render(ctx, http.StatusOK, "admin_recipes.html", "Recipes", view)
}

func (h *AdminHandler) DeleteRecipe(ctx *gin.Context) {
	err := h.api.DeleteRecipe(ctx.Request.Context(), h.token(ctx), ctx.Param("id"))
	h.afterDelete(ctx, err, api.RouteAdminRecipeDelete, "Recipe", "/admin/recipes")
}

func (h *AdminHandler) MealPlans(ctx *gin.Context) {
	params := listview.Parse(ctx.Request.URL.Query())
	token := h.token(ctx)
	view := mealPlanListView{Params: params}

	res, err := cached(ctx.Request.Context(), h.Base, h.owner(ctx), api.ResourceAdminMealPlans, params.CacheKeyParams(),
		func(c context.Context) (mealplan.ListResponse, error) {
			return h.api.AdminListMealPlans(c, token, params.Query())
		})
	if err != nil {
		msg, ok := h.loadError(ctx, err, "meal plans")
		if !ok {
			return
		}
		view.Error = msg
		h.render(ctx, http.StatusOK, "admin_meal_plans.html", "Meal Plans", view)
		return
	}

	view.MealPlans = res.MealPlans
	view.Pager = listview.NewPager("/admin/meal-plans", params, pageInfo(params, res.Page, res.Pages, res.Total))
	h.render(ctx, http.StatusOK, "admin_meal_plans.html", "Meal Plans", view)
}

func (h *AdminHandler) DeleteMealPlan(ctx *gin.Context) {
	err := h.api.DeleteMealPlan(ctx.Request.Context(), h.token(ctx), ctx.Param("id"))
	h.afterDelete(ctx, err, api.RouteAdminMealPlanDelete, "Meal plan", "/admin/meal-plans")
}

// afterDelete answers a delete button. A delete of something already gone
// still refreshes the list, since the row the user saw is stale either way.
func (h *AdminHandler) afterDelete(ctx *gin.Context, err error, route api.Route, what, list string) {
	rctx := ctx.Request.Context()

	switch {
	case err == nil:
		h.invalidate(rctx, route)
		h.sessions.SetFlash(ctx, session.FlashSuccess, what+" deleted.")
	case errors.Is(err, api.ErrNotFound):
		h.invalidate(rctx, route)
		h.sessions.SetFlash(ctx, session.FlashError, what+" no longer exists.")
	default:
		if h.apiFailure(ctx, err) {
			return
		}
		h.log.WarnContext(rctx, "admin_delete_failed", "route", route.String(), "error", err.Error())
		h.sessions.SetFlash(ctx, session.FlashError, api.Message(err, "Failed to delete "+what+". Please try again."))
	}
	ctx.Redirect(http.StatusSeeOther, list)
}

// submitFailure maps a refused create or update to the status and banner of
// the re-rendered form. ok is false when apiFailure already answered.
func (b *Base) submitFailure(ctx *gin.Context, err error) (status int, message string, ok bool) {
	if b.apiFailure(ctx, err) {
		return 0, "", false
	}

	status = http.StatusBadGateway
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		status = http.StatusUnprocessableEntity
	} else {
		b.log.WarnContext(ctx.Request.Context(), "form_submit_failed", "path", ctx.Request.URL.Path, "error", err.Error())
	}
	return status, api.Message(err, "The server could not save your changes. Please try again."), true
}
