package api

import (
	"net/http"
	"net/url"
	"strings"
)

// Route is one backend endpoint. Path is relative to the API base URL and may
// hold a single {id} placeholder.
type Route struct {
	// Resource names the cached query family a route reads or invalidates.
	Resource string
	Method   string
	Path     string
}

// Expand fills the {id} placeholder, path-escaping the id.
func (r Route) Expand(id string) string {
	if !strings.Contains(r.Path, "{id}") {
		return r.Path
	}
	return strings.Replace(r.Path, "{id}", url.PathEscape(id), 1)
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

const (
	ResourceSession   = "session"
	ResourceRecipes   = "recipes"
	ResourceRecipe    = "recipe"
	ResourceCatalog   = "recipes_list"
	ResourceMealPlans = "meal_plans"
	ResourceMealPlan  = "meal_plan"
	ResourceUsers     = "admin_users"
	ResourceUser      = "admin_user"
	ResourceStats     = "stats"
	ResourceStat      = "stat"

	ResourceAdminRecipes   = "admin_recipes"
	ResourceAdminRecipe    = "admin_recipe"
	ResourceAdminMealPlans = "admin_meal_plans"
	ResourceAdminMealPlan  = "admin_meal_plan"
)

var (
	RouteLogin  = Route{ResourceSession, http.MethodPost, "auth/login"}
	RouteSignUp = Route{ResourceSession, http.MethodPost, "auth/signup"}
	RouteMe     = Route{ResourceSession, http.MethodGet, "auth/users/me"}

	RouteRecipes       = Route{ResourceRecipes, http.MethodGet, "api/v1/recipe/get/recipes"}
	RouteRecipe        = Route{ResourceRecipe, http.MethodGet, "api/v1/recipe/get/recipe/{id}"}
	RouteRecipeCatalog = Route{ResourceCatalog, http.MethodGet, "api/v1/recipe/get/recipes_list"}

	RouteMealPlans = Route{ResourceMealPlans, http.MethodGet, "api/v1/meal_plan/get/meal_plans/"}
	RouteMealPlan  = Route{ResourceMealPlan, http.MethodGet, "api/v1/meal_plan/get/meal_plan/{id}"}

	RouteAdminUsers      = Route{ResourceUsers, http.MethodGet, "api/v1/admin/get/users"}
	RouteAdminUser       = Route{ResourceUser, http.MethodGet, "api/v1/admin/get/user/{id}"}
	RouteAdminUserCreate = Route{ResourceUsers, http.MethodPost, "api/v1/admin/create/user/"}
	RouteAdminUserUpdate = Route{ResourceUsers, http.MethodPut, "api/v1/admin/update/user/{id}"}
	RouteAdminUserDelete = Route{ResourceUsers, http.MethodDelete, "api/v1/admin/delete/user/{id}"}

	RouteAdminRecipes      = Route{ResourceAdminRecipes, http.MethodGet, "api/v1/admin/get/recipes"}
	RouteAdminRecipe       = Route{ResourceAdminRecipe, http.MethodGet, "api/v1/admin/get/recipe/{id}"}
	RouteAdminRecipeCreate = Route{ResourceAdminRecipes, http.MethodPost, "api/v1/admin/create/recipe/"}
	RouteAdminRecipeUpdate = Route{ResourceAdminRecipes, http.MethodPatch, "api/v1/admin/update/recipe/{id}"}
	RouteAdminRecipeDelete = Route{ResourceAdminRecipes, http.MethodDelete, "api/v1/admin/delete/recipe/{id}"}

	RouteAdminMealPlans      = Route{ResourceAdminMealPlans, http.MethodGet, "api/v1/admin/get/meal_plans"}
	RouteAdminMealPlan       = Route{ResourceAdminMealPlan, http.MethodGet, "api/v1/admin/get/meal_plan/{id}"}
	RouteAdminMealPlanCreate = Route{ResourceAdminMealPlans, http.MethodPost, "api/v1/admin/create/meal_plan/"}
	RouteAdminMealPlanUpdate = Route{ResourceAdminMealPlans, http.MethodPatch, "api/v1/admin/update/meal_plan/{id}"}
	RouteAdminMealPlanDelete = Route{ResourceAdminMealPlans, http.MethodDelete, "api/v1/admin/delete/meal_plan/{id}"}

	RouteStats = Route{ResourceStats, http.MethodGet, "stats/models"}
	RouteStat  = Route{ResourceStat, http.MethodGet, "stats/model/{id}"}
)

// Invalidates lists the cached resources a successful mutation makes stale.
// Admin and public views of the same entity share backend state, so both go.
func Invalidates(r Route) []string {
	switch r.Resource {
	case ResourceAdminRecipes:
		return []string{ResourceAdminRecipes, ResourceAdminRecipe, ResourceRecipes, ResourceRecipe, ResourceCatalog}
	case ResourceAdminMealPlans:
		return []string{ResourceAdminMealPlans, ResourceAdminMealPlan, ResourceMealPlans, ResourceMealPlan}
	case ResourceUsers:
		return []string{ResourceUsers, ResourceUser}
	}
	return nil
}
