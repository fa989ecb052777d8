package api

import (
	"context"
	"net/url"

	"github.com/geocoder89/fitspark/internal/domain/mealplan"
)

func (c *Client) ListMealPlans(ctx context.Context, token string, q url.Values) (mealplan.ListResponse, error) {
	var out mealplan.ListResponse
	if err := c.Do(ctx, Request{Route: RouteMealPlans, Query: q, Token: token}, &out); err != nil {
		return mealplan.ListResponse{}, err
	}
	return out, nil
}

func (c *Client) GetMealPlan(ctx context.Context, token, id string) (mealplan.MealPlan, error) {
	var out mealplan.MealPlan
	if err := c.Do(ctx, Request{Route: RouteMealPlan, ID: id, Token: token}, &out); err != nil {
		return mealplan.MealPlan{}, asNotFound(err, mealplan.ErrNotFound)
	}
	return out, nil
}

func (c *Client) AdminListMealPlans(ctx context.Context, token string, q url.Values) (mealplan.ListResponse, error) {
	var out mealplan.ListResponse
	if err := c.Do(ctx, Request{Route: RouteAdminMealPlans, Query: q, Token: token}, &out); err != nil {
		return mealplan.ListResponse{}, err
	}
	return out, nil
}

func (c *Client) AdminGetMealPlan(ctx context.Context, token, id string) (mealplan.MealPlan, error) {
	var out mealplan.MealPlan
	if err := c.Do(ctx, Request{Route: RouteAdminMealPlan, ID: id, Token: token}, &out); err != nil {
		return mealplan.MealPlan{}, asNotFound(err, mealplan.ErrNotFound)
	}
	return out, nil
}

func (c *Client) CreateMealPlan(ctx context.Context, token string, p mealplan.Payload) error {
	return c.Do(ctx, Request{Route: RouteAdminMealPlanCreate, Body: p, Token: token}, nil)
}

func (c *Client) UpdateMealPlan(ctx context.Context, token, id string, p mealplan.Payload) error {
	err := c.Do(ctx, Request{Route: RouteAdminMealPlanUpdate, ID: id, Body: p, Token: token}, nil)
	return asNotFound(err, mealplan.ErrNotFound)
}

func (c *Client) DeleteMealPlan(ctx context.Context, token, id string) error {
	err := c.Do(ctx, Request{Route: RouteAdminMealPlanDelete, ID: id, Token: token}, nil)
	return asNotFound(err, mealplan.ErrNotFound)
}
