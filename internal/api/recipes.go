package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/geocoder89/fitspark/internal/domain/recipe"
)

func (c *Client) ListRecipes(ctx context.Context, token string, q url.Values) (recipe.ListResponse, error) {
	var out recipe.ListResponse
	if err := c.Do(ctx, Request{Route: RouteRecipes, Query: q, Token: token}, &out); err != nil {
		return recipe.ListResponse{}, err
	}
	return out, nil
}

func (c *Client) GetRecipe(ctx context.Context, token, id string) (recipe.Recipe, error) {
	var out recipe.Recipe
	if err := c.Do(ctx, Request{Route: RouteRecipe, ID: id, Token: token}, &out); err != nil {
		return recipe.Recipe{}, asNotFound(err, recipe.ErrNotFound)
	}
	return out, nil
}

// RecipeCatalog returns the id/title pairs used to label meal plan slots.
func (c *Client) RecipeCatalog(ctx context.Context, token string) (recipe.Catalog, []recipe.Summary, error) {
	var out recipe.CatalogResponse
	if err := c.Do(ctx, Request{Route: RouteRecipeCatalog, Token: token}, &out); err != nil {
		return nil, nil, err
	}
	return recipe.NewCatalog(out.Recipes), out.Recipes, nil
}

func (c *Client) AdminListRecipes(ctx context.Context, token string, q url.Values) (recipe.ListResponse, error) {
	var out recipe.ListResponse
	if err := c.Do(ctx, Request{Route: RouteAdminRecipes, Query: q, Token: token}, &out); err != nil {
		return recipe.ListResponse{}, err
	}
	return out, nil
}

func (c *Client) AdminGetRecipe(ctx context.Context, token, id string) (recipe.Recipe, error) {
	var out recipe.Recipe
	if err := c.Do(ctx, Request{Route: RouteAdminRecipe, ID: id, Token: token}, &out); err != nil {
		return recipe.Recipe{}, asNotFound(err, recipe.ErrNotFound)
	}
	return out, nil
}

func (c *Client) CreateRecipe(ctx context.Context, token string, p recipe.Payload) error {
	return c.Do(ctx, Request{Route: RouteAdminRecipeCreate, Body: p, Token: token}, nil)
}

func (c *Client) UpdateRecipe(ctx context.Context, token, id string, p recipe.Payload) error {
	err := c.Do(ctx, Request{Route: RouteAdminRecipeUpdate, ID: id, Body: p, Token: token}, nil)
	return asNotFound(err, recipe.ErrNotFound)
}

func (c *Client) DeleteRecipe(ctx context.Context, token, id string) error {
	err := c.Do(ctx, Request{Route: RouteAdminRecipeDelete, ID: id, Token: token}, nil)
	return asNotFound(err, recipe.ErrNotFound)
}

// asNotFound tags a 404 with the entity's own sentinel so both errors.Is
// checks hold.
func asNotFound(err, sentinel error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
