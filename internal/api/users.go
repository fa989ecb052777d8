package api

import (
	"context"
	"net/url"

	"github.com/geocoder89/fitspark/internal/domain/user"
)

func (c *Client) ListUsers(ctx context.Context, token string, q url.Values) (user.ListResponse, error) {
	var out user.ListResponse
	if err := c.Do(ctx, Request{Route: RouteAdminUsers, Query: q, Token: token}, &out); err != nil {
		return user.ListResponse{}, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, token, id string) (user.User, error) {
	var out user.User
	if err := c.Do(ctx, Request{Route: RouteAdminUser, ID: id, Token: token}, &out); err != nil {
		return user.User{}, asNotFound(err, user.ErrNotFound)
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, req user.CreateRequest) error {
	return c.Do(ctx, Request{Route: RouteAdminUserCreate, Body: req, Token: token}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, req user.UpdateRequest) error {
	err := c.Do(ctx, Request{Route: RouteAdminUserUpdate, ID: id, Body: req, Token: token}, nil)
	return asNotFound(err, user.ErrNotFound)
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	err := c.Do(ctx, Request{Route: RouteAdminUserDelete, ID: id, Token: token}, nil)
	return asNotFound(err, user.ErrNotFound)
}
