package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/fitspark/internal/domain/user"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Login exchanges credentials for an access token. A rejected login maps to
// ErrInvalidCredentials whatever status the identity service chose.
func (c *Client) Login(ctx context.Context, creds user.Credentials) (user.TokenResponse, error) {
	var out user.TokenResponse
	err := c.Do(ctx, Request{Route: RouteLogin, Body: creds}, &out)
	if err != nil {
		var ve *ValidationError
		if errors.Is(err, ErrUnauthorized) || errors.As(err, &ve) {
			return user.TokenResponse{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return user.TokenResponse{}, err
	}
	if out.AccessToken == "" {
		return user.TokenResponse{}, &TransportError{Op: "login", Err: errors.New("response carried no access_token")}
	}
	return out, nil
}

func (c *Client) SignUp(ctx context.Context, req user.SignUpRequest) error {
	return c.Do(ctx, Request{Route: RouteSignUp, Body: req}, nil)
}

// Me returns the account behind token.
func (c *Client) Me(ctx context.Context, token string) (user.User, error) {
	var out user.User
	if err := c.Do(ctx, Request{Route: RouteMe, Token: token}, &out); err != nil {
		return user.User{}, err
	}
	return out, nil
}
