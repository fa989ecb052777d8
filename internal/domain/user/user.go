package user

import (
	"errors"
	"slices"
)

const (
	GroupUser  = "user"
	GroupAdmin = "admin"
)

// Groups offered by the admin user forms.
var Groups = []string{GroupUser, GroupAdmin}

var ErrNotFound = errors.New("user not found")

type User struct {
	ID       string   `json:"_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
}

func (u User) IsAdmin() bool {
	return slices.Contains(u.Groups, GroupAdmin)
}

type ListResponse struct {
	Users []User `json:"users"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int    `json:"total"`
}

type CreateRequest struct {
	Username string   `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email    string   `json:"email" form:"email" binding:"required,email"`
	Password string   `json:"password" form:"password" binding:"required,min=8"`
	Groups   []string `json:"groups" form:"groups" binding:"dive,oneof=user admin"`
}

type UpdateRequest struct {
	Username string   `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email    string   `json:"email" form:"email" binding:"required,email"`
	Groups   []string `json:"groups" form:"groups" binding:"dive,oneof=user admin"`
}

type Credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type SignUpRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

// TokenResponse is the identity service's answer to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
