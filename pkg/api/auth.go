package api

import (
	"context"
	"net/http"

	"atelier/pkg/models"
)

// AuthResult is what login and refresh return
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a token. Wrong credentials come back as
// an *Error of KindUnauthorized or KindValidation and never raise AuthRequired.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: body, quiet: true}, &res)
	return res, err
}

// Refresh trades the current token for a fresh one
func (c *Client) Refresh(ctx context.Context) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/refresh", quiet: true}, &res)
	return res, err
}
