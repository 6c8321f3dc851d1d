package api

import (
	"context"
	"net/http"
	"strconv"
)

// Login checks credentials. Bad credentials come back as a StatusError
// matching ErrUnauthorized.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/login",
		body:   map[string]string{"email": email, "password": password},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, call{
		op:     "signup",
		method: http.MethodPost,
		path:   "/signup",
		body:   req,
	})
}

// Children lists the kid accounts linked to a caregiver.
func (c *Client) Children(ctx context.Context, caregiverID int) ([]Child, error) {
	var out []Child
	err := c.do(ctx, call{
		op:     "children",
		method: http.MethodGet,
		path:   "/pendamping/" + strconv.Itoa(caregiverID) + "/children",
		out:    &out,
	})
	return out, err
}

// VerifyPassword re-checks a user's password before a sensitive action.
func (c *Client) VerifyPassword(ctx context.Context, userID int, password string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := c.do(ctx, call{
		op:     "verify-password",
		method: http.MethodPost,
		path:   userPath(userID, "/verify-password"),
		body:   map[string]string{"password": password},
		out:    &out,
	})
	if err != nil {
		return false, err
	}
	return out.Valid, nil
}
