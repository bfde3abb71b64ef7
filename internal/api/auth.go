package api

import (
	"context"
	"net/http"

	"github.com/steve-ongera/amazon/internal/domain"
)

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

// LoginInput is the payload for authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login: the identity plus the
// credential pair.
type AuthResult struct {
	User    domain.UserProfile `json:"user"`
	Access  string             `json:"access"`
	Refresh string             `json:"refresh"`
}

// TokenPair returns the credential pair carried by the auth result.
func (r *AuthResult) TokenPair() domain.TokenPair {
	return domain.TokenPair{Access: r.Access, Refresh: r.Refresh}
}

// Register creates a new account. Field-level validation failures come back
// as an APIError with Fields populated.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	return post[AuthResult](ctx, c, "/auth/register/", input)
}

// Login authenticates and returns the identity with a fresh credential pair.
// Persisting the pair is the session store's job, not this method's.
func (c *Client) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	return post[AuthResult](ctx, c, "/auth/login/", input)
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	return get[domain.UserProfile](ctx, c, "/auth/profile/", nil)
}

// UpdateProfileInput carries partial profile updates.
type UpdateProfileInput struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// UpdateProfile patches the user's profile and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.UserProfile, error) {
	var out domain.UserProfile
	err := c.Do(ctx, RequestSpec{Method: http.MethodPatch, Path: "/auth/profile/", Body: input}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword changes the account password.
func (c *Client) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	return c.Do(ctx, RequestSpec{Method: http.MethodPost, Path: "/auth/change-password/", Body: input}, nil)
}
