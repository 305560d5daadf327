package auth

import (
	"context"

	"github.com/panostzan/0500/internal"
)

type Provider interface {
	ValidateTokenLocal(token string) (*internal.User, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error)
}

// Credentials carries the email/password pair for sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Account exposes the hosted auth collaborator's account operations.
type Account interface {
	SignUp(ctx context.Context, creds Credentials) (*internal.User, error)
	SignIn(ctx context.Context, creds Credentials) (*internal.User, error)
	SignOut(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, email string) error
}
