package auth

import (
	"context"
	"errors"

	"github.com/panostzan/0500/internal"
)

// LocalProvider accepts a single fixed token. Development only.
type LocalProvider struct {
	Token  string
	logger internal.Logger
}

func NewLocalProvider(token string, logger internal.Logger) *LocalProvider {
	return &LocalProvider{Token: token, logger: logger}
}

func (a *LocalProvider) ValidateTokenLocal(token string) (*internal.User, error) {
	if token == a.Token {
		return &internal.User{ID: "u1", Email: "demo@example.com", Token: a.Token}, nil
	}
	a.logger.Warnf("invalid token: %s", token)
	return nil, errors.New("invalid token")
}

func (a *LocalProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
	a.logger.Warnf("ValidateTokenRemote not implemented in LocalProvider")
	return nil, errors.New("not implemented in LocalProvider")
}
