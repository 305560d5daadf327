package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/panostzan/0500/internal"
)

// RemoteProvider talks to the hosted auth service over HTTP. It implements
// both token validation and the account operations (sign-up, sign-in,
// sign-out, password reset).
type RemoteProvider struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewRemoteProvider(baseURL string, logger internal.Logger) *RemoteProvider {
	return &RemoteProvider{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

func (a *RemoteProvider) ValidateTokenLocal(token string) (*internal.User, error) {
	return nil, errors.New("not implemented in RemoteProvider")
}

func (a *RemoteProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
	var user internal.User
	if err := a.post(ctx, "/validate", map[string]string{"token": token}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *RemoteProvider) SignUp(ctx context.Context, creds Credentials) (*internal.User, error) {
	var user internal.User
	if err := a.post(ctx, "/signup", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *RemoteProvider) SignIn(ctx context.Context, creds Credentials) (*internal.User, error) {
	var user internal.User
	if err := a.post(ctx, "/signin", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *RemoteProvider) SignOut(ctx context.Context, token string) error {
	return a.post(ctx, "/signout", map[string]string{"token": token}, nil)
}

func (a *RemoteProvider) ResetPassword(ctx context.Context, email string) error {
	return a.post(ctx, "/reset-password", map[string]string{"email": email}, nil)
}

func (a *RemoteProvider) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		a.logger.Errorf("failed to create auth request: %v", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("failed to call auth service: %v", err)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.logger.Errorf("auth service returned %d for %s", resp.StatusCode, path)
		return errors.New("auth service returned non-200")
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Provider = (*RemoteProvider)(nil)
var _ Account = (*RemoteProvider)(nil)
