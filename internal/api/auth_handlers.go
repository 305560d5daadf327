package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/auth"
)

// AuthApp is the extra wiring the account endpoints need on top of App.
type AuthApp interface {
	App
	Account() auth.Account // nil in development (token auth only)
	Sessions() *auth.Sessions
}

func requireAccount(c *gin.Context, app AuthApp) auth.Account {
	acct := app.Account()
	if acct == nil {
		HandleError(c, app.Logger(), errors.New("no auth service configured"), 404, "Account operations unavailable")
	}
	return acct
}

func SignUp(app AuthApp) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := requireAccount(c, app)
		if acct == nil {
			return
		}
		var creds auth.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := validate.Struct(&creds); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		user, err := acct.SignUp(c.Request.Context(), creds)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Sign-up failed")
			return
		}
		HandleSuccess(c, user, nil)
	}
}

func SignIn(app AuthApp) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := requireAccount(c, app)
		if acct == nil {
			return
		}
		var creds auth.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		user, err := acct.SignIn(c.Request.Context(), creds)
		if err != nil {
			HandleError(c, app.Logger(), err, 401, "Sign-in failed")
			return
		}
		HandleSuccess(c, user, nil)
	}
}

// SignOut flushes and tears down the user's sync service before dropping the
// session, so debounced edits are not lost.
func SignOut(app AuthApp) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)
		app.Data().Release(user.ID)

		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		app.Sessions().Drop(token)

		if acct := app.Account(); acct != nil {
			if err := acct.SignOut(c.Request.Context(), token); err != nil {
				app.Logger().Warnf("remote sign-out failed: %v", err)
			}
		}
		HandleSuccess(c, nil, map[string]any{"signedOut": true})
	}
}

func ResetPassword(app AuthApp) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := requireAccount(c, app)
		if acct == nil {
			return
		}
		var req struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}
		if err := acct.ResetPassword(c.Request.Context(), req.Email); err != nil {
			HandleError(c, app.Logger(), err, 500, "Password reset failed")
			return
		}
		HandleSuccess(c, nil, map[string]any{"sent": true})
	}
}
