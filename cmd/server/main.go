package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/api"
	"github.com/panostzan/0500/internal/auth"
	"github.com/panostzan/0500/internal/config"
	"github.com/panostzan/0500/internal/data"
	"github.com/panostzan/0500/internal/remotestore"
)

type app struct {
	logger   internal.Logger
	manager  *data.Manager
	account  auth.Account
	sessions *auth.Sessions
}

func (a *app) Logger() internal.Logger  { return a.logger }
func (a *app) Data() *data.Manager      { return a.manager }
func (a *app) Account() auth.Account    { return a.account }
func (a *app) Sessions() *auth.Sessions { return a.sessions }

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		_ = os.Mkdir(cfg.DataDir, 0755)
	}

	remote, err := remotestore.New(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	manager := data.NewManager(remote, cfg.DataDir, cfg.LocalQuotaBytes, logger)

	// When a token starts resolving to a different user, drop the previous
	// identity's caches so one user's data never bleeds into another's view.
	sessions := auth.NewSessions(func(oldUserID, newUserID string) {
		logger.Infof("session identity changed (%s -> %s), releasing old service", oldUserID, newUserID)
		manager.Release(oldUserID)
	})

	var provider auth.Provider
	var account auth.Account
	if cfg.Env == "development" {
		provider = auth.NewLocalProvider(cfg.DevToken, logger)
	} else {
		rp := auth.NewRemoteProvider(cfg.AuthServiceURL, logger)
		provider = rp
		account = rp
	}

	a := &app{logger: logger, manager: manager, account: account, sessions: sessions}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.RequestIDMiddleware())

	r.POST("/auth/signup", api.SignUp(a))
	r.POST("/auth/signin", api.SignIn(a))
	r.POST("/auth/reset-password", api.ResetPassword(a))

	protected := r.Group("/api")
	protected.Use(auth.Middleware(provider, sessions, cfg))

	protected.POST("/auth/signout", api.SignOut(a))

	protected.GET("/goals", api.GetGoals(a))
	protected.PUT("/goals", api.PutGoals(a))
	protected.DELETE("/goals", api.ClearGoals(a))
	protected.POST("/goals/toggle", api.ToggleGoal(a))
	protected.GET("/goals/collapsed", api.GetCollapsedState(a))
	protected.PUT("/goals/collapsed", api.PutCollapsedState(a))

	protected.GET("/schedule", api.GetSchedule(a))
	protected.PUT("/schedule", api.PutSchedule(a))

	protected.GET("/sleep", api.GetSleepLog(a))
	protected.POST("/sleep/bedtime", api.PostBedtime(a))
	protected.POST("/sleep/wake", api.PostWakeUp(a))
	protected.DELETE("/sleep/:date", api.DeleteSleepEntry(a))
	protected.GET("/sleep/stats", api.GetSleepStats(a))
	protected.GET("/sleep/settings", api.GetSleepSettings(a))
	protected.PUT("/sleep/settings", api.PutSleepSettings(a))

	protected.GET("/notes", api.GetNotes(a))
	protected.PUT("/notes", api.PutNotes(a))

	protected.GET("/review/weekly", api.GetWeeklyReview(a))

	protected.POST("/flush", api.Flush(a))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("server running on %s (env=%s, storage=%s)", cfg.HTTPAddr, cfg.Env, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}

	// Flush pending debounced saves and close per-user services last so no
	// queued edit is lost on the way out.
	manager.CloseAll()
	remote.Close()
}
