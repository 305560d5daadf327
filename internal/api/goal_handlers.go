package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/dashboard"
)

var validate = validator.New()

// GetGoals returns the goal lists, remote-first with local fallback. Sync
// failures never surface here; the fallback result is served instead.
func GetGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		goals := svc.LoadGoals(c.Request.Context())
		HandleSuccess(c, goals, nil)
	}
}

// PutGoals replaces the goal lists. A payload with zero goals across every
// category is refused by the sync layer; the response reports the guard so
// the client can tell nothing was persisted remotely.
func PutGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}

		var goals internal.GoalList
		if err := c.ShouldBindJSON(&goals); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		blocked := goals.Total() == 0
		if err := svc.SaveGoals(c.Request.Context(), &goals); err != nil {
			// Remote sync failed but the optimistic state stands; report
			// degraded rather than failing the request.
			HandleSuccess(c, goals, map[string]any{"synced": false})
			return
		}
		meta := map[string]any{"synced": !blocked}
		if blocked {
			meta["blocked"] = "empty payload"
		}
		HandleSuccess(c, goals, meta)
	}
}

// ClearGoals is the explicit clear-everything operation.
func ClearGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		if err := svc.ClearGoals(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to clear goals")
			return
		}
		HandleSuccess(c, nil, map[string]any{"cleared": true})
	}
}

type ToggleGoalRequest struct {
	Category string `json:"category" validate:"required,oneof=daily midTerm longTerm"`
	Index    int    `json:"index" validate:"gte=0"`
}

// ToggleGoal flips one checkbox, stamps completion time, snapshots today's
// daily progress, and persists the whole list.
func ToggleGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}

		var req ToggleGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		// Both paths yield a private copy; the shared cache is never mutated
		// in place.
		goals := svc.CachedGoals()
		if goals == nil {
			goals = svc.LoadGoals(c.Request.Context()).Clone()
		}
		now := time.Now()
		if err := dashboard.ToggleGoal(goals, req.Category, req.Index, now); err != nil {
			HandleError(c, app.Logger(), err, 400, "Toggle failed")
			return
		}
		dashboard.SnapshotDailyGoals(svc, goals, now)

		synced := true
		if err := svc.SaveGoals(c.Request.Context(), goals); err != nil {
			synced = false
		}
		HandleSuccess(c, goals, map[string]any{"synced": synced})
	}
}

// GetCollapsedState / PutCollapsedState manage the local-only fold preference.
func GetCollapsedState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		HandleSuccess(c, svc.LoadCollapsedState(), nil)
	}
}

func PutCollapsedState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		var state internal.CollapsedState
		if err := c.ShouldBindJSON(&state); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		svc.SaveCollapsedState(state)
		HandleSuccess(c, state, nil)
	}
}
