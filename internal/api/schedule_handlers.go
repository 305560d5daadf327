package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/dashboard"
)

// GetSchedule returns today's schedule, applying the once-a-day notebook
// reset first.
func GetSchedule(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		if _, err := dashboard.MaybeResetDaily(c.Request.Context(), svc, time.Now()); err != nil {
			app.Logger().Warnf("daily schedule reset failed: %v", err)
		}
		entries := svc.CachedSchedule()
		if entries == nil {
			entries = svc.LoadSchedule(c.Request.Context())
		}
		HandleSuccess(c, dashboard.PadSchedule(entries), nil)
	}
}

// PutSchedule replaces the schedule. Times are normalized before persisting;
// the query flag debounce=1 routes the write through the keystroke coalescer
// instead of saving immediately.
func PutSchedule(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}

		var entries []internal.ScheduleEntry
		if err := c.ShouldBindJSON(&entries); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		entries = dashboard.NormalizeEntries(entries)

		if c.Query("debounce") == "1" {
			svc.SaveScheduleDebounced(entries)
			HandleSuccess(c, entries, map[string]any{"queued": true})
			return
		}

		blocked := len(entries) == 0 || !internal.ScheduleHasContent(entries)
		if err := svc.SaveSchedule(c.Request.Context(), entries); err != nil {
			HandleSuccess(c, entries, map[string]any{"synced": false})
			return
		}
		meta := map[string]any{"synced": !blocked}
		if blocked {
			meta["blocked"] = "empty payload"
		}
		HandleSuccess(c, entries, meta)
	}
}

// Flush forces debounced schedule/notes writes through. Clients call this on
// navigation-away and before sign-out.
func Flush(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		svc.Flush()
		HandleSuccess(c, nil, map[string]any{"flushed": true, "activeSaves": svc.ActiveSaves()})
	}
}
