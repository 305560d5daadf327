package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/dashboard"
)

func GetSleepLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		log := svc.LoadSleepLog(c.Request.Context())
		HandleSuccess(c, log, nil)
	}
}

// PostBedtime logs "going to bed now".
func PostBedtime(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		tracker := dashboard.NewSleepTracker(svc, app.Logger())
		bed, err := tracker.LogBedtime(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to log bedtime")
			return
		}
		HandleSuccess(c, nil, map[string]any{"bedtime": bed, "pending": true})
	}
}

// PostWakeUp logs "just woke up", closing the open record or estimating a
// synthetic bedtime when none is open.
func PostWakeUp(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		tracker := dashboard.NewSleepTracker(svc, app.Logger())
		wake, err := tracker.LogWakeUp(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to log wake-up")
			return
		}
		HandleSuccess(c, nil, map[string]any{"wakeTime": wake, "pending": false})
	}
}

func DeleteSleepEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		date := c.Param("date")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid date")
			return
		}
		if err := svc.DeleteSleepEntry(c.Request.Context(), date); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete sleep entry")
			return
		}
		HandleSuccess(c, nil, map[string]any{"deleted": date})
	}
}

// GetSleepStats serves the dashboard numbers: last-7-day view, weekly
// average, debt, score, streak, and per-day bands.
func GetSleepStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		ctx := c.Request.Context()
		log := svc.LoadSleepLog(ctx)
		settings := svc.LoadSleepSettings(ctx)
		now := time.Now()

		days := dashboard.LastNDays(log, 7, now)
		type dayView struct {
			dashboard.DayLog
			Band string `json:"band"`
		}
		views := make([]dayView, len(days))
		for i, d := range days {
			views[i] = dayView{DayLog: d, Band: dashboard.DurationBand(d.Duration)}
		}

		meta := map[string]any{
			"average": dashboard.WeeklyAverage(log, now),
			"debt":    dashboard.SleepDebt(log, settings, 7, now),
			"score":   dashboard.Score(days, settings.TargetSleepHours),
			"streak":  dashboard.Streak(log, now),
		}
		HandleSuccess(c, views, meta)
	}
}

func GetWeeklyReview(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		review := dashboard.BuildWeeklyReview(c.Request.Context(), svc, time.Now())
		HandleSuccess(c, review, nil)
	}
}

type SettingsRequest struct {
	WakeHour          int     `json:"wakeHour" validate:"gte=0,lte=23"`
	WakeMinute        int     `json:"wakeMinute" validate:"gte=0,lte=59"`
	TargetSleepHours  float64 `json:"targetSleepHours" validate:"required,gt=0,lte=24"`
	IdealBedtimeStart string  `json:"idealBedtimeStart" validate:"omitempty,len=5"`
	IdealBedtimeEnd   string  `json:"idealBedtimeEnd" validate:"omitempty,len=5"`
}

func GetSleepSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		HandleSuccess(c, svc.LoadSleepSettings(c.Request.Context()), nil)
	}
}

func PutSleepSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}

		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := validate.Struct(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		settings := internal.DefaultSleepSettings()
		settings.WakeHour = req.WakeHour
		settings.WakeMinute = req.WakeMinute
		settings.TargetSleepHours = req.TargetSleepHours
		if req.IdealBedtimeStart != "" {
			settings.IdealBedtimeStart = req.IdealBedtimeStart
		}
		if req.IdealBedtimeEnd != "" {
			settings.IdealBedtimeEnd = req.IdealBedtimeEnd
		}

		synced := true
		if err := svc.SaveSleepSettings(c.Request.Context(), settings); err != nil {
			synced = false
		}
		HandleSuccess(c, settings, map[string]any{"synced": synced})
	}
}
