package api

import (
	"github.com/gin-gonic/gin"
)

type NotesRequest struct {
	Content string `json:"content"`
}

func GetNotes(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}
		content := svc.LoadNotes(c.Request.Context())
		HandleSuccess(c, NotesRequest{Content: content}, nil)
	}
}

// PutNotes saves the notes blob. With debounce=1 the remote write rides the
// keystroke coalescer; the local backup is written either way.
func PutNotes(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := userService(c, app)
		if svc == nil {
			return
		}

		var req NotesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if c.Query("debounce") == "1" {
			svc.SaveNotesDebounced(req.Content)
			HandleSuccess(c, nil, map[string]any{"queued": true})
			return
		}

		synced := true
		if err := svc.SaveNotes(c.Request.Context(), req.Content); err != nil {
			synced = false
		}
		HandleSuccess(c, nil, map[string]any{"synced": synced})
	}
}
