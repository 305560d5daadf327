package api

import (
	"github.com/gin-gonic/gin"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
	"github.com/panostzan/0500/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, data interface{}, meta map[string]any) {
	c.JSON(200, response.Success(data, meta))
}

// userService resolves the authenticated user's sync service. On failure it
// writes the error response itself and returns nil.
func userService(c *gin.Context, app App) *data.Service {
	user := c.MustGet("user").(*internal.User)
	svc, err := app.Data().ForUser(user.ID)
	if err != nil {
		HandleError(c, app.Logger(), err, 500, "Failed to open user storage")
		return nil
	}
	return svc
}
