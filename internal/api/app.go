package api

import (
	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/data"
)

// App is what every handler needs: a logger and access to the per-user sync
// services.
type App interface {
	Logger() internal.Logger
	Data() *data.Manager
}
