package remotestore

import (
	"fmt"

	"github.com/panostzan/0500/internal"
	"github.com/panostzan/0500/internal/config"
)

// New selects the backend from config: "postgres" or "memory".
func New(cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN, logger)
	case "memory":
		return NewMemoryStore(logger), nil
	default:
		return nil, fmt.Errorf("remotestore: unknown backend %q", cfg.StorageBackend)
	}
}
