package store

import (
	"context"
	"fmt"

	"github.com/smazurov/hlsrelay/internal/overlays"
)

// Supported drivers.
const (
	DriverTOML  = "toml"
	DriverMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Driver        string
	File          string // toml
	MongoURI      string // mongo
	MongoDatabase string // mongo
}

// Open returns the Store named by cfg.Driver. An empty driver means toml.
func Open(ctx context.Context, cfg Config) (overlays.Store, error) {
	switch cfg.Driver {
	case "", DriverTOML:
		return NewTOML(cfg.File)
	case DriverMongo:
		db := cfg.MongoDatabase
		if db == "" {
			db = "rtsp_overlay_app"
		}
		return NewMongo(ctx, cfg.MongoURI, db)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
