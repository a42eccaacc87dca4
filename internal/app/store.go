package app

import (
	"context"
	"log/slog"

	"github.com/cpi-it-club/club-api/internal/platform/db"
)

// OpenStore connects the configured document store.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (db.Store, error) {
	if cfg.DocStore == DocStoreMemory {
		logger.Warn("using in-memory document store; data is lost on exit")
		return db.NewMemory(), nil
	}
	store, err := db.NewMongo(ctx, cfg.MongoConnectionURI(), cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to document store", slog.String("database", cfg.MongoDatabase))
	return store, nil
}
