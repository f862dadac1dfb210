package main

import (
	"context"

	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// newJobStore selects the store backend: direct Postgres when DATABASE_URL is
// set, the external REST store otherwise.
func newJobStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool, cfg.JobStoreTable), pool.Close, nil
	}
	st, err := store.NewRESTStore(store.RESTOptions{
		BaseURL: cfg.JobStoreURL,
		APIKey:  cfg.JobStoreAPIKey,
		Table:   cfg.JobStoreTable,
		Logger:  &logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return st, func() {}, nil
}
