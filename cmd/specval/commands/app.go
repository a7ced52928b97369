package commands

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thoreinstein/specval/internal/config"
	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
	"github.com/thoreinstein/specval/internal/metrics"
	"github.com/thoreinstein/specval/internal/schema"
)

// app holds the process-wide schema store and validator. It is built
// once, after logging and configuration are set up.
type app struct {
	cfg       *config.Config
	store     *schema.Store
	validator *schema.Validator
	metrics   *metrics.Collector
	logger    *slog.Logger
}

var current *app

func newApp(c *config.Config, logger *slog.Logger) (*app, error) {
	if c == nil {
		c = config.Default()
	}

	fsys, err := c.SchemaFS()
	if err != nil {
		return nil, errors.NewUserError(err, "Check schema_root in your config")
	}

	collector := metrics.NewCollector(prometheus.NewRegistry(), c.Metrics.Namespace)
	store := schema.NewStore(schema.NewFSLoader(fsys), schema.WithStoreObserver(collector))
	v := schema.New(store,
		schema.WithDefaultVersion(c.SchemaVersion),
		schema.WithLogger(logger),
		schema.WithObserver(collector),
	)

	logging.WithSchema(logger, "", v.DefaultVersion()).Debug("schema store ready",
		"schema_root", c.SchemaRoot,
	)

	return &app{cfg: c, store: store, validator: v, metrics: collector, logger: logger}, nil
}

// getApp returns the shared app, building it on first use.
func getApp(ctx context.Context) (*app, error) {
	if current != nil {
		return current, nil
	}
	a, err := newApp(cfg, logging.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	current = a
	return current, nil
}
