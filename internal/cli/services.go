package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	ordinaldb "github.com/onemodel/ordinal/pkg/db"
	"github.com/onemodel/ordinal/pkg/metrics"
	"github.com/onemodel/ordinal/pkg/service/sorting"
	"github.com/onemodel/ordinal/pkg/service/splacement"
)

var (
	registry = prometheus.NewRegistry()

	placementMetrics = sync.OnceValue(func() *metrics.Metrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return metrics.New(registry)
	})
)

// Services holds everything a command needs.
type Services struct {
	Config    Config
	DB        *sql.DB
	Logger    *slog.Logger
	Reader    *sorting.Reader
	Writer    *sorting.Writer
	Placement *splacement.Service
	Metrics   *metrics.Metrics

	close func()
}

func (s *Services) Close() {
	if s.close != nil {
		s.close()
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func CreateServices(ctx context.Context) (*Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	db, closeDB, err := ordinaldb.Open(ctx, cfg.DB.Name, cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	m := placementMetrics()

	return &Services{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		Reader:    sorting.NewReader(db, logger),
		Writer:    sorting.NewWriter(db),
		Placement: splacement.New(db, logger, m),
		Metrics:   m,
		close:     closeDB,
	}, nil
}
