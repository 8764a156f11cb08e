package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/traitquery/internal/config"
	"github.com/zeusync/traitquery/internal/core/observability/log"
	"github.com/zeusync/traitquery/internal/core/observability/metrics"
	"github.com/zeusync/traitquery/internal/core/schedule"
	"github.com/zeusync/traitquery/internal/core/store"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideRegisterer,
	ProvideMetrics,
	ProvideComponents,
	ProvideWorld,
	ProvideSchedule,
)

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// ProvideMetrics returns nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config, reg prometheus.Registerer) *metrics.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewCollector(cfg.Metrics.Namespace, reg)
}

func ProvideComponents(cfg *config.Config) (*store.Components, error) {
	overrides, err := cfg.StorageOverrides()
	if err != nil {
		return nil, err
	}
	return store.NewComponents(overrides), nil
}

func ProvideWorld(cfg *config.Config, logger log.Log, components *store.Components) *store.World {
	return store.NewWorld(
		store.WithLogger(logger),
		store.WithComponents(components),
		store.WithTableCapacity(cfg.Store.TableCapacity),
	)
}

func ProvideSchedule(cfg *config.Config, logger log.Log, collector *metrics.Collector) *schedule.Schedule {
	return schedule.New(
		schedule.WithLogger(logger),
		schedule.WithMetrics(collector),
		schedule.WithWorkers(cfg.Schedule.Workers),
	)
}
