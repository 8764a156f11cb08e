//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/traitquery/internal/config"
	"github.com/zeusync/traitquery/internal/core/schedule"
	"github.com/zeusync/traitquery/internal/core/store"
)

func InitializeWorld(cfg *config.Config) (*store.World, error) {
	wire.Build(ProviderSet)
	return nil, nil
}

func InitializeSchedule(cfg *config.Config) (*schedule.Schedule, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
