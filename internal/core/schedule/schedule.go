// Package schedule runs systems in stages. Systems are grouped so that every pair in a
// stage has compatible component access; stages run one after another and the systems of
// a stage run concurrently.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/traitquery/internal/core/observability/log"
	"github.com/zeusync/traitquery/internal/core/observability/metrics"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/pkg/concurrent"
	"github.com/zeusync/traitquery/pkg/sequence"
)

var (
	ErrSystemExists   = errors.New("system already exists")
	ErrSystemNotFound = errors.New("system not found")
)

type Schedule struct {
	mu      sync.Mutex
	log     log.Log
	metrics *metrics.Collector
	workers int

	systems []*System
	byName  map[string]*System
	stages  [][]*System
	dirty   bool
}

type Option func(*Schedule)

func WithLogger(l log.Log) Option {
	return func(s *Schedule) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Schedule) {
		s.metrics = c
	}
}

// WithWorkers bounds the number of systems running at once. Zero means no bound.
func WithWorkers(n int) Option {
	return func(s *Schedule) {
		s.workers = n
	}
}

func New(opts ...Option) *Schedule {
	s := &Schedule{
		log:    log.Nop(),
		byName: make(map[string]*System),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a system. Insertion order is kept between conflicting systems.
func (s *Schedule) Add(sys *System) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[sys.name]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, sys.name)
	}
	s.systems = append(s.systems, sys)
	s.byName[sys.name] = sys
	s.dirty = true
	return nil
}

func (s *Schedule) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sys, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	delete(s.byName, name)
	for i, other := range s.systems {
		if other == sys {
			s.systems = append(s.systems[:i], s.systems[i+1:]...)
			break
		}
	}
	s.dirty = true
	return nil
}

func (s *Schedule) Get(name string) (*System, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sys, ok := s.byName[name]
	return sys, ok
}

// SetEnabled includes or excludes a system from subsequent runs.
func (s *Schedule) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sys, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	sys.setEnabled(enabled)
	s.dirty = true
	return nil
}

// Stages returns the names of the enabled systems grouped by stage.
func (s *Schedule) Stages() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages := s.plan()
	out := make([][]string, len(stages))
	for i, stage := range stages {
		for _, sys := range stage {
			out[i] = append(out[i], sys.name)
		}
	}
	return out
}

// Run executes every enabled system once. Each system advances the world's change tick and
// sees the window since its own previous run. The first failing stage stops the run.
func (s *Schedule) Run(ctx context.Context, w *store.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, stage := range s.plan() {
		err := concurrent.Concurrent(ctx, sequence.From(stage), s.workers, func(ctx context.Context, sys *System) error {
			elapsed, err := sys.execute(ctx, w, w.IncrementChangeTick())
			s.metrics.ObserveSystem(sys.name, elapsed, err)
			if err != nil {
				s.log.Error("system failed",
					log.String("system", sys.name),
					log.String("id", sys.id.String()),
					log.Error(err),
				)
				return fmt.Errorf("system %s: %w", sys.name, err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
	}

	if w.CheckChangeTicks() {
		now := w.ChangeTick()
		for _, sys := range s.systems {
			sys.checkTick(now)
		}
	}
	return nil
}

// plan groups enabled systems into stages. A system goes into the stage right after the
// last stage holding a system it conflicts with. Callers must hold mu.
func (s *Schedule) plan() [][]*System {
	if !s.dirty {
		return s.stages
	}

	var stages [][]*System
	for _, sys := range s.systems {
		if !sys.Enabled() {
			continue
		}
		at := 0
		for i, stage := range stages {
			for _, other := range stage {
				if sys.IsCompatible(other) {
					continue
				}
				at = i + 1
				s.metrics.RecordConflict()
				s.log.Debug("systems conflict",
					log.String("system", sys.name),
					log.String("with", other.name),
					log.Int("components", len(sys.Conflicts(other))),
				)
			}
		}
		if at == len(stages) {
			stages = append(stages, nil)
		}
		stages[at] = append(stages[at], sys)
	}

	s.stages = stages
	s.dirty = false
	s.log.Info("schedule planned",
		log.Int("systems", len(s.systems)),
		log.Int("stages", len(stages)),
	)
	return stages
}
