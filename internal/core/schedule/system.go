package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// RunFunc is the body of a system. window spans from the system's previous run to now.
type RunFunc func(ctx context.Context, w *store.World, window tick.Window) error

// Stats are the runtime statistics of a system.
type Stats struct {
	Runs      uint64
	Errors    uint64
	LastError error
	Total     time.Duration
	Last      time.Duration
	Max       time.Duration
}

// Average returns the mean run duration.
func (s Stats) Average() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Runs)
}

// System is a unit of work with declared component access. Systems whose accesses are
// compatible run in the same stage.
type System struct {
	id       uuid.UUID
	name     string
	run      RunFunc
	accesses []*access.FilteredAccess

	mu      sync.Mutex
	enabled bool
	lastRun tick.Tick
	stats   Stats
}

// NewSystem creates an enabled system. accesses are the accesses of the queries run uses.
func NewSystem(name string, run RunFunc, accesses ...*access.FilteredAccess) *System {
	return &System{
		id:       uuid.New(),
		name:     name,
		run:      run,
		accesses: accesses,
		enabled:  true,
	}
}

func (s *System) ID() uuid.UUID {
	return s.id
}

func (s *System) Name() string {
	return s.name
}

func (s *System) Accesses() []*access.FilteredAccess {
	return s.accesses
}

// LastRun returns the thisRun tick of the system's previous run, or 0 if it never ran.
func (s *System) LastRun() tick.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *System) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *System) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// IsCompatible reports whether s and other may run at the same time.
func (s *System) IsCompatible(other *System) bool {
	for _, a := range s.accesses {
		for _, b := range other.accesses {
			if !a.IsCompatible(b) {
				return false
			}
		}
	}
	return true
}

// Conflicts lists the components that keep s and other apart.
func (s *System) Conflicts(other *System) []store.ComponentID {
	var out []store.ComponentID
	for _, a := range s.accesses {
		for _, b := range other.accesses {
			out = append(out, a.Conflicts(b)...)
		}
	}
	return out
}

func (s *System) setEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// execute runs the system over the window starting at its last run and advancing to
// thisRun.
func (s *System) execute(ctx context.Context, w *store.World, thisRun tick.Tick) (time.Duration, error) {
	s.mu.Lock()
	window := tick.Window{LastRun: s.lastRun, ThisRun: thisRun}
	s.mu.Unlock()

	start := time.Now()
	err := s.run(ctx, w, window)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = thisRun
	s.stats.Runs++
	s.stats.Total += elapsed
	s.stats.Last = elapsed
	s.stats.Max = max(s.stats.Max, elapsed)
	if err != nil {
		s.stats.Errors++
		s.stats.LastError = err
	}
	return elapsed, err
}

// checkTick keeps the last run tick within reach of now.
func (s *System) checkTick(now tick.Tick) {
	s.mu.Lock()
	s.lastRun.Check(now)
	s.mu.Unlock()
}
