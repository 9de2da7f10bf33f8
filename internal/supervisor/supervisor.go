package supervisor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-running session. Implemented by *session.Session.
type Runner interface {
	Run(ctx context.Context) error
}

// Unit is one supervised session and the broker name it is reported under.
type Unit struct {
	Name   string
	Runner Runner
}

// Logger defines the logging interface used by the Supervisor.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Supervisor runs units concurrently.
type Supervisor struct {
	units  []Unit
	logger Logger
}

// New validates the units and creates a Supervisor. Nothing is started.
//
// Returns:
//   - ErrNoSessions when units is empty
//   - ErrDuplicateBroker when two units share a name
//   - ErrInvalidUnit when a unit has no name or runner
func New(units []Unit, logger Logger) (*Supervisor, error) {
	if len(units) == 0 {
		return nil, ErrNoSessions
	}

	seen := make(map[string]struct{}, len(units))
	for i, u := range units {
		if u.Name == "" || u.Runner == nil {
			return nil, fmt.Errorf("%w: unit %d", ErrInvalidUnit, i)
		}
		if _, dup := seen[u.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBroker, u.Name)
		}
		seen[u.Name] = struct{}{}
	}

	if logger == nil {
		logger = noopLogger{}
	}

	return &Supervisor{units: units, logger: logger}, nil
}

// Names returns the unit names in start order.
func (s *Supervisor) Names() []string {
	out := make([]string, 0, len(s.units))
	for _, u := range s.units {
		u := u
		out = append(out, u.Name)
	}
	return out
}

// Run starts every unit in its own goroutine and blocks until all have
// returned.
//
// A unit's error does not cancel the others. Returns nil if every unit
// returned nil (normally after ctx is cancelled), otherwise the first error
// reported, prefixed with the unit name.
func (s *Supervisor) Run(ctx context.Context) error {
	var g errgroup.Group

	for _, u := range s.units {
		u := u
		g.Go(func() error {
			s.logger.Info("starting broker session", "broker", u.Name)

			if err := u.Runner.Run(ctx); err != nil {
				s.logger.Error("broker session failed", "broker", u.Name, "error", err)
				return fmt.Errorf("session %s: %w", u.Name, err)
			}

			s.logger.Info("broker session ended", "broker", u.Name)
			return nil
		})
	}

	return g.Wait()
}
