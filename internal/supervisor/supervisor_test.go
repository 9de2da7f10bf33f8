package supervisor

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// runnerFunc adapts a function to Runner.
type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

// untilCancelled blocks until ctx is done and returns nil.
func untilCancelled(started *atomic.Int32) Runner {
	return runnerFunc(func(ctx context.Context) error {
		started.Add(1)
		<-ctx.Done()
		return nil
	})
}

func TestNewValidation(t *testing.T) {
	ok := runnerFunc(func(context.Context) error { return nil })

	tests := []struct {
		name    string
		units   []Unit
		wantErr error
	}{
		{"empty", nil, ErrNoSessions},
		{"duplicate", []Unit{{"local", ok}, {"local", ok}}, ErrDuplicateBroker},
		{"missing name", []Unit{{"", ok}}, ErrInvalidUnit},
		{"missing runner", []Unit{{"ttn", nil}}, ErrInvalidUnit},
		{"valid", []Unit{{"local", ok}, {"ttn", ok}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.units, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNames(t *testing.T) {
	ok := runnerFunc(func(context.Context) error { return nil })
	s, err := New([]Unit{{"local", ok}, {"ttn", ok}}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := s.Names(); !reflect.DeepEqual(got, []string{"local", "ttn"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRunCleanShutdown(t *testing.T) {
	var started atomic.Int32
	s, err := New([]Unit{
		{"local", untilCancelled(&started)},
		{"ttn", untilCancelled(&started)},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for started.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestRunFatalErrorIsolated(t *testing.T) {
	fatal := errors.New("subscription rejected")
	var started atomic.Int32
	var ttnStillRunning atomic.Bool

	s, err := New([]Unit{
		{"local", runnerFunc(func(context.Context) error { return fatal })},
		{"ttn", runnerFunc(func(ctx context.Context) error {
			started.Add(1)
			select {
			case <-ctx.Done():
			case <-time.After(50 * time.Millisecond):
				ttnStillRunning.Store(true)
				<-ctx.Done()
			}
			return nil
		})},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !ttnStillRunning.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !ttnStillRunning.Load() {
		t.Fatal("ttn session stopped when local failed")
	}
	cancel()

	err = <-done
	if !errors.Is(err, fatal) {
		t.Errorf("Run() error = %v, want %v", err, fatal)
	}
}

func TestRunAllFail(t *testing.T) {
	errLocal := errors.New("local down")
	errTTN := errors.New("ttn down")
	s, err := New([]Unit{
		{"local", runnerFunc(func(context.Context) error { return errLocal })},
		{"ttn", runnerFunc(func(context.Context) error { return errTTN })},
	}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = s.Run(context.Background())
	if !errors.Is(err, errLocal) && !errors.Is(err, errTTN) {
		t.Errorf("Run() error = %v, want one of the session errors", err)
	}
}
