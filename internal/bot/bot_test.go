package bot

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/edgard/storebot/internal/bot/tasks"
	"github.com/edgard/storebot/internal/config"
	"github.com/edgard/storebot/internal/logger"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func noopTask(context.Context) error { return nil }

func TestSchedulerStart(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":  {Enabled: true, Schedule: "0 */5 * * * *"},
		"disabled": {Enabled: false, Schedule: "0 */5 * * * *"},
		"unknown":  {Enabled: true, Schedule: "0 */5 * * * *"},
		"empty":    {Enabled: true},
		"invalid":  {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"enabled":  noopTask,
		"disabled": noopTask,
		"empty":    noopTask,
		"invalid":  noopTask,
	}

	s, err := NewScheduler(logger.Discard(), cfg, taskMap)
	if err != nil {
		t.Fatalf("NewScheduler error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start should fail")
	}

	if got := s.Scheduled(); !slices.Equal(got, []string{"enabled"}) {
		t.Errorf("Scheduled = %v, want [enabled]", got)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop error: %v", err)
	}
}

func TestSchedulerNoTasks(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(logger.Discard(), nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if len(s.Scheduled()) != 0 {
		t.Errorf("Scheduled = %v, want none", s.Scheduled())
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop error: %v", err)
	}
}

func TestAppRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(logger.Discard(), &config.SchedulerConfig{}, nil)
	if err != nil {
		t.Fatalf("NewScheduler error: %v", err)
	}
	server := runnerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	app := NewApp(logger.Discard(), server, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAppRunServerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("listen failed")
	app := NewApp(logger.Discard(), runnerFunc(func(context.Context) error { return boom }), nil)

	if err := app.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want %v", err, boom)
	}
}

func TestAppRunServerReturnsEarly(t *testing.T) {
	t.Parallel()

	app := NewApp(logger.Discard(), runnerFunc(func(context.Context) error { return nil }), nil)

	if err := app.Run(context.Background()); err == nil {
		t.Error("Run should fail when the server stops on its own")
	}
}
