package bot

import (
	"context"
	"slices"
	"testing"

	"github.com/edgard/autoreply/internal/bot/tasks"
	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/logger"
)

func noopTask(context.Context) error { return nil }

func TestScheduler_StartSchedulesOnlyRunnableTasks(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"journal_prune":   {Enabled: true, Schedule: "0 0 4 * * *"},
		"sql_maintenance": {Enabled: false, Schedule: "0 30 4 * * 0"},
		"unknown_task":    {Enabled: true, Schedule: "0 0 5 * * *"},
		"no_schedule":     {Enabled: true},
		"bad_schedule":    {Enabled: true, Schedule: "every now and then"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"journal_prune":   noopTask,
		"sql_maintenance": noopTask,
		"no_schedule":     noopTask,
		"bad_schedule":    noopTask,
	}

	s, err := NewScheduler(logger.Discard(), cfg, taskMap)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		if err := s.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	}()

	if got := s.Jobs(); !slices.Equal(got, []string{"journal_prune"}) {
		t.Errorf("Jobs() = %v, want [journal_prune]", got)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() expected error")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
