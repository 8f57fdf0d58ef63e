package reporter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakeCounts struct {
	tenants, users, files int64
	err                   error
}

func (f *fakeCounts) CountTenants(context.Context) (int64, error) { return f.tenants, f.err }
func (f *fakeCounts) CountUsers(context.Context) (int64, error)   { return f.users, f.err }
func (f *fakeCounts) CountFiles(context.Context) (int64, error)   { return f.files, f.err }

func TestRunOnce_LogsAggregates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New("* * * * *", &fakeCounts{tenants: 2, users: 10, files: 5},
		slog.New(slog.NewTextHandler(&buf, nil)))

	if err := r.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"tenants=2", "users=10", "files=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestRunOnce_PropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	r := New("* * * * *", &fakeCounts{err: errors.New("db closed")},
		slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	if err := r.runOnce(context.Background()); err == nil {
		t.Fatal("runOnce should surface the store failure")
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	t.Parallel()

	r := New("not a schedule", &fakeCounts{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := r.Start(); err == nil {
		t.Fatal("Start should reject a bad cron expression")
	}
}

func TestStart_EmptyScheduleDisabled(t *testing.T) {
	t.Parallel()

	r := New("", &fakeCounts{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	r := New("* * * * *", &fakeCounts{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
