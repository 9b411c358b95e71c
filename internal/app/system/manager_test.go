package system

import (
	"context"
	"errors"
	"testing"
)

type recordingService struct {
	name     string
	log      *[]string
	startErr error
}

func (s recordingService) Name() string { return s.name }
func (s recordingService) Start(context.Context) error {
	*s.log = append(*s.log, "start "+s.name)
	return s.startErr
}
func (s recordingService) Stop(context.Context) error {
	*s.log = append(*s.log, "stop "+s.name)
	return nil
}

func TestManagerOrdersLifecycle(t *testing.T) {
	var log []string
	m := NewManager()
	for _, name := range []string{"a", "b"} {
		if err := m.Register(recordingService{name: name, log: &log}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if err := m.Register(recordingService{name: "a", log: &log}); err == nil {
		t.Fatalf("expected duplicate name to be rejected")
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start a", "start b", "stop b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("got %v, want %v", log, want)
		}
	}
}

func TestManagerRollsBackOnStartFailure(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	m := NewManager()
	_ = m.Register(recordingService{name: "a", log: &log})
	_ = m.Register(recordingService{name: "b", log: &log, startErr: boom})

	err := m.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if log[len(log)-1] != "stop a" {
		t.Fatalf("expected a to be stopped after failure, got %v", log)
	}
}

func TestManagerClosesRegistrationWhileRunning(t *testing.T) {
	var log []string
	m := NewManager()
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("start empty manager: %v", err)
	}
	if err := m.Register(recordingService{name: "late", log: &log}); err == nil {
		t.Fatalf("expected register on a running manager to fail")
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := m.Register(recordingService{name: "late", log: &log}); err != nil {
		t.Fatalf("register after stop: %v", err)
	}
}
