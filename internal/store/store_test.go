package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSessionRepository_CRUD(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{
		ID:            "session_1700000000000",
		Action:        "wave",
		StartedAt:     time.Now().Add(-time.Minute),
		DurationSec:   10.0,
		FrameCount:    300,
		FPS:           30,
		SchemaVersion: "1.0",
		BinPath:       "/tmp/session_1700000000000_data.bin",
		MetaPath:      "/tmp/session_1700000000000_meta.json",
	}

	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Action != "wave" || got.FrameCount != 300 || got.FPS != 30 {
		t.Errorf("GetByID() = %+v", got)
	}

	// A second, newer session lists first.
	newer := &Session{
		ID:            "session_1700000005000",
		Action:        "jump",
		StartedAt:     time.Now(),
		DurationSec:   10.0,
		FrameCount:    290,
		FPS:           29,
		SchemaVersion: "1.0",
		BinPath:       "/tmp/b.bin",
		MetaPath:      "/tmp/b.json",
	}
	if err := s.Sessions().Create(newer); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("List() returned %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != newer.ID {
		t.Errorf("List()[0].ID = %s, want most recent first", sessions[0].ID)
	}

	if err := s.Sessions().Delete(sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Sessions().GetByID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Sessions().Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double Delete() error = %v, want ErrNotFound", err)
	}
}

func TestTargetRepository_CRUD(t *testing.T) {
	s := newTestStore(t)

	target := &TargetRecord{
		ID:     "target-1",
		Name:   "left orb",
		X:      120,
		Y:      340,
		Radius: 25,
	}

	if err := s.Targets().Create(target); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Targets().GetByID("target-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.X != 120 || got.Y != 340 || got.Radius != 25 {
		t.Errorf("GetByID() = %+v", got)
	}

	dom := got.ToTarget()
	if dom.ID != "target-1" || dom.Radius != 25 {
		t.Errorf("ToTarget() = %+v", dom)
	}

	got.X = 200
	got.Radius = 30
	if err := s.Targets().Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	updated, _ := s.Targets().GetByID("target-1")
	if updated.X != 200 || updated.Radius != 30 {
		t.Errorf("after Update() = %+v", updated)
	}

	list, err := s.Targets().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d targets, want 1", len(list))
	}

	if err := s.Targets().Delete("target-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Targets().Update(got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() after delete error = %v, want ErrNotFound", err)
	}
}

func TestTargetRepository_RejectsNonPositiveRadius(t *testing.T) {
	s := newTestStore(t)

	err := s.Targets().Create(&TargetRecord{ID: "bad", X: 0, Y: 0, Radius: 0})
	if err == nil {
		t.Error("expected constraint violation for radius 0")
	}
}
