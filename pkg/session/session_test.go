package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/grid"
)

func TestNew(t *testing.T) {
	s := New(3, time.Hour)
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", s.ID, err)
	}
	if s.LayoutID != 3 || !s.Selection.IsNone() {
		t.Errorf("New() = %+v", s)
	}
	if s.IsExpired() {
		t.Error("fresh session expired")
	}
	if New(3, time.Hour).ID == s.ID {
		t.Error("ids should be unique")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := New(1, time.Hour)
	s.Selection = editor.Placed(grid.Pos{X: 1, Y: 2}, 7)
	if err := store.Set(ctx, s); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Selection != s.Selection {
		t.Errorf("selection = %v, want %v", got.Selection, s.Selection)
	}

	got.Selection = editor.None()
	again, _ := store.Get(ctx, s.ID)
	if again.Selection.IsNone() {
		t.Error("Get() should return a copy")
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	old := New(1, -time.Minute)
	live := New(1, time.Hour)
	store.Set(ctx, old)
	store.Set(ctx, live)

	if _, err := store.Get(ctx, old.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get(expired) = %v, want ErrExpired", err)
	}

	store.Set(ctx, old)
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() after cleanup = %d, want 1", store.Len())
	}
}

func TestTouch(t *testing.T) {
	s := New(1, time.Hour)
	s.ExpiresAt = time.Now().Add(time.Minute)
	s.Touch()
	if time.Until(s.ExpiresAt) < 59*time.Minute {
		t.Errorf("Touch() did not extend: %v", s.ExpiresAt)
	}
}
