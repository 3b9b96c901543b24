package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ytakagi/excelquiz/internal/store"
)

func testProvider(t *testing.T) *LocalProvider {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewLocalProvider(st.StateRepo())
}

func TestCurrentWithoutSession(t *testing.T) {
	p := testProvider(t)
	s, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if s != nil {
		t.Errorf("Current = %+v, want nil", s)
	}
}

func TestSignInPersistsSession(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	s, err := p.SignIn(ctx, "山田 太郎", "Taro@Example.com")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.DisplayName != "山田 太郎" {
		t.Errorf("DisplayName = %q", s.DisplayName)
	}
	if s.Email != "taro@example.com" {
		t.Errorf("Email = %q, want lowercased", s.Email)
	}
	if s.UserID == "" {
		t.Error("UserID not assigned")
	}

	got, err := p.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got == nil || got.UserID != s.UserID {
		t.Errorf("Current = %+v, want the signed-in session", got)
	}
}

func TestSignInValidation(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	if _, err := p.SignIn(ctx, "", "a@example.com"); err == nil {
		t.Error("SignIn accepted empty name")
	}
	if _, err := p.SignIn(ctx, "名前", ""); err == nil {
		t.Error("SignIn accepted empty email")
	}
}

func TestReturningEmailKeepsUserID(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	first, err := p.SignIn(ctx, "名前A", "same@example.com")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	second, err := p.SignIn(ctx, "名前B", "SAME@example.com")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if second.UserID != first.UserID {
		t.Errorf("UserID changed across sign-ins: %q != %q", second.UserID, first.UserID)
	}

	other, err := p.SignIn(ctx, "別人", "other@example.com")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if other.UserID == first.UserID {
		t.Error("different emails share a UserID")
	}
}

func TestSignOutClearsSession(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	if _, err := p.SignIn(ctx, "名前", "a@example.com"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	s, err := p.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if s != nil {
		t.Errorf("Current = %+v after sign-out", s)
	}
}

func TestWatch(t *testing.T) {
	p := testProvider(t)
	ctx := context.Background()

	var events []Event
	cancel := p.Watch(func(ev Event, _ *Session) {
		events = append(events, ev)
	})

	if _, err := p.SignIn(ctx, "名前", "a@example.com"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	if len(events) != 2 || events[0] != SignedIn || events[1] != SignedOut {
		t.Errorf("events = %v, want [SignedIn SignedOut]", events)
	}

	cancel()
	if _, err := p.SignIn(ctx, "名前", "a@example.com"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("watcher fired after cancel: %v", events)
	}
}
