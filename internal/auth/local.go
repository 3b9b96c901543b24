package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ytakagi/excelquiz/internal/store"
)

// LocalProvider keeps the session and the known profiles in the app
// state store.
type LocalProvider struct {
	state store.StateRepo

	mu       sync.Mutex
	next     int
	watchers map[int]func(Event, *Session)
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a provider persisting into state.
func NewLocalProvider(state store.StateRepo) *LocalProvider {
	return &LocalProvider{
		state:    state,
		watchers: make(map[int]func(Event, *Session)),
	}
}

func (p *LocalProvider) Current(ctx context.Context) (*Session, error) {
	raw, ok, err := p.state.Get(ctx, store.KeySession)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, displayName, email string) (*Session, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.ToLower(strings.TrimSpace(email))
	if displayName == "" || email == "" {
		return nil, fmt.Errorf("display name and email are required")
	}

	userID, err := p.userIDFor(ctx, email)
	if err != nil {
		return nil, err
	}

	s := &Session{
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := p.state.Put(ctx, store.KeySession, string(raw)); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	p.notify(SignedIn, s)
	return s, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	if err := p.state.Delete(ctx, store.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	p.notify(SignedOut, nil)
	return nil
}

func (p *LocalProvider) Watch(fn func(Event, *Session)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.watchers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.watchers, id)
	}
}

func (p *LocalProvider) notify(ev Event, s *Session) {
	p.mu.Lock()
	fns := make([]func(Event, *Session), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev, s)
	}
}

// userIDFor returns the stable user id for an email, minting one on
// first sign-in.
func (p *LocalProvider) userIDFor(ctx context.Context, email string) (string, error) {
	profiles := map[string]string{}
	raw, ok, err := p.state.Get(ctx, store.KeyProfiles)
	if err != nil {
		return "", fmt.Errorf("load profiles: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
			return "", fmt.Errorf("decode profiles: %w", err)
		}
	}

	if id, ok := profiles[email]; ok {
		return id, nil
	}

	id := uuid.NewString()
	profiles[email] = id
	encoded, err := json.Marshal(profiles)
	if err != nil {
		return "", fmt.Errorf("encode profiles: %w", err)
	}
	if err := p.state.Put(ctx, store.KeyProfiles, string(encoded)); err != nil {
		return "", fmt.Errorf("store profiles: %w", err)
	}
	return id, nil
}
