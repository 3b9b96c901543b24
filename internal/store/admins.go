package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrLastAdmin is returned when a delete would leave the directory empty.
// The invariant "at least one admin exists" is enforced both at the UI
// (before any store call) and here, against concurrent writers.
var ErrLastAdmin = errors.New("cannot delete the last remaining admin")

// AdminUser is one row of the admin directory.
type AdminUser struct {
	ID          int64
	Email       string
	DisplayName string // empty when unset
}

// AdminRepo is the admin directory: the authorization check, the listing
// and its mutations. Subscribe registers a callback fired after every
// successful mutation so views can re-list.
type AdminRepo interface {
	// IsAdmin reports whether the given email is in the directory. An
	// empty directory authorizes everyone, so the first signed-in user
	// can bootstrap it.
	IsAdmin(ctx context.Context, email string) (bool, error)

	List(ctx context.Context) ([]AdminUser, error)
	Insert(ctx context.Context, email, displayName string) error
	UpdateDisplayName(ctx context.Context, id int64, displayName string) error
	Delete(ctx context.Context, id int64) error

	// Subscribe registers a change listener and returns its cancel func.
	Subscribe(fn func()) (cancel func())
}

type listenerSet struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (s *listenerSet) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func())
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *listenerSet) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type adminRepo struct {
	db        *sql.DB
	listeners *listenerSet
}

func (r *adminRepo) IsAdmin(ctx context.Context, email string) (bool, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins`).Scan(&total); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if total == 0 {
		return true, nil
	}

	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins WHERE email = ?`,
		normalizeEmail(email)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return n > 0, nil
}

func (r *adminRepo) List(ctx context.Context) ([]AdminUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, display_name FROM admins ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []AdminUser
	for rows.Next() {
		var (
			a    AdminUser
			name sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Email, &name); err != nil {
			return nil, fmt.Errorf("scan admin row: %w", err)
		}
		a.DisplayName = name.String
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin rows: %w", err)
	}
	return admins, nil
}

func (r *adminRepo) Insert(ctx context.Context, email, displayName string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (email, display_name) VALUES (?, ?)`,
		email, nullable(strings.TrimSpace(displayName)))
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	r.listeners.notify()
	return nil
}

func (r *adminRepo) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admins SET display_name = ? WHERE id = ?`,
		nullable(strings.TrimSpace(displayName)), id)
	if err != nil {
		return fmt.Errorf("update admin display name: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	r.listeners.notify()
	return nil
}

func (r *adminRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete admin: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins`).Scan(&total); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if total <= 1 {
		return ErrLastAdmin
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete admin: %w", err)
	}
	r.listeners.notify()
	return nil
}

func (r *adminRepo) Subscribe(fn func()) (cancel func()) {
	return r.listeners.add(fn)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
