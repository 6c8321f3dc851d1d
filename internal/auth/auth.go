// Package auth holds the signed-in identity and the caregiver impersonation
// state, persisted so a restart resumes the same session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/store"
)

var (
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrNotCaregiver     = errors.New("only a caregiver can act as a child")
	ErrNotImpersonating = errors.New("not acting as a child")
	ErrNotChild         = errors.New("target is not a kid account")
)

// FormError is a signup or login form that cannot be sent as filled in.
type FormError struct {
	Field  string
	Reason string
}

func (e *FormError) Error() string {
	return e.Field + ": " + e.Reason
}

// Backend is the part of the backend API the store needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Signup(ctx context.Context, req api.SignupRequest) error
}

// Store is the session state. It is safe for concurrent use; every mutation
// is written to the repo before it becomes visible.
type Store struct {
	repo    store.IdentityRepo
	backend Backend
	journal store.ActivityRepo
	log     *logger.Logger

	mu           sync.RWMutex
	current      *Identity
	impersonator *Identity
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithJournal records logins and impersonations in the activity journal.
func WithJournal(j store.ActivityRepo) Option {
	return func(s *Store) { s.journal = j }
}

// Open creates a Store and hydrates it from the repo.
func Open(ctx context.Context, repo store.IdentityRepo, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{repo: repo, backend: backend, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	rec, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("hydrate session: %w", err)
	}
	if rec != nil {
		s.current = fromRecord(rec.Active)
		s.impersonator = fromRecord(rec.Impersonator)
		s.log.Debug("session restored", "user_id", s.current.ID, "impersonating", s.impersonator != nil)
	}
	return s, nil
}

// Current returns the active identity.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Impersonator returns the caregiver acting as the current identity.
func (s *Store) Impersonator() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.impersonator == nil {
		return Identity{}, false
	}
	return *s.impersonator, true
}

func (s *Store) IsImpersonating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.impersonator != nil
}

// Login authenticates against the backend and replaces the session. Any
// previous impersonation is dropped.
func (s *Store) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, &FormError{Field: "email", Reason: "required"}
	}
	if password == "" {
		return Identity{}, &FormError{Field: "password", Reason: "required"}
	}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		ID:      res.UserID,
		Name:    res.Name,
		Email:   email,
		Role:    Role(res.Role),
		Segment: Segment(res.Segment),
	}
	if err := s.commit(ctx, &id, nil); err != nil {
		return Identity{}, err
	}
	s.log.Info("logged in", "user_id", id.ID, "role", string(id.Role))
	s.record(ctx, id.ID, store.ActivityLogin, "")
	return id, nil
}

// SignupForm is a new account. ParentID links a kid to its caregiver and is
// zero for self-registration.
type SignupForm struct {
	Name     string
	Email    string
	Password string
	Segment  Segment
	Role     Role
	ParentID int
}

// Validate checks the form before it is sent.
func (f SignupForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &FormError{Field: "name", Reason: "required"}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
		return &FormError{Field: "email", Reason: "invalid address"}
	}
	if f.Password == "" {
		return &FormError{Field: "password", Reason: "required"}
	}
	if f.Role != RoleKid && f.Role != RoleCaregiver {
		return &FormError{Field: "role", Reason: fmt.Sprintf("unknown role %q", f.Role)}
	}
	if !f.Segment.Valid() {
		return &FormError{Field: "segment", Reason: "choose 7-9 or 10-12"}
	}
	return nil
}

// Signup registers an account. It does not change the session.
func (s *Store) Signup(ctx context.Context, f SignupForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	req := api.SignupRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Segment:  f.Segment.Code(),
		Role:     string(f.Role),
	}
	if f.ParentID != 0 {
		parent := f.ParentID
		req.ParentID = &parent
	}
	if err := s.backend.Signup(ctx, req); err != nil {
		return err
	}
	s.log.Info("account created", "role", string(f.Role), "parent_id", f.ParentID)
	return nil
}

// Impersonate makes child the active identity, remembering the caregiver so
// ReturnToCaregiver can restore it.
func (s *Store) Impersonate(ctx context.Context, child Identity) error {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur == nil {
		return ErrNotLoggedIn
	}
	if !cur.IsCaregiver() {
		return ErrNotCaregiver
	}
	if !child.IsKid() {
		return ErrNotChild
	}

	caregiver := *cur
	if err := s.commit(ctx, &child, &caregiver); err != nil {
		return err
	}
	s.log.Info("impersonating", "caregiver_id", caregiver.ID, "child_id", child.ID)
	s.record(ctx, caregiver.ID, store.ActivityImpersonate, fmt.Sprintf("child=%d", child.ID))
	return nil
}

// ReturnToCaregiver ends an impersonation.
func (s *Store) ReturnToCaregiver(ctx context.Context) (Identity, error) {
	s.mu.RLock()
	imp := s.impersonator
	s.mu.RUnlock()

	if imp == nil {
		return Identity{}, ErrNotImpersonating
	}
	caregiver := *imp
	if err := s.commit(ctx, &caregiver, nil); err != nil {
		return Identity{}, err
	}
	s.log.Info("returned to caregiver", "caregiver_id", caregiver.ID)
	return caregiver, nil
}

// Logout clears the session.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.mu.Lock()
	s.current, s.impersonator = nil, nil
	s.mu.Unlock()
	s.log.Info("logged out")
	return nil
}

// commit persists then publishes the new session.
func (s *Store) commit(ctx context.Context, current, impersonator *Identity) error {
	err := s.repo.Save(ctx, store.SessionRecord{
		Active:       toRecord(current),
		Impersonator: toRecord(impersonator),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.current, s.impersonator = current, impersonator
	s.mu.Unlock()
	return nil
}

func (s *Store) record(ctx context.Context, userID int, kind store.ActivityKind, detail string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(ctx, store.ActivityEventData{UserID: userID, Kind: kind, Detail: detail}); err != nil {
		s.log.Warn("journal append failed", "kind", string(kind), "error", err)
	}
}
