// Package moderation backs the statistics and review view: it loads a
// child's results and lets a caregiver correct them. Every mutation is
// followed by a fresh read of the tiles so the view always shows the
// backend's state.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/catalog"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/store"
)

// RecentLimit is how many recent answers the overview shows.
const RecentLimit = 5

var (
	// ErrWrongPassword means the confirmation password was rejected. The
	// pending action is kept so the password can be retried.
	ErrWrongPassword = errors.New("wrong password")

	ErrNoPending = errors.New("no action awaiting confirmation")
)

// Backend is the part of the API the review view calls.
type Backend interface {
	Stats(ctx context.Context, userID int) (*api.Stats, error)
	Responses(ctx context.Context, userID, limit int) ([]api.Response, error)
	VerifyPassword(ctx context.Context, userID int, password string) (bool, error)

	OverrideCorrect(ctx context.Context, responseID int) error
	OverrideIncorrect(ctx context.Context, responseID int) error
	Unflag(ctx context.Context, responseID int) error
	MarkRepeatable(ctx context.Context, responseID int) error
	UnmarkRepeatable(ctx context.Context, responseID int) error
	FlagLatest(ctx context.Context, userID int, narrativeID api.NarrativeID) error
}

// Service moderates one child's answers.
type Service struct {
	backend Backend
	userID  int
	journal store.ActivityRepo
	log     *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records moderation actions locally.
func WithJournal(j store.ActivityRepo) Option {
	return func(s *Service) { s.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service for the child userID.
func New(backend Backend, userID int, opts ...Option) *Service {
	s := &Service{backend: backend, userID: userID, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("user_id", userID)
	return s
}

// Overview is everything the statistics screen shows.
type Overview struct {
	Stats  *api.Stats
	Recent []api.Response
	Tiles  []api.Response
}

// Overview loads statistics, recent answers and tiles concurrently.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.backend.Stats(gctx, s.userID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		ov.Stats = st
		return nil
	})
	g.Go(func() error {
		r, err := s.backend.Responses(gctx, s.userID, RecentLimit)
		if err != nil {
			return fmt.Errorf("load recent answers: %w", err)
		}
		ov.Recent = r
		return nil
	})
	g.Go(func() error {
		t, err := s.Tiles(gctx)
		if err != nil {
			return err
		}
		ov.Tiles = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

// Tiles returns the latest answer per story, newest first.
func (s *Service) Tiles(ctx context.Context) ([]api.Response, error) {
	all, err := s.backend.Responses(ctx, s.userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}
	return catalog.Latest(all), nil
}

// OverrideCorrectness sets whether an answer counts as correct and clears
// its review flag. Both calls are issued together and both must succeed
// before the tiles are reread.
func (s *Service) OverrideCorrectness(ctx context.Context, responseID int, correct bool) ([]api.Response, error) {
	override := s.backend.OverrideIncorrect
	if correct {
		override = s.backend.OverrideCorrect
	}

	// A failure in one call must not cancel the other.
	var g errgroup.Group
	g.Go(func() error { return override(ctx, responseID) })
	g.Go(func() error { return s.backend.Unflag(ctx, responseID) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("override response %d: %w", responseID, err)
	}

	s.record(ctx, store.ActivityEventData{
		ResponseID: responseID,
		Kind:       store.ActivityOverride,
		Correct:    &correct,
	})
	s.log.Info("correctness overridden", "response_id", responseID, "correct", correct)
	return s.Tiles(ctx)
}

// SetRepeatable puts a story back into, or takes it out of, the learning
// pool.
func (s *Service) SetRepeatable(ctx context.Context, responseID int, repeatable bool) ([]api.Response, error) {
	call, kind := s.backend.UnmarkRepeatable, store.ActivityUnrepeatable
	if repeatable {
		call, kind = s.backend.MarkRepeatable, store.ActivityRepeatable
	}
	if err := call(ctx, responseID); err != nil {
		return nil, fmt.Errorf("set repeatable on response %d: %w", responseID, err)
	}
	s.record(ctx, store.ActivityEventData{ResponseID: responseID, Kind: kind})
	s.log.Info("repeatable changed", "response_id", responseID, "repeatable", repeatable)
	return s.Tiles(ctx)
}

// FlagLatest asks for review of the newest answer to a story.
func (s *Service) FlagLatest(ctx context.Context, narrativeID api.NarrativeID) error {
	if err := s.backend.FlagLatest(ctx, s.userID, narrativeID); err != nil {
		return fmt.Errorf("flag story %s: %w", narrativeID, err)
	}
	s.record(ctx, store.ActivityEventData{NarrativeID: string(narrativeID), Kind: store.ActivityFlag})
	return nil
}

// VerifyPassword checks the child account's password.
func (s *Service) VerifyPassword(ctx context.Context, password string) error {
	ok, err := s.backend.VerifyPassword(ctx, s.userID, password)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}
	return nil
}

func (s *Service) record(ctx context.Context, data store.ActivityEventData) {
	if s.journal == nil {
		return
	}
	data.UserID = s.userID
	if err := s.journal.Append(ctx, data); err != nil {
		s.log.Warn("journal append failed", "kind", data.Kind, "error", err)
	}
}
