package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type snapshotRepo interface {
	Save(ctx context.Context, state *gomoku.GameState) error
	GetByPartyCode(ctx context.Context, code string) (*gomoku.GameState, error)
	DeleteByPartyCode(ctx context.Context, code string) error
}

// MatchManager hosts the live engines, one per party code. The engine
// itself provides no synchronization, so every call into an engine happens
// under the manager's single lock, and the manager supplies every
// timestamp. After each successful mutation the fresh snapshot is persisted
// so the other device can pull it.
type MatchManager struct {
	logger *slog.Logger
	repo   snapshotRepo
	cfg    gomoku.Config

	now func() time.Time

	mu      sync.Mutex
	matches map[string]*gomoku.Engine
}

func NewMatchManager(logger *slog.Logger, repo snapshotRepo, cfg gomoku.Config) *MatchManager {
	return &MatchManager{
		logger: logger.With("component", "match_manager"),
		repo:   repo,
		cfg:    cfg,

		now: time.Now,

		matches: make(map[string]*gomoku.Engine),
	}
}

// CreateMatch starts a fresh match under a new party code and persists its
// initial snapshot.
func (that *MatchManager) CreateMatch(ctx context.Context) (*gomoku.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := gomoku.NewEngine(that.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	code := uuid.NewString()
	engine.SetPartyCode(code)
	that.matches[code] = engine

	state := engine.ToSnapshot()
	if err = that.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	that.logger.Info("match created", "party", code)

	return state, nil
}

// Snapshot returns the latest state of a party, from the live engine when
// loaded, otherwise from the repository.
func (that *MatchManager) Snapshot(ctx context.Context, code string) (*gomoku.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if engine, ok := that.matches[code]; ok {
		return engine.ToSnapshot(), nil
	}

	state, err := that.repo.GetByPartyCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperror.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("%w: party %s", apperror.ErrMatchNotFound, code)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return state, nil
}

// PlaceStone plays a move for the party's current player. When the mover's
// clock turns out to be spent the match is forfeited on the spot and
// ErrClockExpired is returned alongside the resulting state.
func (that *MatchManager) PlaceStone(ctx context.Context, code string, row, col int) (*gomoku.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.getOrLoadMatch(ctx, code)
	if err != nil {
		return nil, err
	}

	now := that.now()

	err = engine.PlaceStone(row, col, now)
	if errors.Is(err, apperror.ErrClockExpired) {
		if timeoutErr := engine.TimeoutCurrentPlayer(now); timeoutErr != nil {
			return nil, fmt.Errorf("failed to time out match: %w", timeoutErr)
		}

		if saveErr := that.persist(ctx, engine); saveErr != nil {
			return nil, saveErr
		}

		return engine.ToSnapshot(), apperror.ErrClockExpired
	}

	if err != nil {
		return nil, fmt.Errorf("failed to place stone: %w", err)
	}

	if err = that.persist(ctx, engine); err != nil {
		return nil, err
	}

	return engine.ToSnapshot(), nil
}

// UndoLastMove unwinds the most recent move of the party, if any.
func (that *MatchManager) UndoLastMove(ctx context.Context, code string) (*gomoku.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.getOrLoadMatch(ctx, code)
	if err != nil {
		return nil, err
	}

	if undone := engine.UndoLastMove(); undone == nil {
		return engine.ToSnapshot(), nil
	}

	if err = that.persist(ctx, engine); err != nil {
		return nil, err
	}

	return engine.ToSnapshot(), nil
}

// Resign forfeits the match for the given player tag.
func (that *MatchManager) Resign(ctx context.Context, code, playerTag string) (*gomoku.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.getOrLoadMatch(ctx, code)
	if err != nil {
		return nil, err
	}

	if err = engine.Resign(entity.Player(playerTag)); err != nil {
		return nil, fmt.Errorf("failed to resign: %w", err)
	}

	if err = that.persist(ctx, engine); err != nil {
		return nil, err
	}

	return engine.ToSnapshot(), nil
}

// CheckTimeout is the host-side clock tick: it verifies expiry and, only
// then, drives the engine's timeout path. It returns the current state and
// whether the match was forfeited by this call.
func (that *MatchManager) CheckTimeout(ctx context.Context, code string) (*gomoku.GameState, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	engine, err := that.getOrLoadMatch(ctx, code)
	if err != nil {
		return nil, false, err
	}

	now := that.now()
	if !engine.ClockExpired(now) {
		return engine.ToSnapshot(), false, nil
	}

	if err = engine.TimeoutCurrentPlayer(now); err != nil {
		return nil, false, fmt.Errorf("failed to time out match: %w", err)
	}

	if err = that.persist(ctx, engine); err != nil {
		return nil, false, err
	}

	that.logger.Info("match forfeited on time", "party", code, "winner", engine.Winner().Label())

	return engine.ToSnapshot(), true, nil
}

// PushSnapshot accepts the raw bytes of a peer's snapshot, applies it to
// the party's engine as the new ground truth, and persists it. A malformed
// snapshot is rejected without touching any state.
func (that *MatchManager) PushSnapshot(ctx context.Context, raw []byte) (*gomoku.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	state, err := gomoku.DecodeGameState(raw)
	if err != nil {
		return nil, err
	}

	if state.PartyCode == "" {
		return nil, fmt.Errorf("%w: missing party code", apperror.ErrMalformedSnapshot)
	}

	engine, ok := that.matches[state.PartyCode]
	if !ok {
		engine, err = gomoku.NewEngine(that.cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create engine: %w", err)
		}
	}

	if err = engine.ApplySnapshot(state); err != nil {
		return nil, err
	}

	that.matches[state.PartyCode] = engine

	if err = that.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return engine.ToSnapshot(), nil
}

// DeleteMatch drops the live engine and the stored snapshot of a party.
func (that *MatchManager) DeleteMatch(ctx context.Context, code string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.matches, code)

	if err := that.repo.DeleteByPartyCode(ctx, code); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

// getOrLoadMatch returns the live engine for a party, rehydrating it from
// the stored snapshot when the process does not have it in memory yet.
// Callers must hold the lock.
func (that *MatchManager) getOrLoadMatch(ctx context.Context, code string) (*gomoku.Engine, error) {
	if engine, ok := that.matches[code]; ok {
		return engine, nil
	}

	state, err := that.repo.GetByPartyCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperror.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("%w: party %s", apperror.ErrMatchNotFound, code)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	engine, err := gomoku.NewEngine(that.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if err = engine.ApplySnapshot(state); err != nil {
		return nil, fmt.Errorf("could not apply stored snapshot: %w", err)
	}

	that.matches[code] = engine

	return engine, nil
}

func (that *MatchManager) persist(ctx context.Context, engine *gomoku.Engine) error {
	if err := that.repo.Save(ctx, engine.ToSnapshot()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
