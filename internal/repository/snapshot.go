package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// SnapshotRepository stores the latest snapshot of every party, keyed by
// party code. It is the hand-off point between two devices playing the same
// turn-based match: each side pushes its snapshot after moving and the other
// side pulls it.
type SnapshotRepository interface {
	Save(ctx context.Context, state *gomoku.GameState) error
	GetByPartyCode(ctx context.Context, code string) (*gomoku.GameState, error)
	DeleteByPartyCode(ctx context.Context, code string) error
}

var ErrMissingPartyCode = errors.New("snapshot has no party code")

type dbSnapshot struct {
	client *redis.Client
}

func NewSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &dbSnapshot{
		client: client,
	}
}

func (that *dbSnapshot) Save(ctx context.Context, state *gomoku.GameState) error {
	if state.PartyCode == "" {
		return ErrMissingPartyCode
	}

	data, err := gomoku.EncodeGameState(state)
	if err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}

	if err = that.client.Set(ctx, partyKey(state.PartyCode), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) GetByPartyCode(ctx context.Context, code string) (*gomoku.GameState, error) {
	response, err := that.client.Get(ctx, partyKey(code)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: party %s", apperror.ErrSnapshotNotFound, code)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot by party code: %w", err)
	}

	state, err := gomoku.DecodeGameState([]byte(response))
	if err != nil {
		return nil, fmt.Errorf("could not decode stored snapshot: %w", err)
	}

	return state, nil
}

func (that *dbSnapshot) DeleteByPartyCode(ctx context.Context, code string) error {
	if err := that.client.Del(ctx, partyKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot by party code: %w", err)
	}

	return nil
}

func partyKey(code string) string {
	return "party:" + code
}
