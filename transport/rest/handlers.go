package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type uMatches interface {
	CreateMatch(ctx context.Context) (*gomoku.GameState, error)
	Snapshot(ctx context.Context, code string) (*gomoku.GameState, error)
	PlaceStone(ctx context.Context, code string, row, col int) (*gomoku.GameState, error)
	UndoLastMove(ctx context.Context, code string) (*gomoku.GameState, error)
	Resign(ctx context.Context, code, playerTag string) (*gomoku.GameState, error)
	CheckTimeout(ctx context.Context, code string) (*gomoku.GameState, bool, error)
	PushSnapshot(ctx context.Context, raw []byte) (*gomoku.GameState, error)
}

type handler struct {
	logger  *slog.Logger
	matches uMatches
}

func newHandler(logger *slog.Logger, matches uMatches) *handler {
	return &handler{
		logger:  logger.With("component", "rest"),
		matches: matches,
	}
}

type moveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type resignRequest struct {
	Player string `json:"player"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handler) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	state, err := that.matches.CreateMatch(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeState(w, http.StatusCreated, state)
}

func (that *handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	state, err := that.matches.Snapshot(r.Context(), code)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeState(w, http.StatusOK, state)
}

func (that *handler) handlePushSnapshot(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		that.writeError(w, apperror.ErrMalformedSnapshot)
		return
	}
	defer r.Body.Close()

	state, err := that.matches.PushSnapshot(r.Context(), raw)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeState(w, http.StatusOK, state)
}

func (that *handler) handlePlaceStone(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	state, err := that.matches.PlaceStone(r.Context(), code, req.Row, req.Col)
	if err != nil && !errors.Is(err, apperror.ErrClockExpired) {
		that.writeError(w, err)
		return
	}

	// An expired clock still produces a state: the match was forfeited.
	that.writeState(w, http.StatusOK, state)
}

func (that *handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	state, err := that.matches.UndoLastMove(r.Context(), code)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeState(w, http.StatusOK, state)
}

func (that *handler) handleResign(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req resignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	state, err := that.matches.Resign(r.Context(), code, req.Player)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeState(w, http.StatusOK, state)
}

func (that *handler) handleCheckTimeout(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	state, _, err := that.matches.CheckTimeout(r.Context(), code)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeState(w, http.StatusOK, state)
}

func (that *handler) writeState(w http.ResponseWriter, status int, state *gomoku.GameState) {
	that.writeJSON(w, status, state)
}

func (that *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrMatchNotFound), errors.Is(err, apperror.ErrSnapshotNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrMalformedSnapshot), errors.Is(err, apperror.ErrInvalidPlayer):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrOutOfBounds),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotAdjacent),
		errors.Is(err, apperror.ErrGameFinished):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
