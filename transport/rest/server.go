package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the REST routes for polling clients: party creation plus
// snapshot push/pull.
func NewRouter(logger *slog.Logger, matches uMatches) http.Handler {
	handler := newHandler(logger, matches)

	router := chi.NewRouter()
	router.Get("/ping", handlePing)
	router.Post("/party", handler.handleCreateParty)
	router.Get("/party/{code}/snapshot", handler.handleGetSnapshot)
	router.Post("/party/{code}/snapshot", handler.handlePushSnapshot)
	router.Post("/party/{code}/move", handler.handlePlaceStone)
	router.Post("/party/{code}/undo", handler.handleUndo)
	router.Post("/party/{code}/resign", handler.handleResign)
	router.Post("/party/{code}/timeout", handler.handleCheckTimeout)

	return router
}

// Start - runs the REST server.
func Start(logger *slog.Logger, port string, matches uMatches) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(logger, matches),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
