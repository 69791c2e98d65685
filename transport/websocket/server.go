package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type uMatches interface {
	Snapshot(ctx context.Context, code string) (*gomoku.GameState, error)
	PushSnapshot(ctx context.Context, raw []byte) (*gomoku.GameState, error)
}

// client is one device's connection. The underlying connection supports at
// most one concurrent writer, and both the device's own read loop and peer
// relays write to it, so every outgoing message goes through the write lock.
type client struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (that *client) write(message Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	return that.conn.WriteJSON(message)
}

// Server relays snapshot blobs between the two devices of a party. Each
// connection joins the room named by its party code; a pushed snapshot is
// applied, persisted, and forwarded to every other connection in the room.
type Server struct {
	logger  *slog.Logger
	matches uMatches

	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]map[*client]struct{}

	handlers map[string]func(ctx context.Context, party string, device *client, message *Message) error
}

func New(logger *slog.Logger, matches uMatches) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		matches: matches,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		rooms: make(map[string]map[*client]struct{}),

		handlers: make(map[string]func(context.Context, string, *client, *Message) error),
	}

	server.handlers["snapshot:push"] = server.handleSnapshotPush
	server.handlers["snapshot:pull"] = server.handleSnapshotPull

	return server
}

// Handler returns the HTTP handler that upgrades connections on /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	return mux
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	party := r.URL.Query().Get("party")
	if party == "" {
		http.Error(w, "missing party code", http.StatusBadRequest)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	device := &client{conn: conn}

	that.join(party, device)
	defer that.leave(party, device)
	defer conn.Close()

	log.Info("connection joined party", "party", party)

	that.readMessages(ctx, party, device)
}

func (that *Server) readMessages(ctx context.Context, party string, device *client) {
	log := that.logger.With("method", "readMessages", "party", party)

	for {
		_, data, err := device.conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			that.sendError(device, "invalid message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(device, "unknown action: "+message.Action)
			continue
		}

		if err = handler(ctx, party, device, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			that.sendError(device, err.Error())
		}
	}
}

func (that *Server) join(party string, device *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[party]
	if !ok {
		room = make(map[*client]struct{})
		that.rooms[party] = room
	}
	room[device] = struct{}{}
}

func (that *Server) leave(party string, device *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[party]; ok {
		delete(room, device)
		if len(room) == 0 {
			delete(that.rooms, party)
		}
	}
}

// peers returns every other connection in the party's room.
func (that *Server) peers(party string, sender *client) []*client {
	that.mu.Lock()
	defer that.mu.Unlock()

	var peers []*client
	for device := range that.rooms[party] {
		if device != sender {
			peers = append(peers, device)
		}
	}
	return peers
}
