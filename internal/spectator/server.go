package spectator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
)

// Server streams a game to read-only websocket clients. It implements
// display.Display: every notification is broadcast as it happens, and new
// clients first receive a snapshot of the board. Events that follow a
// snapshot may repeat changes it already contains; every event carries
// absolute values so applying it twice is harmless.
type Server struct {
	addr        string
	board       *display.Board
	rules       cards.Rules
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	mu          sync.RWMutex
	gameID      string
}

// NewServer creates a spectator server that snapshots board for new clients.
func NewServer(addr string, board *display.Board, rules cards.Rules, logger *log.Logger) *Server {
	return &Server{
		addr:  addr,
		board: board,
		rules: rules,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Spectating is read-only
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("spectator"),
	}
}

// SetGameID tags every following message with id.
func (s *Server) SetGameID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameID = id
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until ctx is done, then closes every connection.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting spectator server", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("spectator server: %w", err)
	case <-ctx.Done():
	}

	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes all connections
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
		delete(s.connections, conn)
	}
}

// ConnectionCount returns the number of connected spectators.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger)
	if err := s.register(client); err != nil {
		s.logger.Error("Failed to send snapshot", "error", err)
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

// register queues the snapshot and adds client under one lock, so no
// broadcast can slip in before the snapshot.
func (s *Server) register(client *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := NewMessage(MessageTypeSnapshot, SnapshotData{State: s.board.Snapshot()})
	if err != nil {
		return err
	}
	msg.GameID = s.gameID
	if err := client.SendMessage(msg); err != nil {
		return err
	}

	s.connections[client] = true
	s.logger.Info("Spectator connected", "total", len(s.connections))
	return nil
}

func (s *Server) unregister(client *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[client]; ok {
		delete(s.connections, client)
		s.logger.Info("Spectator disconnected", "total", len(s.connections))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// Broadcast sends msg to every spectator without blocking.
func (s *Server) Broadcast(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		s.logger.Error("Failed to encode message", "type", messageType, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	msg.GameID = s.gameID
	for conn := range s.connections {
		_ = conn.SendMessage(msg)
	}
}

func (s *Server) PlaceCard(card cards.Card, slot int) {
	s.Broadcast(MessageTypeCardPlaced, CardData{Slot: slot, Card: card, Name: s.rules.Describe(card)})
}

func (s *Server) RemoveCard(slot int) {
	s.Broadcast(MessageTypeCardRemoved, CardData{Slot: slot, Card: cards.None})
}

func (s *Server) PlaceToken(player, slot int) {
	s.Broadcast(MessageTypeTokenPlaced, TokenData{Player: player, Slot: slot})
}

func (s *Server) RemoveToken(player, slot int) {
	s.Broadcast(MessageTypeTokenRemoved, TokenData{Player: player, Slot: slot})
}

func (s *Server) SetScore(player, score int) {
	s.Broadcast(MessageTypeScore, ScoreData{Player: player, Score: score})
}

func (s *Server) SetFreeze(player int, remaining time.Duration) {
	data := FreezeData{Player: player}
	if remaining != display.NotFrozen {
		data.Frozen = true
		data.RemainingMS = remaining.Milliseconds()
	}
	s.Broadcast(MessageTypeFreeze, data)
}

func (s *Server) SetCountdown(remaining time.Duration, warn bool) {
	s.Broadcast(MessageTypeCountdown, CountdownData{RemainingMS: remaining.Milliseconds(), Warn: warn})
}

func (s *Server) AnnounceWinners(players []int) {
	s.Broadcast(MessageTypeWinners, WinnersData{Players: players})
}
