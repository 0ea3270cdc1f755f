package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/config"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/game"
	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // Must be less than pongWait
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow connections from any origin
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server handles HTTP and WebSocket connections
type Server struct {
	world  *game.World
	cfg    *config.Config
	logger *slog.Logger
}

// NewServer creates a new server instance
func NewServer(world *game.World, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		world:  world,
		cfg:    cfg,
		logger: logger,
	}
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleWebSocket upgrades the connection and joins the client to the world
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	codec, err := protocol.ForName(r.URL.Query().Get("encoding"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := game.NewClient(codec, s.cfg.SendBuffer)
	if _, err := s.world.Join(client); err != nil {
		s.logger.Warn("join rejected", "error", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
		conn.Close()
		return
	}

	go s.handleClientWrites(conn, client)
	go s.handleClientReads(conn, client)
}

// handleClientReads reads messages from the client
func (s *Server) handleClientReads(conn *websocket.Conn, client *game.Client) {
	defer func() {
		conn.Close()
		if err := s.world.Leave(client.ID); err != nil && !errors.Is(err, game.ErrStopped) {
			s.logger.Warn("leave failed", "player_id", client.ID, "error", err)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "player_id", client.ID, "error", err)
			}
			return
		}

		in, err := client.Codec.Decode(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", "player_id", client.ID, "error", err)
			continue
		}

		err = s.world.Move(client.ID, game.Direction(in.Move.Dir), in.Move.Speed)
		switch {
		case err == nil:
		case errors.Is(err, game.ErrStopped):
			return
		default:
			s.logger.Debug("move rejected", "player_id", client.ID, "error", err)
		}
	}
}

// handleClientWrites sends messages to the client
func (s *Server) handleClientWrites(conn *websocket.Conn, client *game.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	messageType := websocket.TextMessage
	if client.Codec.Binary() {
		messageType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(messageType, message); err != nil {
				s.logger.Debug("websocket write error", "player_id", client.ID, "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
