package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/events"
)

// ErrStopped is returned when a command is sent to a world that is no longer running
var ErrStopped = errors.New("game world stopped")

// World owns the game state and the set of connected clients. All state
// changes happen on the goroutine running Run, one command at a time.
type World struct {
	tuning    Tuning
	store     *Store
	clients   map[string]*Client
	inbox     chan any
	done      chan struct{}
	logger    *slog.Logger
	publisher events.Publisher
	newID     func() string
	rng       *rand.Rand
	running   atomic.Bool
	stats     worldStats
}

type joinCmd struct {
	client *Client
	reply  chan Player
}

type leaveCmd struct {
	id string
}

type moveCmd struct {
	id    string
	dir   Direction
	speed float64
}

type queryCmd struct {
	fn   func(*Store)
	done chan struct{}
}

// Option configures a World
type Option func(*World)

// WithPublisher sends lifecycle and collection events to p
func WithPublisher(p events.Publisher) Option {
	return func(w *World) { w.publisher = p }
}

// WithRand sets the random source used for collectible generation
func WithRand(rng *rand.Rand) Option {
	return func(w *World) { w.rng = rng }
}

// WithIDGenerator overrides how session ids are assigned
func WithIDGenerator(fn func() string) Option {
	return func(w *World) { w.newID = fn }
}

// NewWorld creates a new game world with a first batch of collectibles
func NewWorld(tuning Tuning, logger *slog.Logger, opts ...Option) *World {
	if logger == nil {
		logger = slog.Default()
	}
	w := &World{
		tuning:    tuning,
		clients:   make(map[string]*Client),
		inbox:     make(chan any, 256),
		done:      make(chan struct{}),
		logger:    logger,
		publisher: events.Nop{},
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.store = NewStore(tuning, w.rng)
	w.store.RegenerateCollectibles()
	return w
}

// Run processes commands until ctx is cancelled. Remaining clients have
// their send channels closed on the way out.
func (w *World) Run(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	defer close(w.done)

	w.logger.Info("game world started",
		"collectibles", len(w.store.collectibles),
		"batch_size", w.tuning.ItemBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case cmd := <-w.inbox:
			w.handleCommand(ctx, cmd)
		}
	}
}

func (w *World) shutdown() {
	for id, client := range w.clients {
		close(client.Send)
		delete(w.clients, id)
	}
	w.logger.Info("game world stopped")
}

// Join registers a new client, assigns its id and returns its player record
func (w *World) Join(client *Client) (Player, error) {
	reply := make(chan Player, 1)
	if err := w.enqueue(joinCmd{client: client, reply: reply}); err != nil {
		return Player{}, err
	}
	select {
	case p := <-reply:
		return p, nil
	case <-w.done:
		return Player{}, ErrStopped
	}
}

// Leave removes the client and its player
func (w *World) Leave(id string) error {
	return w.enqueue(leaveCmd{id: id})
}

// Move requests a movement step for the player. Invalid directions and
// speeds are rejected before reaching the game loop.
func (w *World) Move(id string, dir Direction, speed float64) error {
	if !dir.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	if w.tuning.MaxSpeed > 0 && speed > w.tuning.MaxSpeed {
		return fmt.Errorf("%w: %v exceeds %v", ErrInvalidSpeed, speed, w.tuning.MaxSpeed)
	}
	return w.enqueue(moveCmd{id: id, dir: dir, speed: speed})
}

// Snapshot returns a copy of the full game state
func (w *World) Snapshot() (State, error) {
	var st State
	err := w.query(func(s *Store) { st = s.Snapshot() })
	return st, err
}

// Leaderboard returns the players ranked by score
func (w *World) Leaderboard() ([]Standing, error) {
	var out []Standing
	err := w.query(func(s *Store) { out = Leaderboard(s.Players()) })
	return out, err
}

func (w *World) enqueue(cmd any) error {
	select {
	case <-w.done:
		return ErrStopped
	default:
	}
	select {
	case w.inbox <- cmd:
		return nil
	case <-w.done:
		return ErrStopped
	}
}

// query runs fn on the game loop and waits for it to finish
func (w *World) query(fn func(*Store)) error {
	done := make(chan struct{})
	if err := w.enqueue(queryCmd{fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-w.done:
		return ErrStopped
	}
}

func (w *World) handleCommand(ctx context.Context, cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- w.handleJoin(ctx, c.client)
	case leaveCmd:
		w.handleLeave(ctx, c.id)
	case moveCmd:
		w.handleMove(ctx, c)
	case queryCmd:
		c.fn(w.store)
		close(c.done)
	default:
		w.logger.Warn("unknown world command", "type", fmt.Sprintf("%T", cmd))
	}
}

func (w *World) handleJoin(ctx context.Context, client *Client) Player {
	client.ID = w.newID()
	player := w.store.AddPlayer(client.ID)
	w.clients[client.ID] = client
	w.stats.players.Store(int64(len(w.clients)))

	w.sendState(client, MsgTypeInit)
	w.broadcastExcept(client.ID, MsgTypePlayerConnected, player)

	w.publish(ctx, events.Event{Type: events.TypePlayerConnected, PlayerID: player.ID})
	w.logger.Info("player connected", "player_id", player.ID, "players", len(w.clients))
	return player
}

func (w *World) handleLeave(ctx context.Context, id string) {
	existed := w.store.RemovePlayer(id)
	if client, ok := w.clients[id]; ok {
		delete(w.clients, id)
		close(client.Send)
	}
	w.stats.players.Store(int64(len(w.clients)))

	w.broadcast(MsgTypePlayerDisconnected, id)

	if existed {
		w.publish(ctx, events.Event{Type: events.TypePlayerDisconnected, PlayerID: id})
	}
	w.logger.Info("player disconnected", "player_id", id, "known", existed, "players", len(w.clients))
}

// handleMove runs one tick: move, collect, refill, broadcast
func (w *World) handleMove(ctx context.Context, c moveCmd) {
	if !w.store.MovePlayer(c.id, c.dir, c.speed) {
		return
	}

	collected := w.store.Collect(c.id)
	if len(collected) > 0 {
		player, _ := w.store.Player(c.id)
		for _, item := range collected {
			w.logger.Debug("collectible collected",
				"player_id", c.id,
				"collectible_id", item.ID,
				"value", item.Value,
				"score", player.Score)
			w.publish(ctx, events.Event{
				Type:          events.TypeCollectibleCollected,
				PlayerID:      c.id,
				CollectibleID: item.ID,
				Value:         item.Value,
				Score:         player.Score,
			})
		}
	}

	if w.store.EnsureCollectibles() {
		w.logger.Debug("collectibles regenerated", "count", w.tuning.ItemBatchSize)
	}

	w.broadcast(MsgTypeStateUpdate, w.store.Snapshot())
}

func (w *World) publish(ctx context.Context, ev events.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if err := w.publisher.Publish(ctx, ev); err != nil {
		w.logger.Warn("publish event failed", "type", ev.Type, "error", err)
	}
}
