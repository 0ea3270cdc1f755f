package game

import (
	"fmt"
	"math/rand/v2"
)

// Store is the single source of truth for players and collectibles. It is not
// safe for concurrent use; World owns it and serializes every call.
type Store struct {
	tuning       Tuning
	rng          *rand.Rand
	players      map[string]*Player
	collectibles []Collectible
}

// NewStore creates an empty store. Collectibles are not generated until
// RegenerateCollectibles is called.
func NewStore(tuning Tuning, rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Store{
		tuning:  tuning,
		rng:     rng,
		players: make(map[string]*Player),
	}
}

// AddPlayer places a new player at the spawn point with a zero score.
// An existing record with the same id is replaced.
func (s *Store) AddPlayer(id string) Player {
	p := &Player{
		ID: id,
		X:  s.tuning.SpawnX,
		Y:  s.tuning.SpawnY,
	}
	s.players[id] = p
	return *p
}

// RemovePlayer deletes the player and reports whether it existed
func (s *Store) RemovePlayer(id string) bool {
	if _, ok := s.players[id]; !ok {
		return false
	}
	delete(s.players, id)
	return true
}

// MovePlayer shifts the player by speed along direction. Unknown players and
// directions are ignored. Positions are not clamped.
func (s *Store) MovePlayer(id string, dir Direction, speed float64) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	switch dir {
	case DirUp:
		p.Y -= speed
	case DirDown:
		p.Y += speed
	case DirLeft:
		p.X -= speed
	case DirRight:
		p.X += speed
	default:
		return false
	}
	return true
}

// RegenerateCollectibles replaces the whole sequence with a fresh batch
func (s *Store) RegenerateCollectibles() {
	t := s.tuning
	batch := make([]Collectible, t.ItemBatchSize)
	for i := range batch {
		batch[i] = Collectible{
			ID:    fmt.Sprintf("item-%d", i),
			X:     s.rng.Float64() * t.FieldWidth,
			Y:     s.rng.Float64() * t.FieldHeight,
			Value: s.rng.IntN(t.MaxItemValue-t.MinItemValue+1) + t.MinItemValue,
		}
	}
	s.collectibles = batch
}

// Player returns a copy of the player record
func (s *Store) Player(id string) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// NumPlayers returns the number of player records
func (s *Store) NumPlayers() int {
	return len(s.players)
}

// Players returns a copy of every player keyed by id
func (s *Store) Players() map[string]Player {
	out := make(map[string]Player, len(s.players))
	for id, p := range s.players {
		out[id] = *p
	}
	return out
}

// Collectibles returns a copy of the collectible sequence
func (s *Store) Collectibles() []Collectible {
	out := make([]Collectible, len(s.collectibles))
	copy(out, s.collectibles)
	return out
}

// Snapshot returns the full state, detached from the store
func (s *Store) Snapshot() State {
	return State{
		Players:      s.Players(),
		Collectibles: s.Collectibles(),
	}
}

