package game

import (
	"errors"
	"time"

	"github.com/Sylenia/secure-real-time-multiplayer-game/internal/protocol"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidSpeed     = errors.New("invalid speed")
)

// Direction of a single movement step
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Valid reports whether d is one of the four known directions
func (d Direction) Valid() bool {
	switch d {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	}
	return false
}

// Player represents a connected player
type Player struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
}

// Collectible represents a scoring item on the field
type Collectible struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"`
}

// State is the full game state sent with init and stateUpdate
type State struct {
	Players      map[string]Player `json:"players"`
	Collectibles []Collectible     `json:"collectibles"`
}

// Client represents a connected game session. The transport drains Send;
// World closes it when the session leaves.
type Client struct {
	ID       string
	Codec    protocol.Codec
	Send     chan []byte
	JoinedAt time.Time
}

// NewClient creates a new client speaking the given codec. The ID is
// assigned by World on join.
func NewClient(codec protocol.Codec, bufferSize int) *Client {
	if codec == nil {
		codec = protocol.JSON
	}
	if bufferSize <= 0 {
		bufferSize = SendBufferSize
	}
	return &Client{
		Codec:    codec,
		Send:     make(chan []byte, bufferSize),
		JoinedAt: time.Now(),
	}
}
