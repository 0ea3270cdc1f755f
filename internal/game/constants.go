package game

import "github.com/Sylenia/secure-real-time-multiplayer-game/internal/protocol"

// Default game tuning
const (
	PlayerSize      = 20.0 // Player footprint (square) used for collisions
	CollectibleSize = 10.0 // Collectible footprint (square)
	SpawnX          = 250.0
	SpawnY          = 250.0
	FieldWidth      = 500.0 // Collectibles spawn in [0, FieldWidth)
	FieldHeight     = 500.0
	MinItemValue    = 1
	MaxItemValue    = 10
	ItemBatchSize   = 5 // Collectibles created per regeneration
)

// Connection constants
const (
	SendBufferSize = 256 // Buffered outbound frames per client
)

// Message types for client-server communication
const (
	MsgTypeInit               = "init"
	MsgTypePlayerConnected    = "playerConnected"
	MsgTypePlayerDisconnected = "playerDisconnected"
	MsgTypeMove               = protocol.MsgMove
	MsgTypeStateUpdate        = "stateUpdate"
)
