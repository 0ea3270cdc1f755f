// Package protocol defines the frames exchanged over the game socket and the
// codecs that put them on the wire.
package protocol

import "errors"

// Encoding names accepted in the ?encoding= query parameter
const (
	EncodingJSON    = "json"
	EncodingMsgPack = "msgpack"
)

// Client to server message types
const (
	MsgMove = "move"
)

var (
	ErrEmptyFrame       = errors.New("protocol: empty frame")
	ErrEmptyPayload     = errors.New("protocol: empty payload")
	ErrUnknownType      = errors.New("protocol: unknown message type")
	ErrUnknownEncoding  = errors.New("protocol: unknown encoding")
	ErrMissingEventType = errors.New("protocol: missing event type")
)

// Envelope wraps every server to client frame
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Move is the payload of a "move" frame
type Move struct {
	Dir   string  `json:"dir"`
	Speed float64 `json:"speed"`
}

// Inbound is a decoded client frame
type Inbound struct {
	Type string
	Move Move
}

// Codec turns envelopes into frames and frames into inbound messages
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary websocket messages
	Binary() bool
	Encode(msgType string, payload any) ([]byte, error)
	Decode(frame []byte) (Inbound, error)
}

// ForName returns the codec registered under name. An empty name selects JSON.
func ForName(name string) (Codec, error) {
	switch name {
	case "", EncodingJSON:
		return JSON, nil
	case EncodingMsgPack:
		return MsgPack, nil
	}
	return nil, ErrUnknownEncoding
}
