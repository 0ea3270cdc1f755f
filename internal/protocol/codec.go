package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return EncodingJSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(msgType string, payload any) ([]byte, error) {
	if msgType == "" {
		return nil, ErrMissingEventType
	}
	return json.Marshal(Envelope{Type: msgType, Data: payload})
}

func (jsonCodec) Decode(frame []byte) (Inbound, error) {
	if len(frame) == 0 {
		return Inbound{}, ErrEmptyFrame
	}
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return Inbound{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != MsgMove {
		return Inbound{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if len(env.Data) == 0 {
		return Inbound{}, ErrEmptyPayload
	}
	var move Move
	if err := json.Unmarshal(env.Data, &move); err != nil {
		return Inbound{}, fmt.Errorf("decode move: %w", err)
	}
	return Inbound{Type: env.Type, Move: move}, nil
}

// msgpackCodec reuses the json struct tags so both encodings share field names
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return EncodingMsgPack }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(msgType string, payload any) ([]byte, error) {
	if msgType == "" {
		return nil, ErrMissingEventType
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Envelope{Type: msgType, Data: payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Decode(frame []byte) (Inbound, error) {
	if len(frame) == 0 {
		return Inbound{}, ErrEmptyFrame
	}
	var env struct {
		Type string             `json:"type"`
		Data msgpack.RawMessage `json:"data"`
	}
	if err := unmarshalMsgpack(frame, &env); err != nil {
		return Inbound{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != MsgMove {
		return Inbound{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if len(env.Data) == 0 {
		return Inbound{}, ErrEmptyPayload
	}
	var move Move
	if err := unmarshalMsgpack(env.Data, &move); err != nil {
		return Inbound{}, fmt.Errorf("decode move: %w", err)
	}
	return Inbound{Type: env.Type, Move: move}, nil
}

func unmarshalMsgpack(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
