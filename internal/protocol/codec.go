package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownCodec   = errors.New("unknown codec")
)

// Codec frames commands for the transport. Framing is a {type, payload}
// envelope; the payload is the command struct.
type Codec interface {
	Encode(cmd Command) ([]byte, error)
	Decode(data []byte) (Command, error)
	// Binary reports whether frames must be sent as binary messages.
	Binary() bool
}

// NewCodec returns the codec registered under name ("json" or "msgpack").
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// newCommand allocates an empty command for a wire name.
func newCommand(name string) (Command, error) {
	ctor, ok := commandTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return ctor(), nil
}

// value strips the pointer the decoders need so callers can type switch on
// plain command values.
func value(cmd Command) Command {
	return reflect.ValueOf(cmd).Elem().Interface().(Command)
}

type jsonEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JSONCodec struct{}

func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.CommandName(), err)
	}
	return json.Marshal(jsonEnvelope{Type: cmd.CommandName(), Payload: payload})
}

func (JSONCodec) Decode(data []byte) (Command, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	cmd, err := newCommand(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
	}
	return value(cmd), nil
}

type msgpackEnvelope struct {
	Type    string             `json:"type"`
	Payload msgpack.RawMessage `json:"payload"`
}

// MsgpackCodec reuses the json struct tags so both codecs share field names.
type MsgpackCodec struct{}

func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) unmarshal(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (c MsgpackCodec) Encode(cmd Command) ([]byte, error) {
	payload, err := c.marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.CommandName(), err)
	}
	return c.marshal(msgpackEnvelope{Type: cmd.CommandName(), Payload: payload})
}

func (c MsgpackCodec) Decode(data []byte) (Command, error) {
	var env msgpackEnvelope
	if err := c.unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	cmd, err := newCommand(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Payload) > 0 {
		if err := c.unmarshal(env.Payload, cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
	}
	return value(cmd), nil
}
