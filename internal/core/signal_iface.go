package core

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Frame is a raw encoded event, ready to be written to the wire.
type Frame []byte

// ConnID identifies one transport connection for the lifetime of the process.
type ConnID string

func NewConnID() ConnID { return ConnID(uuid.NewString()) }

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Envelope is the wire shape of every event in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent wraps data into an Envelope. A nil data encodes without a body.
func EncodeEvent(event string, data any) (Frame, error) {
	env := Envelope{Type: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
