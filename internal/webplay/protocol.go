package webplay

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tomz197/shooter/internal/engine"
)

// Message types carried in an Envelope.
const (
	MsgCommand = "cmd"     // Client to server
	MsgWelcome = "welcome" // Server to client, once
	MsgFrame   = "frame"   // Server to client, every tick
)

// TickHz is the simulation and frame rate of a web session.
const TickHz = 60

// Envelope wraps every message on the socket.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // Raw payload bytes
}

// Welcome describes the playfield so the client can size its canvas.
type Welcome struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	TickHz    int     `json:"tickHz"`
	HighScore int     `json:"highScore"`
}

// FrameMessage is a render frame plus the events of the tick that made it.
type FrameMessage struct {
	engine.Frame
	Events []engine.EventKind `json:"events,omitempty"`
}

// Encode wraps payload in an envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("encode envelope: empty type")
	}
	if payload == nil {
		return nil, errors.New("encode envelope: nil payload")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s payload", t)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope reads the outer message.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("decode envelope: empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, errors.Wrap(err, "decode envelope")
	}
	return e, nil
}

// DecodePayload reads the payload of env as a T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, errors.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, errors.Wrapf(err, "decode %s payload", env.T)
	}
	return out, nil
}
