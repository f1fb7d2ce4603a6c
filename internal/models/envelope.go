package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire form of every message exchanged over NATS
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var ErrMissingType = errors.New("envelope has no type")

func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.MessageType(), err)
	}
	return json.Marshal(Envelope{Type: msg.MessageType(), Payload: payload})
}

// Decode parses an envelope. Types other than the snapshot request and
// response come back as *UnknownMessage rather than an error.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	var msg Message
	switch env.Type {
	case TypeRiskTableSnapshotRequest:
		msg = &RiskTableSnapshotRequest{}
	case TypeRiskTableSnapshotResponse:
		msg = &RiskTableSnapshotResponse{}
	default:
		return &UnknownMessage{Type: env.Type, Data: env.Payload}, nil
	}

	if err := json.Unmarshal(env.Payload, msg); err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", env.Type, err)
	}
	return msg, nil
}
