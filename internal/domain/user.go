// Package domain contains entity without logic, just meta-data
package domain

import "encoding/json"

const (
	MaxUserIDLen    = 128
	MaxPublicKeyLen = 16 << 10
)

type UserID string

// Participant is what other room members are allowed to see about a connected client.
// The public key is opaque and is never inspected here.
type Participant struct {
	ID        UserID          `json:"id"`
	PublicKey json.RawMessage `json:"publicKey,omitempty"`
}

// NewParticipant validates the identity a client announced on join.
func NewParticipant(id string, publicKey json.RawMessage) (Participant, error) {
	if id == "" {
		return Participant{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Participant{}, ErrUserIDTooLong
	}
	if len(publicKey) > MaxPublicKeyLen {
		return Participant{}, ErrPublicKeyTooLarge
	}
	if isJSONNull(publicKey) {
		publicKey = nil
	}
	return Participant{ID: UserID(id), PublicKey: publicKey}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
