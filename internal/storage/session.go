package storage

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session binds a dashboard client to the order API token it logged in with.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	User      json.RawMessage `json:"user,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
