// Package queue defines the wire format for NPC invocation requests
// handed from the API to the responder workers.
package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// RequestType identifies the type of request in the queue.
type RequestType string

const (
	// RequestTypeInvocation is a chat message addressed to a named NPC.
	RequestTypeInvocation RequestType = "npc_invocation"
)

// Request is one queued NPC invocation. Sender identity travels with
// the request; workers never consult any ambient "current user" state.
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	RoomID    string      `json:"room_id"`

	Target    string `json:"target"`
	Utterance string `json:"utterance"`

	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

func (r *Request) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if r.Type != RequestTypeInvocation {
		return fmt.Errorf("unknown request type: %q", r.Type)
	}
	if r.RoomID == "" {
		return fmt.Errorf("room_id is required")
	}
	if r.Target == "" {
		return fmt.Errorf("target is required")
	}
	return nil
}

// ToJSON converts the request to JSON bytes for Redis.
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes.
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue request: %w", err)
	}
	return &req, nil
}
