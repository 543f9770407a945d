package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeMessageCreated EventType = "message.created"
	EventTypeNpcThinking    EventType = "npc.thinking"
	EventTypeNpcCompleted   EventType = "npc.completed"
	EventTypeNpcFailed      EventType = "npc.failed"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	RoomID    string                 `json:"room_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// ChannelForRoom returns the pub/sub channel carrying a room's events.
func ChannelForRoom(roomID string) string {
	return fmt.Sprintf("room-events:%s", roomID)
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishMessageCreated publishes a message.created event
func (b *Broadcaster) PublishMessageCreated(ctx context.Context, roomID string, messageID string, authorName string) error {
	event := Event{
		Type:   EventTypeMessageCreated,
		RoomID: roomID,
		Data: map[string]interface{}{
			"message_id":  messageID,
			"author_name": authorName,
		},
	}
	return b.publishToRoom(ctx, roomID, event)
}

// PublishNpcThinking publishes an npc.thinking event
func (b *Broadcaster) PublishNpcThinking(ctx context.Context, roomID string, requestID string, npcName string) error {
	event := Event{
		Type:      EventTypeNpcThinking,
		RequestID: requestID,
		RoomID:    roomID,
		Data: map[string]interface{}{
			"status":   "thinking",
			"npc_name": npcName,
		},
	}
	return b.publishToRoom(ctx, roomID, event)
}

// PublishNpcCompleted publishes an npc.completed event
func (b *Broadcaster) PublishNpcCompleted(ctx context.Context, roomID string, requestID string, npcName string, messageID string) error {
	event := Event{
		Type:      EventTypeNpcCompleted,
		RequestID: requestID,
		RoomID:    roomID,
		Data: map[string]interface{}{
			"status":     "completed",
			"npc_name":   npcName,
			"message_id": messageID,
		},
	}
	return b.publishToRoom(ctx, roomID, event)
}

// PublishNpcFailed publishes an npc.failed event
func (b *Broadcaster) PublishNpcFailed(ctx context.Context, roomID string, requestID string, errorMsg string) error {
	event := Event{
		Type:      EventTypeNpcFailed,
		RequestID: requestID,
		RoomID:    roomID,
		Data: map[string]interface{}{
			"status": "failed",
			"error":  errorMsg,
		},
	}
	return b.publishToRoom(ctx, roomID, event)
}

// publishToRoom publishes an event to the room-specific channel
func (b *Broadcaster) publishToRoom(ctx context.Context, roomID string, event Event) error {
	channel := ChannelForRoom(roomID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)

	return nil
}
