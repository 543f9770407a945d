package chat

import (
	"fmt"
	"sort"
	"time"
)

const (
	// SystemAuthorID is the authorId used for hub-generated messages
	// (failure notices, join announcements, and so on).
	SystemAuthorID = "system"

	// SystemAuthorName is the display name shown for system messages.
	SystemAuthorName = "HoloNet"
)

// Message is a single entry in a room's conversation log.
// Messages are append-only: the hub never mutates or reorders them
// after creation. ID and CreatedAt are assigned by the store on append.
type Message struct {
	ID             string    `json:"id,omitempty"`
	Text           string    `json:"text"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	AuthorPhotoURL string    `json:"authorPhotoURL,omitempty"`
	IsNpc          bool      `json:"isNpc,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// NpcAuthorID synthesizes the authorId for an NPC-authored message
// from its directory record ID. There is no persisted foreign key from
// message to directory record beyond this convention.
func NpcAuthorID(recordID string) string {
	return "npc-" + recordID
}

// NewUserMessage builds an unappended message authored by a user.
func NewUserMessage(text, authorID, authorName, photoURL string) Message {
	return Message{
		Text:           text,
		AuthorID:       authorID,
		AuthorName:     authorName,
		AuthorPhotoURL: photoURL,
	}
}

// NewSystemMessage builds an unappended hub-authored message.
func NewSystemMessage(text string) Message {
	return Message{
		Text:       text,
		AuthorID:   SystemAuthorID,
		AuthorName: SystemAuthorName,
	}
}

// NewNpcMessage builds an unappended NPC-authored message. The display
// name is denormalized at posting time and does not update if the NPC
// is later renamed.
func NewNpcMessage(recordID, name, text string) Message {
	return Message{
		Text:       text,
		AuthorID:   NpcAuthorID(recordID),
		AuthorName: name,
		IsNpc:      true,
	}
}

// SortMessages orders a conversation log by CreatedAt ascending,
// breaking ties by ID. Subscription notifications can arrive out of
// order, so viewers re-sort the full visible set rather than trusting
// stream order. Sorting an already-sorted log is a no-op.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// PostRequest is the body of a room message submission.
type PostRequest struct {
	Text           string `json:"text"`
	AuthorID       string `json:"authorId"`
	AuthorName     string `json:"authorName"`
	AuthorPhotoURL string `json:"authorPhotoURL,omitempty"`
}

func (pr *PostRequest) Validate() error {
	if pr.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if pr.AuthorID == "" {
		return fmt.Errorf("authorId cannot be empty")
	}
	if pr.AuthorName == "" {
		return fmt.Errorf("authorName cannot be empty")
	}
	return nil
}

// PostResponse is returned from a room message submission. NpcPending
// reports that the message was recognized as an NPC invocation and a
// reply is being generated asynchronously.
type PostResponse struct {
	Message    Message `json:"message"`
	NpcPending bool    `json:"npc_pending,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Room is a chat channel. Rooms are plain CRUD records; the
// conversation log is stored separately, keyed by room ID. Rating is an
// optional content rating (G, PG, PG13, R); family-friendly ratings
// have NPC replies run through the profanity filter.
type Room struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Topic     string    `json:"topic,omitempty"`
	Rating    string    `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (r *Room) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}
