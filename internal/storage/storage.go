package storage

import (
	"context"
	"errors"

	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/community"
	"github.com/outerrim/holonet/pkg/wiki"
)

// ErrDuplicateName is returned when creating an NPC entry whose name
// is already claimed. Uniqueness is enforced at creation time so chat
// invocations always resolve to exactly one record.
var ErrDuplicateName = errors.New("an NPC with this name already exists")

// Storage is the hub's document store: room records, append-only
// conversation logs, the wiki directory, and the routine community
// collections. Get-style methods return nil (not an error) for records
// that don't exist.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Rooms
	CreateRoom(ctx context.Context, room *chat.Room) (*chat.Room, error)
	GetRoom(ctx context.Context, id string) (*chat.Room, error)
	ListRooms(ctx context.Context) ([]chat.Room, error)

	// Conversation log (append-only; ID and CreatedAt assigned here)
	AppendMessage(ctx context.Context, roomID string, msg chat.Message) (*chat.Message, error)
	ListMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error)

	// Wiki directory
	CreateEntry(ctx context.Context, entry *wiki.Entry) (*wiki.Entry, error)
	GetEntry(ctx context.Context, id string) (*wiki.Entry, error)
	UpdateEntry(ctx context.Context, entry *wiki.Entry) (*wiki.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, entryType wiki.EntryType) ([]wiki.Entry, error)
	SearchEntries(ctx context.Context, query string) ([]wiki.Entry, error)

	// NPC directory operations used by the responder. FindNPCByName is
	// an exact-name, npc-type match. AppendNPCMemory is atomic: two
	// concurrent invocations of the same NPC both have their exchange
	// recorded.
	FindNPCByName(ctx context.Context, name string) (*wiki.Entry, error)
	AppendNPCMemory(ctx context.Context, recordID string, block string) error

	// Blog posts
	CreateBlogPost(ctx context.Context, post *community.BlogPost) (*community.BlogPost, error)
	GetBlogPost(ctx context.Context, id string) (*community.BlogPost, error)
	ListBlogPosts(ctx context.Context) ([]community.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) error

	// Map points
	CreateMapPoint(ctx context.Context, point *community.MapPoint) (*community.MapPoint, error)
	ListMapPoints(ctx context.Context) ([]community.MapPoint, error)
	DeleteMapPoint(ctx context.Context, id string) error

	// Profiles (keyed by the auth layer's user ID)
	GetProfile(ctx context.Context, userID string) (*community.Profile, error)
	SaveProfile(ctx context.Context, profile *community.Profile) error
}
