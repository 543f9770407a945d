package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"

	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/community"
	"github.com/outerrim/holonet/pkg/wiki"
)

// RedisStorage implements Storage on Redis. Conversation logs are
// sorted sets scored by creation time; wiki records are JSON blobs
// with a name index for NPC lookup; NPC interaction history lives in
// its own string key so the memory fold-back can use Redis APPEND, an
// atomic operation that cannot lose a concurrent writer's block.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	folder cases.Caser
}

var _ Storage = (*RedisStorage)(nil)

func roomKey(id string) string       { return "room:" + id }
func roomLogKey(id string) string    { return "room-log:" + id }
func entryKey(id string) string      { return "wiki:" + id }
func npcNameKey(name string) string  { return "npc-name:" + name }
func npcHistoryKey(id string) string { return "npc-history:" + id }
func blogKey(id string) string       { return "blog:" + id }
func mapPointKey(id string) string   { return "map-point:" + id }
func profileKey(userID string) string {
	return "profile:" + userID
}

const (
	roomsIndexKey     = "rooms"
	entriesIndexKey   = "wiki-entries"
	blogsIndexKey     = "blogs"
	mapPointsIndexKey = "map-points"
)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
		folder: cases.Fold(),
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// GetClient returns the underlying Redis client for pub/sub and lock
// operations that sit outside the document-store contract.
func (r *RedisStorage) GetClient() *redis.Client {
	return r.client
}

// Rooms

func (r *RedisStorage) CreateRoom(ctx context.Context, room *chat.Room) (*chat.Room, error) {
	created := *room
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.client.Set(ctx, roomKey(created.ID), data, 0).Err(); err != nil {
		r.logger.Error("Failed to save room", "room_id", created.ID, "error", err)
		return nil, fmt.Errorf("failed to save room: %w", err)
	}
	if err := r.client.SAdd(ctx, roomsIndexKey, created.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index room: %w", err)
	}

	return &created, nil
}

func (r *RedisStorage) GetRoom(ctx context.Context, id string) (*chat.Room, error) {
	data, err := r.client.Get(ctx, roomKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	var room chat.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return &room, nil
}

func (r *RedisStorage) ListRooms(ctx context.Context) ([]chat.Room, error) {
	ids, err := r.client.SMembers(ctx, roomsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]chat.Room, 0, len(ids))
	for _, id := range ids {
		room, err := r.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		if room != nil {
			rooms = append(rooms, *room)
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// Conversation log

func (r *RedisStorage) AppendMessage(ctx context.Context, roomID string, msg chat.Message) (*chat.Message, error) {
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(&msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	err = r.client.ZAdd(ctx, roomLogKey(roomID), redis.Z{
		Score:  float64(msg.CreatedAt.UnixNano()),
		Member: string(data),
	}).Err()
	if err != nil {
		r.logger.Error("Failed to append message", "room_id", roomID, "error", err)
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return &msg, nil
}

func (r *RedisStorage) ListMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := r.client.ZRange(ctx, roomLogKey(roomID), start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	msgs := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		var msg chat.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			r.logger.Warn("Skipping unreadable message", "room_id", roomID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}

	// Scores already order the range, but re-sort so viewers never
	// depend on store internals for log order.
	chat.SortMessages(msgs)
	return msgs, nil
}

// Wiki directory

func (r *RedisStorage) CreateEntry(ctx context.Context, entry *wiki.Entry) (*wiki.Entry, error) {
	created := *entry
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	if created.IsNPC() {
		// Claim the name first; SETNX makes creation race-free.
		claimed, err := r.client.SetNX(ctx, npcNameKey(created.Name), created.ID, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to claim npc name: %w", err)
		}
		if !claimed {
			return nil, ErrDuplicateName
		}

		if created.InteractionHistory != "" {
			if err := r.client.Set(ctx, npcHistoryKey(created.ID), created.InteractionHistory, 0).Err(); err != nil {
				return nil, fmt.Errorf("failed to seed npc history: %w", err)
			}
		}
	}

	if err := r.saveEntry(ctx, &created); err != nil {
		return nil, err
	}
	if err := r.client.SAdd(ctx, entriesIndexKey, created.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index entry: %w", err)
	}

	return &created, nil
}

// saveEntry persists the record blob. Interaction history is stripped
// before marshaling: it lives only in the history key.
func (r *RedisStorage) saveEntry(ctx context.Context, entry *wiki.Entry) error {
	stripped := *entry
	stripped.InteractionHistory = ""

	data, err := json.Marshal(&stripped)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := r.client.Set(ctx, entryKey(entry.ID), data, 0).Err(); err != nil {
		r.logger.Error("Failed to save entry", "entry_id", entry.ID, "error", err)
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetEntry(ctx context.Context, id string) (*wiki.Entry, error) {
	data, err := r.client.Get(ctx, entryKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}

	var entry wiki.Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	if entry.IsNPC() {
		history, err := r.client.Get(ctx, npcHistoryKey(entry.ID)).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to load npc history: %w", err)
		}
		entry.InteractionHistory = history
	}

	return &entry, nil
}

func (r *RedisStorage) UpdateEntry(ctx context.Context, entry *wiki.Entry) (*wiki.Entry, error) {
	existing, err := r.GetEntry(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("entry not found: %s", entry.ID)
	}

	if existing.IsNPC() && existing.Name != entry.Name {
		// Re-claim the new name before releasing the old one. The
		// claim, release, and record save below are separate commands:
		// a crash between the claim and the save leaves the new name
		// key pointing at a record still carrying its old name. The
		// key's value is the entry ID, so a stale claim is identifiable
		// and can be cleared by hand.
		claimed, err := r.client.SetNX(ctx, npcNameKey(entry.Name), entry.ID, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to claim npc name: %w", err)
		}
		if !claimed {
			return nil, ErrDuplicateName
		}
		if err := r.client.Del(ctx, npcNameKey(existing.Name)).Err(); err != nil {
			return nil, fmt.Errorf("failed to release old npc name: %w", err)
		}
	}

	updated := *entry
	updated.Type = existing.Type // type is immutable after creation
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := r.saveEntry(ctx, &updated); err != nil {
		return nil, err
	}

	// The wiki never edits history; reads reflect the history key.
	updated.InteractionHistory = existing.InteractionHistory
	return &updated, nil
}

func (r *RedisStorage) DeleteEntry(ctx context.Context, id string) error {
	entry, err := r.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	keys := []string{entryKey(id)}
	if entry.IsNPC() {
		keys = append(keys, npcHistoryKey(id))

		// Release the name only if this record still owns it.
		owner, err := r.client.Get(ctx, npcNameKey(entry.Name)).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to check npc name owner: %w", err)
		}
		if owner == id {
			keys = append(keys, npcNameKey(entry.Name))
		}
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if err := r.client.SRem(ctx, entriesIndexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to unindex entry: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListEntries(ctx context.Context, entryType wiki.EntryType) ([]wiki.Entry, error) {
	ids, err := r.client.SMembers(ctx, entriesIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]wiki.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.GetEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		if entryType != "" && entry.Type != entryType {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// SearchEntries matches entry names case-insensitively. This is a
// browse convenience only; invocation lookup stays exact.
func (r *RedisStorage) SearchEntries(ctx context.Context, query string) ([]wiki.Entry, error) {
	all, err := r.ListEntries(ctx, "")
	if err != nil {
		return nil, err
	}

	folded := r.folder.String(query)
	matches := make([]wiki.Entry, 0)
	for _, entry := range all {
		if strings.Contains(r.folder.String(entry.Name), folded) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// NPC directory operations

func (r *RedisStorage) FindNPCByName(ctx context.Context, name string) (*wiki.Entry, error) {
	id, err := r.client.Get(ctx, npcNameKey(name)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve npc name: %w", err)
	}

	entry, err := r.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil || !entry.IsNPC() || entry.Name != name {
		// Stale index; treat as not found rather than guessing.
		return nil, nil
	}
	return entry, nil
}

func (r *RedisStorage) AppendNPCMemory(ctx context.Context, recordID string, block string) error {
	if err := r.client.Append(ctx, npcHistoryKey(recordID), block).Err(); err != nil {
		r.logger.Error("Failed to append npc memory", "record_id", recordID, "error", err)
		return fmt.Errorf("failed to append npc memory: %w", err)
	}
	return nil
}

// Blog posts

func (r *RedisStorage) CreateBlogPost(ctx context.Context, post *community.BlogPost) (*community.BlogPost, error) {
	created := *post
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blog post: %w", err)
	}
	if err := r.client.Set(ctx, blogKey(created.ID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to save blog post: %w", err)
	}
	if err := r.client.SAdd(ctx, blogsIndexKey, created.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index blog post: %w", err)
	}
	return &created, nil
}

func (r *RedisStorage) GetBlogPost(ctx context.Context, id string) (*community.BlogPost, error) {
	data, err := r.client.Get(ctx, blogKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load blog post: %w", err)
	}

	var post community.BlogPost
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blog post: %w", err)
	}
	return &post, nil
}

func (r *RedisStorage) ListBlogPosts(ctx context.Context) ([]community.BlogPost, error) {
	ids, err := r.client.SMembers(ctx, blogsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}

	posts := make([]community.BlogPost, 0, len(ids))
	for _, id := range ids {
		post, err := r.GetBlogPost(ctx, id)
		if err != nil {
			return nil, err
		}
		if post != nil {
			posts = append(posts, *post)
		}
	}

	// Newest first, blog-style.
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (r *RedisStorage) DeleteBlogPost(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, blogKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}
	if err := r.client.SRem(ctx, blogsIndexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to unindex blog post: %w", err)
	}
	return nil
}

// Map points

func (r *RedisStorage) CreateMapPoint(ctx context.Context, point *community.MapPoint) (*community.MapPoint, error) {
	created := *point
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map point: %w", err)
	}
	if err := r.client.Set(ctx, mapPointKey(created.ID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to save map point: %w", err)
	}
	if err := r.client.SAdd(ctx, mapPointsIndexKey, created.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to index map point: %w", err)
	}
	return &created, nil
}

func (r *RedisStorage) ListMapPoints(ctx context.Context) ([]community.MapPoint, error) {
	ids, err := r.client.SMembers(ctx, mapPointsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list map points: %w", err)
	}

	points := make([]community.MapPoint, 0, len(ids))
	for _, id := range ids {
		data, err := r.client.Get(ctx, mapPointKey(id)).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to load map point: %w", err)
		}

		var point community.MapPoint
		if err := json.Unmarshal([]byte(data), &point); err != nil {
			return nil, fmt.Errorf("failed to unmarshal map point: %w", err)
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].CreatedAt.Before(points[j].CreatedAt)
	})
	return points, nil
}

func (r *RedisStorage) DeleteMapPoint(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, mapPointKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete map point: %w", err)
	}
	if err := r.client.SRem(ctx, mapPointsIndexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to unindex map point: %w", err)
	}
	return nil
}

// Profiles

func (r *RedisStorage) GetProfile(ctx context.Context, userID string) (*community.Profile, error) {
	data, err := r.client.Get(ctx, profileKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile community.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

func (r *RedisStorage) SaveProfile(ctx context.Context, profile *community.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := r.client.Set(ctx, profileKey(profile.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
