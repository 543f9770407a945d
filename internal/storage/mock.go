package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/community"
	"github.com/outerrim/holonet/pkg/wiki"
)

// MockStorage is an in-memory Storage for testing. Behavior can be
// overridden per method via the Func fields; unset fields use the
// default in-memory implementation.
type MockStorage struct {
	mu sync.Mutex

	rooms     map[string]chat.Room
	logs      map[string][]chat.Message
	entries   map[string]wiki.Entry
	npcNames  map[string]string // name -> record ID
	histories map[string]string // record ID -> history blob
	blogs     map[string]community.BlogPost
	points    map[string]community.MapPoint
	profiles  map[string]community.Profile

	clock time.Time

	AppendMessageFunc   func(ctx context.Context, roomID string, msg chat.Message) (*chat.Message, error)
	AppendNPCMemoryFunc func(ctx context.Context, recordID string, block string) error
	FindNPCByNameFunc   func(ctx context.Context, name string) (*wiki.Entry, error)
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		rooms:     make(map[string]chat.Room),
		logs:      make(map[string][]chat.Message),
		entries:   make(map[string]wiki.Entry),
		npcNames:  make(map[string]string),
		histories: make(map[string]string),
		blogs:     make(map[string]community.BlogPost),
		points:    make(map[string]community.MapPoint),
		profiles:  make(map[string]community.Profile),
		clock:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so appended messages
// always have distinct, ordered CreatedAt values in tests.
func (m *MockStorage) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

// Rooms

func (m *MockStorage) CreateRoom(ctx context.Context, room *chat.Room) (*chat.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *room
	created.ID = uuid.New().String()
	created.CreatedAt = m.tick()
	m.rooms[created.ID] = created
	return &created, nil
}

func (m *MockStorage) GetRoom(ctx context.Context, id string) (*chat.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (m *MockStorage) ListRooms(ctx context.Context) ([]chat.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]chat.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// Conversation log

func (m *MockStorage) AppendMessage(ctx context.Context, roomID string, msg chat.Message) (*chat.Message, error) {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(ctx, roomID, msg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = uuid.New().String()
	msg.CreatedAt = m.tick()
	m.logs[roomID] = append(m.logs[roomID], msg)
	return &msg, nil
}

func (m *MockStorage) ListMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[roomID]
	msgs := make([]chat.Message, len(log))
	copy(msgs, log)
	chat.SortMessages(msgs)

	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// Wiki directory

func (m *MockStorage) CreateEntry(ctx context.Context, entry *wiki.Entry) (*wiki.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *entry
	created.ID = uuid.New().String()
	created.CreatedAt = m.tick()
	created.UpdatedAt = created.CreatedAt

	if created.IsNPC() {
		if _, taken := m.npcNames[created.Name]; taken {
			return nil, ErrDuplicateName
		}
		m.npcNames[created.Name] = created.ID
		m.histories[created.ID] = created.InteractionHistory
	}

	stored := created
	stored.InteractionHistory = ""
	m.entries[created.ID] = stored
	return &created, nil
}

func (m *MockStorage) GetEntry(ctx context.Context, id string) (*wiki.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getEntryLocked(id), nil
}

func (m *MockStorage) getEntryLocked(id string) *wiki.Entry {
	entry, ok := m.entries[id]
	if !ok {
		return nil
	}
	if entry.IsNPC() {
		entry.InteractionHistory = m.histories[id]
	}
	return &entry
}

func (m *MockStorage) UpdateEntry(ctx context.Context, entry *wiki.Entry) (*wiki.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[entry.ID]
	if !ok {
		return nil, fmt.Errorf("entry not found: %s", entry.ID)
	}

	if existing.IsNPC() && existing.Name != entry.Name {
		if _, taken := m.npcNames[entry.Name]; taken {
			return nil, ErrDuplicateName
		}
		delete(m.npcNames, existing.Name)
		m.npcNames[entry.Name] = entry.ID
	}

	updated := *entry
	updated.Type = existing.Type
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = m.tick()
	updated.InteractionHistory = ""
	m.entries[entry.ID] = updated

	return m.getEntryLocked(entry.ID), nil
}

func (m *MockStorage) DeleteEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil
	}
	if entry.IsNPC() {
		if m.npcNames[entry.Name] == id {
			delete(m.npcNames, entry.Name)
		}
		delete(m.histories, id)
	}
	delete(m.entries, id)
	return nil
}

func (m *MockStorage) ListEntries(ctx context.Context, entryType wiki.EntryType) ([]wiki.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]wiki.Entry, 0, len(m.entries))
	for id := range m.entries {
		entry := m.getEntryLocked(id)
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

func (m *MockStorage) SearchEntries(ctx context.Context, query string) ([]wiki.Entry, error) {
	all, err := m.ListEntries(ctx, "")
	if err != nil {
		return nil, err
	}

	matches := make([]wiki.Entry, 0)
	for _, entry := range all {
		if strings.Contains(strings.ToLower(entry.Name), strings.ToLower(query)) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// NPC directory operations

func (m *MockStorage) FindNPCByName(ctx context.Context, name string) (*wiki.Entry, error) {
	if m.FindNPCByNameFunc != nil {
		return m.FindNPCByNameFunc(ctx, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.npcNames[name]
	if !ok {
		return nil, nil
	}
	return m.getEntryLocked(id), nil
}

func (m *MockStorage) AppendNPCMemory(ctx context.Context, recordID string, block string) error {
	if m.AppendNPCMemoryFunc != nil {
		return m.AppendNPCMemoryFunc(ctx, recordID, block)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.histories[recordID] += block
	return nil
}

// Blog posts

func (m *MockStorage) CreateBlogPost(ctx context.Context, post *community.BlogPost) (*community.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *post
	created.ID = uuid.New().String()
	created.CreatedAt = m.tick()
	m.blogs[created.ID] = created
	return &created, nil
}

func (m *MockStorage) GetBlogPost(ctx context.Context, id string) (*community.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.blogs[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (m *MockStorage) ListBlogPosts(ctx context.Context) ([]community.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]community.BlogPost, 0, len(m.blogs))
	for _, post := range m.blogs {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MockStorage) DeleteBlogPost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blogs, id)
	return nil
}

// Map points

func (m *MockStorage) CreateMapPoint(ctx context.Context, point *community.MapPoint) (*community.MapPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *point
	created.ID = uuid.New().String()
	created.CreatedAt = m.tick()
	m.points[created.ID] = created
	return &created, nil
}

func (m *MockStorage) ListMapPoints(ctx context.Context) ([]community.MapPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	points := make([]community.MapPoint, 0, len(m.points))
	for _, point := range m.points {
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].CreatedAt.Before(points[j].CreatedAt)
	})
	return points, nil
}

func (m *MockStorage) DeleteMapPoint(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.points, id)
	return nil
}

// Profiles

func (m *MockStorage) GetProfile(ctx context.Context, userID string) (*community.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (m *MockStorage) SaveProfile(ctx context.Context, profile *community.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile.UpdatedAt = m.tick()
	m.profiles[profile.UserID] = *profile
	return nil
}
