package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/community"
	"github.com/outerrim/holonet/pkg/wiki"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	rs, err := NewRedisStorage("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis storage: %v", err)
	}

	return rs, mr
}

func TestRedisStorage_AppendAndListMessages(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	room, err := rs.CreateRoom(ctx, &chat.Room{Name: "Cantina"})
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		_, err := rs.AppendMessage(ctx, room.ID, chat.NewUserMessage(text, "u1", "Han", ""))
		if err != nil {
			t.Fatalf("Failed to append message: %v", err)
		}
	}

	msgs, err := rs.ListMessages(ctx, room.ID, 0)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("Expected %d messages, got %d", len(texts), len(msgs))
	}
	for i, text := range texts {
		if msgs[i].Text != text {
			t.Errorf("Message %d: expected %q, got %q", i, text, msgs[i].Text)
		}
		if msgs[i].ID == "" {
			t.Errorf("Message %d: expected assigned ID", i)
		}
		if msgs[i].CreatedAt.IsZero() {
			t.Errorf("Message %d: expected assigned CreatedAt", i)
		}
	}
}

func TestRedisStorage_ListMessages_Limit(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c", "d"} {
		if _, err := rs.AppendMessage(ctx, "room1", chat.NewUserMessage(text, "u1", "Han", "")); err != nil {
			t.Fatalf("Failed to append message: %v", err)
		}
	}

	msgs, err := rs.ListMessages(ctx, "room1", 2)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	// Limit keeps the most recent messages, still ascending.
	if msgs[0].Text != "c" || msgs[1].Text != "d" {
		t.Errorf("Expected [c d], got [%s %s]", msgs[0].Text, msgs[1].Text)
	}
}

func TestRedisStorage_ListMessages_EmptyRoom(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	msgs, err := rs.ListMessages(context.Background(), "no-such-room", 0)
	if err != nil {
		t.Fatalf("Expected no error for empty room, got %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Expected empty log, got %d messages", len(msgs))
	}
}

func TestRedisStorage_CreateEntry_DuplicateNPCName(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	_, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Greedo", Type: wiki.TypeNPC, Personality: "Jumpy."})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	_, err = rs.CreateEntry(ctx, &wiki.Entry{Name: "Greedo", Type: wiki.TypeNPC, Personality: "An impostor."})
	if err != ErrDuplicateName {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}

	// Same name is fine for non-NPC entries.
	if _, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Greedo", Type: wiki.TypeLore, Body: "A famous Rodian."}); err != nil {
		t.Errorf("Expected lore entry with same name to be allowed, got %v", err)
	}
}

func TestRedisStorage_FindNPCByName(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	created, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Boba Fett", Type: wiki.TypeNPC, Personality: "Taciturn."})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	found, err := rs.FindNPCByName(ctx, "Boba Fett")
	if err != nil {
		t.Fatalf("Failed to find npc: %v", err)
	}
	if found == nil {
		t.Fatal("Expected npc to be found")
	}
	if found.ID != created.ID {
		t.Errorf("Expected ID %s, got %s", created.ID, found.ID)
	}

	// Exact match only: case differences miss.
	found, err = rs.FindNPCByName(ctx, "boba fett")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found != nil {
		t.Error("Expected case-mismatched lookup to miss")
	}

	found, err = rs.FindNPCByName(ctx, "Greedo")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found != nil {
		t.Error("Expected unknown name to miss")
	}
}

func TestRedisStorage_AppendNPCMemory(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	created, err := rs.CreateEntry(ctx, &wiki.Entry{
		Name:               "Greedo",
		Type:               wiki.TypeNPC,
		Personality:        "Jumpy.",
		InteractionHistory: "H0",
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	block := wiki.MemoryBlock("Greedo", "U1", "R1")
	if err := rs.AppendNPCMemory(ctx, created.ID, block); err != nil {
		t.Fatalf("Failed to append memory: %v", err)
	}

	loaded, err := rs.GetEntry(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to load entry: %v", err)
	}
	want := "H0" + "User: U1\nGreedo: R1\n\n"
	if loaded.InteractionHistory != want {
		t.Errorf("Expected history %q, got %q", want, loaded.InteractionHistory)
	}

	// Sequential appends keep submission order.
	if err := rs.AppendNPCMemory(ctx, created.ID, wiki.MemoryBlock("Greedo", "U2", "R2")); err != nil {
		t.Fatalf("Failed to append memory: %v", err)
	}
	loaded, _ = rs.GetEntry(ctx, created.ID)
	want += "User: U2\nGreedo: R2\n\n"
	if loaded.InteractionHistory != want {
		t.Errorf("Expected history %q, got %q", want, loaded.InteractionHistory)
	}
}

func TestRedisStorage_UpdateEntry_PreservesHistory(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	created, err := rs.CreateEntry(ctx, &wiki.Entry{
		Name:               "Greedo",
		Type:               wiki.TypeNPC,
		Personality:        "Jumpy.",
		InteractionHistory: "H0",
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	created.Personality = "Jumpier than ever."
	updated, err := rs.UpdateEntry(ctx, created)
	if err != nil {
		t.Fatalf("Failed to update entry: %v", err)
	}
	if updated.InteractionHistory != "H0" {
		t.Errorf("Expected history preserved through update, got %q", updated.InteractionHistory)
	}
	if updated.Personality != "Jumpier than ever." {
		t.Errorf("Expected personality updated, got %q", updated.Personality)
	}
}

func TestRedisStorage_UpdateEntry_RenameMovesRegistry(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	created, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Greedo", Type: wiki.TypeNPC, Personality: "Jumpy."})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	if _, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Bossk", Type: wiki.TypeNPC, Personality: "Hungry."}); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	// Renaming onto a taken name is rejected before anything moves
	created.Name = "Bossk"
	if _, err := rs.UpdateEntry(ctx, created); err != ErrDuplicateName {
		t.Fatalf("Expected ErrDuplicateName, got %v", err)
	}

	created.Name = "Greedo the Bold"
	if _, err := rs.UpdateEntry(ctx, created); err != nil {
		t.Fatalf("Failed to rename entry: %v", err)
	}

	found, err := rs.FindNPCByName(ctx, "Greedo the Bold")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Error("Expected the new name to resolve to the same record")
	}

	old, err := rs.FindNPCByName(ctx, "Greedo")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if old != nil {
		t.Error("Expected the old name to be released")
	}
}

func TestRedisStorage_DeleteEntry_ReleasesName(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	created, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Greedo", Type: wiki.TypeNPC})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}
	if err := rs.DeleteEntry(ctx, created.ID); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}

	found, err := rs.FindNPCByName(ctx, "Greedo")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if found != nil {
		t.Error("Expected deleted npc to be unresolvable")
	}

	// Name is reusable after deletion.
	if _, err := rs.CreateEntry(ctx, &wiki.Entry{Name: "Greedo", Type: wiki.TypeNPC}); err != nil {
		t.Errorf("Expected name to be reusable after delete, got %v", err)
	}
}

func TestRedisStorage_SearchEntries_CaseInsensitive(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()
	for _, e := range []wiki.Entry{
		{Name: "Boba Fett", Type: wiki.TypeNPC},
		{Name: "Jabba's Palace", Type: wiki.TypeLocation},
		{Name: "Sarlacc", Type: wiki.TypeLore},
	} {
		entry := e
		if _, err := rs.CreateEntry(ctx, &entry); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}
	}

	matches, err := rs.SearchEntries(ctx, "boba")
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Boba Fett" {
		t.Errorf("Expected [Boba Fett], got %v", matches)
	}
}

func TestRedisStorage_Profiles(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	missing, err := rs.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing profile")
	}

	profile := &community.Profile{UserID: "u1", DisplayName: "Han", Bio: "Smuggler."}
	if err := rs.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	loaded, err := rs.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}
	if loaded == nil || loaded.DisplayName != "Han" {
		t.Errorf("Expected profile for Han, got %+v", loaded)
	}
}

func TestRedisStorage_BlogPosts(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	post, err := rs.CreateBlogPost(ctx, &community.BlogPost{
		Title:      "Tatooine Travel Tips",
		Body:       "Bring water.",
		AuthorID:   "u1",
		AuthorName: "Han",
	})
	if err != nil {
		t.Fatalf("Failed to create blog post: %v", err)
	}

	posts, err := rs.ListBlogPosts(ctx)
	if err != nil {
		t.Fatalf("Failed to list blog posts: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != post.ID {
		t.Errorf("Expected 1 post with ID %s, got %v", post.ID, posts)
	}

	if err := rs.DeleteBlogPost(ctx, post.ID); err != nil {
		t.Fatalf("Failed to delete blog post: %v", err)
	}
	posts, _ = rs.ListBlogPosts(ctx)
	if len(posts) != 0 {
		t.Errorf("Expected no posts after delete, got %d", len(posts))
	}
}

func TestRedisStorage_MapPoints(t *testing.T) {
	rs, mr := setupTestStorage(t)
	defer mr.Close()
	defer rs.Close()

	ctx := context.Background()

	point, err := rs.CreateMapPoint(ctx, &community.MapPoint{Label: "Mos Eisley", X: 0.3, Y: 0.7, AuthorID: "u1"})
	if err != nil {
		t.Fatalf("Failed to create map point: %v", err)
	}

	points, err := rs.ListMapPoints(ctx)
	if err != nil {
		t.Fatalf("Failed to list map points: %v", err)
	}
	if len(points) != 1 || points[0].ID != point.ID {
		t.Errorf("Expected 1 point with ID %s, got %v", point.ID, points)
	}

	if err := rs.DeleteMapPoint(ctx, point.ID); err != nil {
		t.Fatalf("Failed to delete map point: %v", err)
	}
}
