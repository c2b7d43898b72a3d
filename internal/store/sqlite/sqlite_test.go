package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmarkhas/roomcast/internal/store"
)

func seedUsers(db *sql.DB) error {
	query := `
		INSERT INTO users (id, name, status, unread_counts) VALUES
		('u1', 'alice', 'online', '{}'),
		('u2', 'bob', 'offline', '{"tech": 3}');
	`
	_, err := db.Exec(query)
	return err
}

func TestUserRoundTrip(t *testing.T) {
	s, err := NewWithSetup(":memory:", seedUsers)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	u, err := s.GetUser(ctx, "u2")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.Name != "bob" || u.Status != store.StatusOffline {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.UnreadCounts["tech"] != 3 {
		t.Errorf("expected unread tech=3, got %v", u.UnreadCounts)
	}

	u.Status = store.StatusOnline
	u.UnreadCounts = map[string]int{"general": 1, "tech": 0}
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	reloaded, err := s.GetUser(ctx, "u2")
	if err != nil {
		t.Fatalf("GetUser after save failed: %v", err)
	}
	if reloaded.Status != store.StatusOnline {
		t.Errorf("expected online, got %s", reloaded.Status)
	}
	if reloaded.UnreadCounts["general"] != 1 {
		t.Errorf("expected unread general=1, got %v", reloaded.UnreadCounts)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	_, err = s.GetUser(context.Background(), "ghost")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSaveUserNotFound(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	u := &store.User{ID: "ghost", Name: "casper", Status: store.StatusOffline}
	if err := s.SaveUser(context.Background(), u); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAppendAndListRoomMessages(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	appends := []store.Message{
		{Content: "first", From: "alice", To: "tech", Time: "09:00", Date: "3/1/2024"},
		{Content: "second", From: "bob", To: "tech", Time: "09:05", Date: "3/1/2024"},
		{Content: "elsewhere", From: "carol", To: "finance", Time: "09:10", Date: "3/1/2024"},
	}
	for i := range appends {
		if err := s.AppendMessage(ctx, &appends[i]); err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
		if appends[i].ID == "" {
			t.Fatalf("expected assigned id for message %d", i)
		}
	}

	msgs, err := s.ListRoomMessages(ctx, "tech")
	if err != nil {
		t.Fatalf("ListRoomMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 tech messages, got %d", len(msgs))
	}
	// Insertion order must be stable.
	if msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Errorf("unexpected order: %q then %q", msgs[0].Content, msgs[1].Content)
	}
	for _, m := range msgs {
		if m.To != "tech" {
			t.Errorf("message %q leaked from room %q", m.Content, m.To)
		}
	}

	empty, err := s.ListRoomMessages(ctx, "gaming")
	if err != nil {
		t.Fatalf("ListRoomMessages empty room failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no messages, got %d", len(empty))
	}
}
