package http

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/roomcast/internal/config"
	"github.com/dmarkhas/roomcast/internal/core"
	"github.com/dmarkhas/roomcast/internal/presence"
	"github.com/dmarkhas/roomcast/internal/store"
	"github.com/dmarkhas/roomcast/internal/store/sqlite"
)

var testRooms = []string{"general", "tech", "finance"}

func createTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(`
			INSERT INTO users (id, name, status, unread_counts) VALUES
			('u1', 'alice', 'online', '{}'),
			('u2', 'bob', 'online', '{}');
		`)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func startTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st := createTestStore(t)

	disabledLogger := zerolog.Nop()
	hub := core.NewHub(st, testRooms, nil, &disabledLogger)
	presenceSvc := presence.New(st, hub, &disabledLogger)

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		Rooms:             testRooms,
	}

	server := NewServer(hub, presenceSvc, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st
}
