package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/dmarkhas/roomcast/internal/store"
)

func TestRoomsEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/rooms")
	if err != nil {
		t.Fatalf("rooms request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var rooms []string
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !reflect.DeepEqual(rooms, testRooms) {
		t.Fatalf("expected %v, got %v", testRooms, rooms)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func deleteLogout(t *testing.T, ts string, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, ts+"/logout", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build logout request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout request failed: %v", err)
	}
	return resp
}

func TestLogoutMarksUserOffline(t *testing.T) {
	ts, st := startTestServer(t)

	resp := deleteLogout(t, ts.URL, `{"id":"u1","unread_counts":{"tech":2}}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Fatalf("expected empty body, got %q", body)
	}

	u, err := st.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.Status != store.StatusOffline {
		t.Fatalf("expected offline, got %s", u.Status)
	}
	if u.UnreadCounts["tech"] != 2 {
		t.Fatalf("expected unread snapshot persisted, got %v", u.UnreadCounts)
	}
}

func TestLogoutUnknownUser(t *testing.T) {
	ts, st := startTestServer(t)

	resp := deleteLogout(t, ts.URL, `{"id":"ghost"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Fatalf("expected empty body, got %q", body)
	}

	// No roster mutation on failure.
	users, err := st.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	for _, u := range users {
		if u.Status != store.StatusOnline {
			t.Fatalf("unexpected mutation: %+v", u)
		}
	}
}

func TestLogoutInvalidBody(t *testing.T) {
	ts, _ := startTestServer(t)

	resp := deleteLogout(t, ts.URL, `{"unread_counts":{}}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}
