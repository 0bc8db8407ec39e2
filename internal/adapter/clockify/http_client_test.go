package clockify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMissingKeyFailsBeforeAnyNetworkCall(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	_, err := c.GetUser(context.Background())
	assert.ErrorIs(t, err, ErrCredentialMissing)
	assert.Zero(t, hits)
}

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte(`{
			"id": "user1",
			"name": "Jordan",
			"email": "jordan@example.com",
			"defaultWorkspace": "ws-default",
			"activeWorkspace": "ws-active",
			"settings": {"timeZone": "Australia/Sydney"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testLogger())
	user, err := c.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user1", user.ID)
	assert.Equal(t, "Jordan", user.Name)
	assert.Equal(t, "ws-active", user.ActiveWorkspace)
	assert.Equal(t, "ws-active", user.Workspace())
	assert.Equal(t, "Australia/Sydney", user.TimeZone)
}

func TestGetWorkspaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"ws1","name":"Main"},{"id":"ws2","name":"Side"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testLogger())
	workspaces, err := c.GetWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	assert.Equal(t, "Main", workspaces[0].Name)
}

func TestGetTimeEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws1/user/user1/time-entries", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"e1","description":"Bug fix","userId":"user1","workspaceId":"ws1",
			 "timeInterval":{"start":"2024-03-05T09:00:00Z","end":"2024-03-05T10:30:00Z"}},
			{"id":"e2","description":"Still running","userId":"user1","workspaceId":"ws1",
			 "timeInterval":{"start":"2024-03-05T11:00:00Z","end":null}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testLogger())
	entries, err := c.GetTimeEntries(context.Background(), "ws1", "user1", nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "e1", entries[0].ID)
	assert.True(t, entries[0].Completed())
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), entries[0].Start)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), *entries[0].End)

	assert.False(t, entries[1].Completed())
	assert.Nil(t, entries[1].End)
}

func TestGetTimeEntriesSendsBoundsInWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-03-01T00:00:00Z", q.Get("start"))
		assert.Equal(t, "2024-04-01T00:00:00Z", q.Get("end"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	c := NewClient(srv.URL, "test-key", testLogger())
	entries, err := c.GetTimeEntries(context.Background(), "ws1", "user1", &since, &until)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNonSuccessStatusIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testLogger())
	_, err := c.GetUser(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Contains(t, reqErr.Body, "nope")
}

func TestUndecodableBodyIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testLogger())
	_, err := c.GetUser(context.Background())

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestBadTimestampIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"e1","timeInterval":{"start":"garbage","end":null}}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", testLogger())
	_, err := c.GetTimeEntries(context.Background(), "ws1", "user1", nil, nil)

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestContextCancellationAborts(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "test-key", testLogger())
	_, err := c.GetUser(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
