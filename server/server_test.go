package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/playback"
)

func init() {
	logging.Discard()
}

type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, path string) (*media.Info, error) {
	switch filepath.Base(path) {
	case "a.mp4":
		return &media.Info{Path: path, Filename: "a.mp4", Duration: 10}, nil
	case "b.mp4":
		return &media.Info{Path: path, Filename: "b.mp4", Duration: 6}, nil
	}
	return nil, errors.New("unreadable")
}

func newTestServer(t *testing.T) (*Server, *editor.Session) {
	t.Helper()
	sess := editor.New(editor.Options{})
	sess.SetProber(fakeProber{})
	return New(Config{Session: sess}), sess
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, &buf))
	return rr
}

func decodeEdit(t *testing.T, rr *httptest.ResponseRecorder) EditResponse {
	t.Helper()
	var resp EditResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestStateOfEmptySession(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"clips":[]`)
}

func TestImportSplitUndo(t *testing.T) {
	srv, sess := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/edits/import", EditRequest{Paths: []string{"a.mp4", "b.mp4", "c.txt"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeEdit(t, rr)
	require.NotNil(t, resp.Import)
	assert.Len(t, resp.Import.Added, 2)
	assert.Len(t, resp.Import.Skipped, 1)
	assert.Equal(t, 16.0, resp.State.Duration)

	time12 := 12.0
	rr = do(t, h, http.MethodPost, "/api/playback/seek", PlaybackRequest{Time: &time12})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/edits/split", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, decodeEdit(t, rr).State.Clips, 3)

	rr = do(t, h, http.MethodPost, "/api/edits/undo", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decodeEdit(t, rr)
	assert.Len(t, resp.State.Clips, 2)
	assert.True(t, resp.State.CanRedo)
	assert.Len(t, sess.Clips(), 2)
}

func TestSeekToTypedTime(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/edits/import", EditRequest{Paths: []string{"a.mp4", "b.mp4"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/playback/seek", PlaybackRequest{At: "0:12.50"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var snap editor.Snapshot
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&snap))
	assert.Equal(t, 12.5, snap.Playhead)
}

func TestEditErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown op", "/api/edits/explode", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad edge", "/api/edits/trim", EditRequest{Edge: "middle"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"nothing selected", "/api/edits/delete", nil, http.StatusConflict, "INVALID_EDIT"},
		{"no clip at playhead", "/api/edits/split", nil, http.StatusConflict, "INVALID_EDIT"},
		{"missing volume", "/api/edits/volume", EditRequest{ID: "x"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad track", "/api/edits/move", EditRequest{ID: "x", Track: "overlay"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unsaved project", "/api/edits/save", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"no player", "/api/playback/play", nil, http.StatusServiceUnavailable, "NO_PLAYER"},
		{"seek without target", "/api/playback/seek", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"seek to unreadable time", "/api/playback/seek", PlaybackRequest{At: "1:75"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown action", "/api/playback/rewind", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code)
			var e ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&e))
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/edits/select", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestWebsocketPushesState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, sess := newTestServer(t)
	srv.StartHub(ctx)
	_, err := sess.Import(ctx, "a.mp4")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readMessage(t, conn)
	assert.Equal(t, MessageState, welcome.Type)
	require.NotNil(t, welcome.State)
	require.Len(t, welcome.State.Clips, 1)
	assert.False(t, welcome.State.Clips[0].Muted)

	// the welcome frame is only written once the hub has registered the client
	rr := do(t, srv.Handler(), http.MethodPost, "/api/edits/mute", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// the import broadcast may still be queued ahead of the edit
	for i := 0; i < 2; i++ {
		m := readMessage(t, conn)
		require.Equal(t, MessageState, m.Type)
		require.NotNil(t, m.State)
		if m.State.Clips[0].Muted {
			assert.True(t, m.State.CanUndo)
			return
		}
	}
	t.Fatal("mute was not pushed")
}

func TestPlaybackUpdateMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, _ := newTestServer(t)
	srv.StartHub(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	srv.PlaybackUpdate(playback.Update{Kind: playback.UpdatePlayhead, Playhead: 4.5, Playing: true})

	m := readMessage(t, conn)
	assert.Equal(t, MessagePlayhead, m.Type)
	require.NotNil(t, m.Playhead)
	assert.Equal(t, 4.5, *m.Playhead)
	assert.True(t, *m.Playing)
}
