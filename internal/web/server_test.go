package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/metascrub/metascrub/internal/pipeline"
)

func TestServerSetupRoutesAndVersionRoute(t *testing.T) {
	// After setupRoutes, /api/version reports the configured version.
	s := &Server{
		router:  mux.NewRouter(),
		hub:     NewHub(),
		version: "v9.9.9",
	}
	s.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode version response: %v", err)
	}
	if body["version"] != "v9.9.9" {
		t.Fatalf("unexpected version response: %+v", body)
	}
}

func TestNewServerAndSetVersion(t *testing.T) {
	s := NewServer()
	s.SetVersion("v1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode version response: %v", err)
	}
	if body["version"] != "v1.2.3" {
		t.Fatalf("unexpected version response: %+v", body)
	}
}

func TestServerBroadcastJSONAndProgress(t *testing.T) {
	// broadcastJSON and broadcastProgress both feed the hub broadcast channel.
	s := &Server{hub: NewHub()}
	done := make(chan []byte, 2)

	go func() {
		done <- <-s.hub.broadcast
		done <- <-s.hub.broadcast
	}()

	s.broadcastJSON(map[string]string{"type": "status"})
	s.broadcastProgress(pipeline.ProgressUpdate{Type: "complete"})

	select {
	case first := <-done:
		if len(first) == 0 {
			t.Fatal("expected first broadcast payload")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting first broadcast")
	}

	select {
	case second := <-done:
		if len(second) == 0 {
			t.Fatal("expected second broadcast payload")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting second broadcast")
	}
}

func TestHandleWebSocket_UpgradeFailurePath(t *testing.T) {
	// A plain GET without websocket headers fails the upgrade.
	s := &Server{hub: NewHub()}
	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	rr := httptest.NewRecorder()

	s.handleWebSocket(rr, req)

	if rr.Code == http.StatusOK {
		t.Fatalf("expected non-200 response for invalid websocket handshake, got %d", rr.Code)
	}
}
