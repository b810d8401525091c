package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/models"
)

func TestHandleWebSocket_RejectsMissingOrBadToken(t *testing.T) {
	hub := NewHub(nil, middleware.NewJWTAuth("secret"), "")

	for _, target := range []string{"/ws", "/ws?token=garbage"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		hub.HandleWebSocket(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rr.Code)
		}
	}
}

func TestHub_SendToUser(t *testing.T) {
	jwtAuth := middleware.NewJWTAuth("secret")
	hub := NewHub(nil, jwtAuth, "http://localhost:5173")
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	userID := uuid.New()
	token, err := jwtAuth.GenerateAccessToken(userID, "alice")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.SendToUser(userID, models.WSMessage{
		Type:    "status_update",
		Payload: models.StatusUpdate{Link: "https://youtu.be/abc123", Step: 2, StepName: "Downloading Audio"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type    string              `json:"type"`
		Payload models.StatusUpdate `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "status_update" || msg.Payload.Step != 2 {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker("http://localhost:5173, https://blog.example.com/")

	cases := map[string]bool{
		"":                         true,
		"http://localhost:5173":    true,
		"https://blog.example.com": true,
		"https://evil.example.com": false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if got := check(req); got != want {
			t.Errorf("origin %q: expected %v, got %v", origin, want, got)
		}
	}
}
