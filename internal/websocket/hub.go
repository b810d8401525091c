package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// client serialises writes; gorilla connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub relays blog generation progress published on Redis to every open
// WebSocket of the same user.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*client
	cancelFuncs map[uuid.UUID]context.CancelFunc
	redisClient *redis.Client
	jwtAuth     *middleware.JWTAuth
	upgrader    websocket.Upgrader
}

// NewHub builds a hub. A nil redisClient disables the Redis relay; SendToUser
// still works.
func NewHub(redisClient *redis.Client, jwtAuth *middleware.JWTAuth, allowedOrigins string) *Hub {
	h := &Hub{
		connections: make(map[uuid.UUID][]*client),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		redisClient: redisClient,
		jwtAuth:     jwtAuth,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker accepts requests without an Origin header and those from the
// configured frontend origins.
func originChecker(allowedOrigins string) func(r *http.Request) bool {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on the upgrade request, so the access token
	// travels in the query string.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtAuth.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.registerConnection(userID, c)

	go h.readLoop(userID, c)
	go h.pingLoop(c)
}

// readLoop discards client messages and unregisters on disconnect.
func (h *Hub) readLoop(userID uuid.UUID, c *client) {
	defer h.unregisterConnection(userID, c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) pingLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.write(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (h *Hub) registerConnection(userID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[userID] = append(h.connections[userID], c)

	// First connection for this user starts the Redis subscription.
	if len(h.connections[userID]) == 1 && h.redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.subscribeToPubSub(ctx, userID)
	}

	log.Printf("WebSocket connected: user %s (total: %d)", userID, len(h.connections[userID]))
}

func (h *Hub) unregisterConnection(userID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[userID]
	for i, existing := range conns {
		if existing == c {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	log.Printf("WebSocket disconnected: user %s", userID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, userID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, services.UserUpdatesChannel(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(userID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	conns := append([]*client(nil), h.connections[userID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(websocket.TextMessage, data); err != nil {
			log.Printf("WebSocket write failed for user %s: %v", userID, err)
		}
	}
}

// SendToUser delivers msg to the user's connections on this instance only.
func (h *Hub) SendToUser(userID uuid.UUID, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(userID, data)
}

// ConnectionCount reports how many sockets the user has open.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Close drops every connection and stops all Redis subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.connections {
		for _, c := range conns {
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			c.conn.Close()
		}
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
		}
	}
	h.connections = make(map[uuid.UUID][]*client)
	h.cancelFuncs = make(map[uuid.UUID]context.CancelFunc)
}
