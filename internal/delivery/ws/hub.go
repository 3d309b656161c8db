package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/websocket"

	"tamaqBack/internal/models"
)

const (
	writeWait  = 20 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Event names pushed through the hub.
const (
	EventOrderStatus     = "ORDER_STATUS"
	EventNewStoreRequest = "NEW_STORE_REQUEST"
)

// Logger defines minimal logging interface required by the hub.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// OrderHub fans order events out to connected clients. Delivery is
// at-most-once: a client that is disconnected at publish time simply
// misses the message, and a later order read is authoritative.
type OrderHub struct {
	secret string
	logger Logger

	upgrader websocket.Upgrader

	mu        sync.RWMutex
	conns     map[int64]*websocket.Conn
	locks     map[int64]*sync.Mutex
	storeSubs map[int64]map[int64]struct{}
}

// NewOrderHub constructs the hub. secret is the HMAC key used to verify
// bearer tokens during the upgrade handshake.
func NewOrderHub(secret string, logger Logger) *OrderHub {
	return &OrderHub{
		secret: secret,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:     make(map[int64]*websocket.Conn),
		locks:     make(map[int64]*sync.Mutex),
		storeSubs: make(map[int64]map[int64]struct{}),
	}
}

// ServeWS authenticates and upgrades a subscriber connection. The bearer
// token is checked before the upgrade; unauthenticated attempts get 401
// and no subscription is ever established. An optional store_id query
// parameter joins the connection to that store's channel.
func (h *OrderHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authenticate(r)
	if err != nil {
		http.Error(w, "invalid bearer token", http.StatusUnauthorized)
		return
	}

	var storeID int64
	if raw := r.URL.Query().Get("store_id"); raw != "" {
		storeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid store_id", http.StatusBadRequest)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("order hub: ws upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	if old, ok := h.conns[userID]; ok {
		_ = old.Close()
	}
	h.conns[userID] = conn
	if _, ok := h.locks[userID]; !ok {
		h.locks[userID] = &sync.Mutex{}
	}
	if storeID != 0 {
		if _, ok := h.storeSubs[storeID]; !ok {
			h.storeSubs[storeID] = make(map[int64]struct{})
		}
		h.storeSubs[storeID][userID] = struct{}{}
	}
	h.mu.Unlock()

	h.logger.Infof("order hub: user %d connected (store channel %d)", userID, storeID)

	go h.pingLoop(userID, conn)
	go h.readLoop(userID, conn)
}

func (h *OrderHub) authenticate(r *http.Request) (int64, error) {
	raw := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimPrefix(auth, "Bearer ")
	} else if v := r.URL.Query().Get("token"); v != "" {
		raw = v
	}
	if raw == "" {
		return 0, fmt.Errorf("missing bearer token")
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.secret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	return int64(claims.UserID), nil
}

// Broadcast delivers an event to every connected subscriber. Fire and
// forget: there is no queueing or replay for absent subscribers.
func (h *OrderHub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Errorf("order hub: marshal failed: %v", err)
		return
	}
	h.mu.RLock()
	ids := make([]int64, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	for _, id := range ids {
		h.safeWrite(id, func(conn *websocket.Conn) error {
			return conn.WriteMessage(websocket.TextMessage, data)
		})
	}
}

// BroadcastToStore delivers an event only to subscribers joined to the
// store's channel.
func (h *OrderHub) BroadcastToStore(storeID int64, event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Errorf("order hub: marshal failed: %v", err)
		return
	}
	h.mu.RLock()
	ids := make([]int64, 0, len(h.storeSubs[storeID]))
	for id := range h.storeSubs[storeID] {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	for _, id := range ids {
		h.safeWrite(id, func(conn *websocket.Conn) error {
			return conn.WriteMessage(websocket.TextMessage, data)
		})
	}
}

func (h *OrderHub) pingLoop(id int64, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.RLock()
		alive := h.conns[id] == conn
		h.mu.RUnlock()
		if !alive {
			return
		}
		h.safeWrite(id, func(c *websocket.Conn) error {
			return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		})
	}
}

func (h *OrderHub) readLoop(id int64, conn *websocket.Conn) {
	defer h.closeConn(id, conn)

	conn.SetReadLimit(16 << 10)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	conn.SetCloseHandler(func(code int, text string) error {
		h.logger.Infof("order hub: user %d closed ws (%d: %s)", id, code, text)
		h.closeConn(id, conn)
		return nil
	})

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt == websocket.TextMessage {
			trimmed := strings.TrimSpace(string(message))
			if strings.EqualFold(trimmed, "ping") {
				// gorilla allows one writer at a time, so the reply must
				// take the same per-conn lock as Broadcast and pingLoop.
				h.safeWrite(id, func(c *websocket.Conn) error {
					return c.WriteMessage(websocket.TextMessage, []byte("pong"))
				})
			}
		}
	}
}

func (h *OrderHub) closeConn(id int64, conn *websocket.Conn) {
	_ = conn.Close()
	h.mu.Lock()
	if current, ok := h.conns[id]; ok && current == conn {
		delete(h.conns, id)
		delete(h.locks, id)
		for storeID, subs := range h.storeSubs {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.storeSubs, storeID)
			}
		}
	}
	h.mu.Unlock()
}

func (h *OrderHub) safeWrite(id int64, fn func(*websocket.Conn) error) {
	h.mu.RLock()
	conn := h.conns[id]
	mu := h.locks[id]
	h.mu.RUnlock()
	if conn == nil || mu == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := fn(conn); err != nil {
		h.logger.Errorf("order hub: user %d write failed: %v", id, err)
		h.closeConn(id, conn)
	}
}
