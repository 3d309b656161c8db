package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/websocket"

	"tamaqBack/internal/models"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

func signedToken(t *testing.T, secret string, userID uint) string {
	t.Helper()
	claims := models.Claims{
		UserID: userID,
		Role:   "store",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func dialHub(t *testing.T, h *OrderHub, secret string, userID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + signedToken(t, secret, userID)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// The handler registers the connection after the upgrade completes, so
// a successful dial does not yet guarantee the hub sees the subscriber.
func waitForConns(t *testing.T, h *OrderHub, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		n := len(h.conns)
		h.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d connections", want)
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	h := NewOrderHub("secret", nopLogger{})

	// Must be a no-op: nothing queued, nothing panics.
	h.Broadcast(EventOrderStatus, map[string]string{"orderId": "abc"})
	h.BroadcastToStore(42, EventOrderStatus, map[string]string{"orderId": "abc"})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.conns) != 0 || len(h.storeSubs) != 0 {
		t.Fatal("broadcast must not register subscribers")
	}
}

// The pong reply shares the connection with Broadcast and pingLoop,
// so it has to take the same per-conn write lock. Run them together
// under -race to catch any write that slips past it.
func TestPongRepliesSerializeWithBroadcast(t *testing.T) {
	const secret = "secret"
	h := NewOrderHub(secret, nopLogger{})
	conn := dialHub(t, h, secret, 7)
	waitForConns(t, h, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		h.Broadcast(EventOrderStatus, map[string]string{"orderId": "ord-1"})
	}
	<-done

	var gotPong, gotEvent bool
	deadline := time.Now().Add(3 * time.Second)
	for !(gotPong && gotEvent) {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("set deadline: %v", err)
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v (pong=%v event=%v)", err, gotPong, gotEvent)
		}
		switch {
		case string(msg) == "pong":
			gotPong = true
		case strings.Contains(string(msg), EventOrderStatus):
			gotEvent = true
		}
	}
}
