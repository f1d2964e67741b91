package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newConnPair dials a real websocket against a throwaway server and returns
// both ends: the server side goes into the hub, the client side observes
// what the hub does to it.
func newConnPair(t *testing.T) (serverSide, clientSide *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { clientConn.Close() })

	return <-serverConns, clientConn
}

func TestAuthenticateClientReplacesExistingSession(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	firstServer, firstClient := newConnPair(t)
	secondServer, _ := newConnPair(t)

	first := &Client{Conn: firstServer}
	second := &Client{Conn: secondServer}

	require.NoError(t, hub.AuthenticateClient(first, userID, "user"))
	require.NoError(t, hub.AuthenticateClient(second, userID, "user"))

	hub.mu.RLock()
	current := hub.clients[userID]
	hub.mu.RUnlock()
	require.Same(t, second, current)

	// The displaced session's socket must be closed, not leaked.
	firstClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := firstClient.ReadMessage()
	require.Error(t, err, "first connection should have been closed by the hub")
}

func TestAuthenticateClientIsIdempotentForSameClient(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	serverConn, clientConn := newConnPair(t)
	client := &Client{Conn: serverConn}

	require.NoError(t, hub.AuthenticateClient(client, userID, "admin"))
	require.NoError(t, hub.AuthenticateClient(client, userID, "admin"))

	// Re-authenticating the same session must not close its own socket.
	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte("ping")))
	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := clientConn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "ping", string(msg))
}
