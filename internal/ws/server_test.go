package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thanoche/OneServ/internal/auth"
	"github.com/Thanoche/OneServ/internal/game"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testServer() (*Server, *auth.Issuer) {
	logger := testLogger()
	m := game.NewManager(logger)
	m.BotDelay = time.Hour
	m.ChallengeWindow = time.Hour
	issuer := auth.NewIssuer("test-secret", time.Hour)
	return NewServer(m, issuer, logger), issuer
}

// registeredClient fabricates an authenticated client without a socket.
// Events pile up in its send queue for inspection.
func registeredClient(s *Server, name string) *client {
	c := newClient(nil, testLogger())
	c.id = uuid.New()
	c.name = name
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	return c
}

func drainEvents(c *client) []game.Event {
	var out []game.Event
	for {
		select {
		case ev := <-c.send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestHandshakeRequiresAuthenticate(t *testing.T) {
	s, _ := testServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv.URL), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, Command{Type: CmdCreateRoom}))

	var ev game.Event
	err = wsjson.Read(ctx, conn, &ev)
	assert.Error(t, err, "connection must close before authenticating")
}

func TestHandshakeIssuesToken(t *testing.T) {
	s, issuer := testServer()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv.URL), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, Command{
		Type:    CmdAuthenticate,
		Payload: json.RawMessage(`{"name":"alice"}`),
	}))

	var ev game.Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, game.EventAuthenticated, ev.Type)
	token, _ := ev.Payload["token"].(string)
	require.NotEmpty(t, token)

	id, name, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.Equal(t, ev.Payload["playerId"], id.String())
}

func TestRejectedJoinStaysOutOfBroadcastSet(t *testing.T) {
	s, _ := testServer()
	r := s.manager.CreateRoom(2, false)
	s.wireRoom(r)

	a := registeredClient(s, "alice")
	b := registeredClient(s, "bob")
	late := registeredClient(s, "carol")

	s.joinRoom(a, r)
	s.joinRoom(b, r)
	s.joinRoom(late, r)

	s.mu.RLock()
	_, member := s.rooms[r.ID][late.id]
	lateRoom := late.room
	s.mu.RUnlock()
	assert.False(t, member, "rejected joiner must not be a room member")
	assert.Equal(t, uuid.Nil, lateRoom)

	evs := drainEvents(late)
	require.Len(t, evs, 1)
	assert.Equal(t, game.EventCommandRejected, evs[0].Type)
	assert.Equal(t, game.ReasonRoomFull, evs[0].Reason)

	// Subsequent room traffic must not reach the rejected joiner.
	drainEvents(a)
	drainEvents(b)
	r.HandleChat(a.id, "hello")
	assert.Empty(t, drainEvents(late))
	assert.NotEmpty(t, drainEvents(b))
}

func TestSwitchingRoomsDropsOldMembership(t *testing.T) {
	s, _ := testServer()
	r1 := s.manager.CreateRoom(4, false)
	s.wireRoom(r1)
	r2 := s.manager.CreateRoom(4, false)
	s.wireRoom(r2)

	a := registeredClient(s, "alice")
	s.joinRoom(a, r1)
	s.joinRoom(a, r2)

	s.mu.RLock()
	_, inOld := s.rooms[r1.ID][a.id]
	_, inNew := s.rooms[r2.ID][a.id]
	room := a.room
	s.mu.RUnlock()
	assert.False(t, inOld)
	assert.True(t, inNew)
	assert.Equal(t, r2.ID, room)
}

func TestClientSendQueueOrderAndOverflow(t *testing.T) {
	c := newClient(nil, testLogger())

	for i := 0; i < sendQueueSize+5; i++ {
		c.enqueue(game.Event{Type: game.EventChatMessage, Reason: fmt.Sprintf("%d", i)})
	}
	evs := drainEvents(c)
	require.Len(t, evs, sendQueueSize, "overflow must drop, not block")
	for i, ev := range evs {
		assert.Equal(t, fmt.Sprintf("%d", i), ev.Reason, "delivery preserves enqueue order")
	}
}
