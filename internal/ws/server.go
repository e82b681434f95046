// Package ws is the websocket transport. It frames client commands
// into room handler calls and fans room events back out over the
// registered connections. All game state lives behind the room
// handlers; this package only tracks who is connected and where.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Thanoche/OneServ/internal/auth"
	"github.com/Thanoche/OneServ/internal/game"
	"github.com/Thanoche/OneServ/internal/models"
)

// Server accepts websocket connections and routes commands to rooms.
type Server struct {
	manager *game.Manager
	issuer  *auth.Issuer
	log     *logrus.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	rooms   map[uuid.UUID]map[uuid.UUID]*client
}

// NewServer wires the transport to a room manager and token issuer.
func NewServer(manager *game.Manager, issuer *auth.Issuer, logger *logrus.Logger) *Server {
	return &Server{
		manager: manager,
		issuer:  issuer,
		log:     logger,
		clients: make(map[uuid.UUID]*client),
		rooms:   make(map[uuid.UUID]map[uuid.UUID]*client),
	}
}

// Handler returns the http handler for the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			s.log.WithError(err).Warn("websocket accept failed")
			return
		}
		c := newClient(conn, s.log)
		go c.writeLoop()
		s.readLoop(r.Context(), c)
	}
}

// readLoop authenticates the connection and then dispatches commands
// until the transport drops.
func (s *Server) readLoop(ctx context.Context, c *client) {
	defer s.dropClient(c)

	if !s.authenticate(ctx, c) {
		return
	}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	for {
		var cmd Command
		if err := wsjson.Read(ctx, c.conn, &cmd); err != nil {
			return
		}
		s.dispatch(c, cmd)
	}
}

// authenticate reads the first command, which must carry either a
// resumable token or a display name.
func (s *Server) authenticate(ctx context.Context, c *client) bool {
	var cmd Command
	if err := wsjson.Read(ctx, c.conn, &cmd); err != nil {
		return false
	}
	if cmd.Type != CmdAuthenticate {
		c.conn.Close(websocket.StatusPolicyViolation, "authenticate first")
		return false
	}
	var p authenticatePayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		c.conn.Close(websocket.StatusPolicyViolation, "bad authenticate payload")
		return false
	}

	switch {
	case p.Token != "":
		id, name, err := s.issuer.ParseToken(p.Token)
		if err != nil {
			c.conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return false
		}
		c.id, c.name = id, name
	case p.Name != "":
		c.id, c.name = uuid.New(), p.Name
	default:
		c.conn.Close(websocket.StatusPolicyViolation, "name or token required")
		return false
	}

	token, err := s.issuer.CreateToken(c.id, c.name)
	if err != nil {
		s.log.WithError(err).Error("token issue failed")
		c.conn.Close(websocket.StatusInternalError, "auth failed")
		return false
	}
	c.enqueue(game.Event{
		Type: game.EventAuthenticated,
		Payload: map[string]interface{}{
			"playerId": c.id.String(),
			"name":     c.name,
			"token":    token,
		},
	})
	s.log.WithFields(logrus.Fields{"player": c.name, "player_id": c.id.String()}).Info("client authenticated")
	return true
}

func (s *Server) dispatch(c *client, cmd Command) {
	switch cmd.Type {
	case CmdCreateRoom:
		s.handleCreateRoom(c, cmd.Payload)
	case CmdJoinRoom:
		s.handleJoinRoom(c, cmd.Payload)
	case CmdStartGame:
		if r := s.roomFor(c, cmd.Payload); r != nil {
			r.HandleStart(c.id)
		}
	case CmdPlayCard:
		s.handlePlayCard(c, cmd.Payload)
	case CmdDrawCards:
		if r := s.roomFor(c, cmd.Payload); r != nil {
			r.HandleDraw(c.id)
		}
	case CmdDeclareLastCard:
		if r := s.roomFor(c, cmd.Payload); r != nil {
			r.HandleDeclareLastCard(c.id)
		}
	case CmdAccuseLastCard:
		if r := s.roomFor(c, cmd.Payload); r != nil {
			r.HandleAccuse(c.id)
		}
	case CmdChatMessage:
		s.handleChat(c, cmd.Payload)
	default:
		c.enqueue(game.Event{Type: game.EventCommandRejected, Reason: game.ReasonBadRequest})
	}
}

func (s *Server) handleCreateRoom(c *client, payload json.RawMessage) {
	var p createRoomPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			c.enqueue(game.Event{Type: game.EventCommandRejected, Reason: game.ReasonBadRequest})
			return
		}
	}
	r := s.manager.CreateRoom(p.MaxPlayers, p.UseBots)
	s.wireRoom(r)
	c.enqueue(game.Event{Type: game.EventRoomCreated, RoomID: r.ID.String()})
	s.joinRoom(c, r)
}

func (s *Server) handleJoinRoom(c *client, payload json.RawMessage) {
	r := s.roomFor(c, payload)
	if r == nil {
		return
	}
	s.joinRoom(c, r)
}

func (s *Server) handlePlayCard(c *client, payload json.RawMessage) {
	var p playCardPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.enqueue(game.Event{Type: game.EventCommandRejected, Reason: game.ReasonBadRequest})
		return
	}
	r := s.lookupRoom(c, p.RoomID)
	if r == nil {
		return
	}
	r.HandlePlay(c.id, p.CardIndices, p.ChosenColor)
}

func (s *Server) handleChat(c *client, payload json.RawMessage) {
	var p chatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.enqueue(game.Event{Type: game.EventCommandRejected, Reason: game.ReasonBadRequest})
		return
	}
	r := s.lookupRoom(c, p.RoomID)
	if r == nil {
		return
	}
	r.HandleChat(c.id, p.Text)
}

// joinRoom hands the player to the room and registers the transport
// membership only once the seat is confirmed, so a rejected joiner
// never lands in the broadcast set. Switching rooms drops the old
// membership.
func (s *Server) joinRoom(c *client, r *game.Room) {
	p := models.NewHuman(c.name, c.conn)
	p.ID = c.id
	if !r.Join(p) {
		return
	}

	s.mu.Lock()
	if c.room != uuid.Nil && c.room != r.ID {
		if members, ok := s.rooms[c.room]; ok {
			delete(members, c.id)
		}
	}
	members, ok := s.rooms[r.ID]
	if !ok {
		members = make(map[uuid.UUID]*client)
		s.rooms[r.ID] = members
	}
	members[c.id] = c
	c.room = r.ID
	s.mu.Unlock()
}

// roomFor resolves the target room from the payload's roomId, falling
// back to the client's current room.
func (s *Server) roomFor(c *client, payload json.RawMessage) *game.Room {
	var p roomPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			c.enqueue(game.Event{Type: game.EventCommandRejected, Reason: game.ReasonBadRequest})
			return nil
		}
	}
	return s.lookupRoom(c, p.RoomID)
}

func (s *Server) lookupRoom(c *client, roomID string) *game.Room {
	s.mu.RLock()
	id := c.room
	s.mu.RUnlock()
	if roomID != "" {
		parsed, err := uuid.Parse(roomID)
		if err != nil {
			c.enqueue(game.Event{Type: game.EventCommandRejected, Reason: game.ReasonBadRequest})
			return nil
		}
		id = parsed
	}
	r, ok := s.manager.GetRoom(id)
	if !ok {
		c.enqueue(game.Event{Type: game.EventCommandRejected, RoomID: roomID, Reason: game.ReasonRoomNotFound})
		return nil
	}
	return r
}

// wireRoom points a freshly created room's callbacks at the transport.
func (s *Server) wireRoom(r *game.Room) {
	roomID := r.ID
	r.BroadcastFn = func(ev game.Event) {
		s.broadcastRoom(roomID, ev)
	}
	r.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.Event) {
		s.sendToPlayer(playerID, ev)
	}
	r.OnRoomEnd = func(room *game.Room) {
		s.manager.RemoveRoom(room.ID)
		s.mu.Lock()
		for _, c := range s.rooms[room.ID] {
			if c.room == room.ID {
				c.room = uuid.Nil
			}
		}
		delete(s.rooms, room.ID)
		s.mu.Unlock()
	}
}

func (s *Server) broadcastRoom(roomID uuid.UUID, ev game.Event) {
	s.mu.RLock()
	members := make([]*client, 0, len(s.rooms[roomID]))
	for _, c := range s.rooms[roomID] {
		members = append(members, c)
	}
	s.mu.RUnlock()
	for _, c := range members {
		c.enqueue(ev)
	}
}

func (s *Server) sendToPlayer(playerID uuid.UUID, ev game.Event) {
	s.mu.RLock()
	c := s.clients[playerID]
	s.mu.RUnlock()
	if c != nil {
		c.enqueue(ev)
	}
}

// dropClient tears down a connection and informs its room.
func (s *Server) dropClient(c *client) {
	c.close()
	if c.id == uuid.Nil {
		return
	}
	s.mu.Lock()
	delete(s.clients, c.id)
	roomID := c.room
	if members, ok := s.rooms[roomID]; ok {
		delete(members, c.id)
	}
	s.mu.Unlock()
	if roomID != uuid.Nil {
		if r, ok := s.manager.GetRoom(roomID); ok {
			r.HandleDisconnect(c.id)
		}
	}
	s.log.WithField("player", c.name).Info("client dropped")
}
