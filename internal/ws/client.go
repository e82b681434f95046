package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Thanoche/OneServ/internal/game"
)

const (
	sendQueueSize = 32
	writeTimeout  = 5 * time.Second
)

// client is one websocket connection. Writes go through a buffered
// queue drained by a single goroutine, so broadcast fan-out never
// blocks a room's lock on a slow consumer.
type client struct {
	id   uuid.UUID
	name string
	conn *websocket.Conn

	room uuid.UUID

	send      chan game.Event
	done      chan struct{}
	closeOnce sync.Once

	log *logrus.Entry
}

func newClient(conn *websocket.Conn, logger *logrus.Logger) *client {
	return &client{
		conn: conn,
		send: make(chan game.Event, sendQueueSize),
		done: make(chan struct{}),
		log:  logger.WithField("component", "ws"),
	}
}

// enqueue queues an event for delivery. Events to a client whose queue
// is full are dropped rather than stalling the sender.
func (c *client) enqueue(ev game.Event) {
	select {
	case c.send <- ev:
	case <-c.done:
	default:
		c.log.WithFields(logrus.Fields{"player": c.name, "event": ev.Type}).Warn("send queue full, dropping event")
	}
}

// writeLoop drains the send queue until the connection goes away.
func (c *client) writeLoop() {
	for {
		select {
		case ev := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := wsjson.Write(ctx, c.conn, ev)
			cancel()
			if err != nil {
				c.log.WithError(err).WithField("player", c.name).Debug("write failed")
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "bye")
	})
}
