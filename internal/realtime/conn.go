package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Conn represents ONE client websocket. The registry stores these wrappers,
// never the raw socket; the live transport is only touched at send time.
type Conn struct {
	id   uuid.UUID
	user uuid.UUID
	ws   *websocket.Conn
	reg  *Registry
	disp *Dispatcher

	mu     sync.Mutex
	closed bool
	out    chan []byte
}

func (c *Conn) ID() uuid.UUID     { return c.id }
func (c *Conn) UserID() uuid.UUID { return c.user }

// Send queues payload for delivery. Delivery is best-effort: a full buffer
// drops the frame and a connection mid-teardown is skipped, since a broadcast
// may hold a registry snapshot that still names this connection.
func (c *Conn) Send(payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.out <- b:
	default:
		sendsDropped.Inc()
	}
	return nil
}

// ----------------------------------------------------------
// private loops
// ----------------------------------------------------------

// readLoop is the only reader of the socket, so messages from one connection
// are always handled sequentially, in arrival order.
func (c *Conn) readLoop() {
	defer c.close()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return // closed
		}
		c.disp.Handle(context.Background(), c, raw)
	}
}

func (c *Conn) writeLoop() {
	tick := time.NewTicker(25 * time.Second)
	defer tick.Stop()

	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = c.ws.WriteMessage(websocket.TextMessage, msg)

		case <-tick.C:
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ----------------------------------------------------------

func (c *Conn) close() {
	c.reg.RemoveConn(c)
	c.mu.Lock()
	c.closed = true
	close(c.out)
	c.mu.Unlock()
	_ = c.ws.Close()
	activeConnections.Dec()
	log.Debug().Str("conn_id", c.id.String()).Str("user_id", c.user.String()).Msg("connection closed")
}

// ------------------------------------------------------------------
// Helper – called from the HTTP upgrader
// ------------------------------------------------------------------

func NewConn(user uuid.UUID, ws *websocket.Conn, reg *Registry, disp *Dispatcher) *Conn {
	conn := &Conn{
		id:   uuid.New(),
		user: user,
		ws:   ws,
		reg:  reg,
		disp: disp,
		out:  make(chan []byte, 16),
	}
	activeConnections.Inc()

	go conn.writeLoop()
	go conn.readLoop()

	return conn
}
