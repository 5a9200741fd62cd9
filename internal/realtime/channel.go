package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"betpanel-client/internal/models"
)

// Handler receives each distinct incoming message event.
type Handler func(models.Message)

// ErrAlreadyOpen is returned when Open is called on a channel whose
// connection is still up.
var ErrAlreadyOpen = errors.New("realtime: channel already open")

// Channel is a single-use push connection. Connected reports true only while
// the link is open; there is no automatic reconnection — once the link drops
// the channel stays down until the owner opens a fresh one. The handler sits
// behind an indirection cell so the latest handler runs even for a connection
// established before SetHandler was called again.
type Channel struct {
	url   string
	token string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	handler   Handler
}

func NewChannel(url, token string) *Channel {
	return &Channel{url: url, token: token}
}

// SetHandler rebinds the message dispatch target. May be called before or
// after Open.
func (c *Channel) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Connected is false before the dial completes, after any error, and after
// Close.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Open dials the push endpoint and starts the read loop. One connection per
// channel lifetime; to retry after a drop, close and open a new channel.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.mu.Unlock()

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	log.Debug().Str("url", c.url).Msg("realtime channel open")
	go c.readLoop(conn)
	return nil
}

// Close tears the connection down and nils it so nothing leaks across
// navigation. Safe to call on a never-opened or already-closed channel.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// event is the wire envelope. Only message.new is acted on; push transports
// carry heterogeneous event types and the rest are dropped without error.
type event struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.connected = false
			}
			c.mu.Unlock()
			_ = conn.Close()
			log.Debug().Err(err).Msg("realtime channel closed")
			return
		}

		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Type != "message.new" {
			continue
		}
		var msg models.Message
		if err := json.Unmarshal(ev.Message, &msg); err != nil {
			continue
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(msg)
		}
	}
}
