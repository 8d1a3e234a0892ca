package impl

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/routelab/nethub/state"
)

// Client is one connected observer: a websocket plus its own console
// session. Outbound frames go through a buffered send channel drained by
// writePump; SafeSend never blocks and never panics, so the broadcast path
// cannot be stalled or crashed by a dying connection.
type Client struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	console  *Console
	commands state.CommandSink
	log      *slog.Logger

	closeOnce sync.Once
	closed    atomic.Bool
}

// SafeSend queues data for delivery. It reports false when the client is
// closed or its buffer is full, which callers treat as delivery failure.
func (c *Client) SafeSend(data []byte) (sent bool) {
	// recover covers the race between the closed check and the send
	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.send)
	})
}

// sendFrame delivers a frame to this session only, bypassing the broadcast
// set. Console echo must not leak to other observers.
func (c *Client) sendFrame(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.SafeSend(data)
}

func (c *Client) sendText(text string) {
	c.sendFrame(Frame{Type: "log", Data: text})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Debug("observer read error", "observer", c.id, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame struct {
			Type string `json:"type"`
			Data string `json:"data"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type == "command" {
			c.applyEffects(c.console.Feed(frame.Data))
		}
	}
}

func (c *Client) applyEffects(effects []Effect) {
	for _, eff := range effects {
		if eff.IsDispatch() {
			if c.commands != nil && c.commands.Submit(eff.Target, eff.Command) {
				c.sendText(fmt.Sprintf("\r\n[System] Queued command for %s: %s\r\n", eff.Target, eff.Command))
			} else {
				c.sendText("\r\n[System] Invalid command.\r\n")
			}
			continue
		}
		if eff.Echo != "" {
			c.sendText(eff.Echo)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed this client
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
