package websocket

import (
	"sync"
	"time"

	"UpDownRiver/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 << 10
	sendBuffer     = 32
)

// Client is one player's connection. Outgoing messages queue on Send; the
// hub closes Send when the client is replaced or leaves.
type Client struct {
	Address string
	Conn    *websocket.Conn
	Send    chan OutgoingMessage
	Hub     *Hub

	log       *log.Logger
	closeOnce sync.Once
}

func newClient(hub *Hub, addr string, conn *websocket.Conn) *Client {
	return &Client{
		Address: addr,
		Conn:    conn,
		Send:    make(chan OutgoingMessage, sendBuffer),
		Hub:     hub,
		log:     utils.Named("ws").With("address", addr),
	}
}

// serve registers c and runs its read and write loops until either side
// hangs up.
func (c *Client) serve() {
	c.Hub.register <- c
	go c.writeLoop()
	go c.readLoop()
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.Hub.leave(c)
		_ = c.Conn.Close()
	})
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.shutdown()
	}()

	for {
		var err error
		select {
		case msg, open := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			err = c.Conn.WriteJSON(msg)
		case <-ping.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = c.Conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			c.log.Debug("write failed", "err", err)
			return
		}
	}
}

func (c *Client) readLoop() {
	defer c.shutdown()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg IncomingMessage
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("connection lost", "err", err)
			}
			return
		}
		// the sender is whoever owns the connection, not what the payload claims
		msg.From = c.Address
		c.Hub.receive(msg)
	}
}
