package websocket

import (
	"sync"

	"UpDownRiver/internal/utils"
)

// HubInterface is what the game layer needs to reach connected players.
type HubInterface interface {
	BroadcastToPlayers(addrs []string, msg OutgoingMessage)
	SendToPlayer(addr string, msg OutgoingMessage)
	ClientByAddress(addr string) (*Client, bool)
	Close()
}

// Hub owns the set of connected clients. Run serialises registration and
// fan-out; incoming messages are handed to OnIncoming from a separate
// goroutine so handlers may broadcast without blocking the hub.
type Hub struct {
	clients    map[string]*Client // address -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	sendOne    chan sendReq
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	quit       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
}

type broadcastReq struct {
	Addresses []string
	Message   OutgoingMessage
}

type sendReq struct {
	Address string
	Message OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq),
		sendOne:    make(chan sendReq),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	logger := utils.Named("hub")
	logger.Info("hub started")
	go h.dispatch()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.Address]; ok && old != c {
				close(old.Send) // a newer connection replaces the old one
			}
			h.clients[c.Address] = c
			n := len(h.clients)
			h.mu.Unlock()
			logger.Debug("register", "address", c.Address, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.Address]; ok && cur == c {
				delete(h.clients, c.Address)
				close(c.Send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logger.Debug("unregister", "address", c.Address, "clients", n)

		case req := <-h.broadcast:
			h.mu.RLock()
			for _, addr := range req.Addresses {
				if c, ok := h.clients[addr]; ok {
					h.deliver(c, req.Message)
				}
			}
			h.mu.RUnlock()

		case req := <-h.sendOne:
			h.mu.RLock()
			if c, ok := h.clients[req.Address]; ok {
				h.deliver(c, req.Message)
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for addr, c := range h.clients {
				close(c.Send)
				delete(h.clients, addr)
			}
			h.mu.Unlock()
			logger.Info("hub stopped")
			return
		}
	}
}

// deliver drops the message when the client's buffer is full.
func (h *Hub) deliver(c *Client, msg OutgoingMessage) {
	select {
	case c.Send <- msg:
	default:
		utils.Named("hub").Warn("send buffer full, dropping", "address", c.Address, "event", msg.Event)
	}
}

func (h *Hub) dispatch() {
	for {
		select {
		case msg := <-h.incoming:
			if h.OnIncoming != nil {
				h.OnIncoming(msg)
			}
		case <-h.quit:
			return
		}
	}
}

// BroadcastToPlayers sends msg to every connected address in addrs.
func (h *Hub) BroadcastToPlayers(addrs []string, msg OutgoingMessage) {
	select {
	case h.broadcast <- broadcastReq{Addresses: addrs, Message: msg}:
	case <-h.quit:
	}
}

// SendToPlayer sends msg to a single address, if connected.
func (h *Hub) SendToPlayer(addr string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{Address: addr, Message: msg}:
	case <-h.quit:
	}
}

func (h *Hub) ClientByAddress(addr string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[addr]
	return c, ok
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) receive(msg IncomingMessage) {
	select {
	case h.incoming <- msg:
	case <-h.quit:
	}
}
