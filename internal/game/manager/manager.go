package manager

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/engine"
	"UpDownRiver/internal/game/table"
	"UpDownRiver/internal/utils"
	"UpDownRiver/internal/websocket"

	"github.com/charmbracelet/log"
)

var (
	ErrRoomExists = errors.New("room already exists")
	ErrNotSeated  = errors.New("not seated at a table")
	ErrBusy       = errors.New("too many pending actions")
	ErrBadPayload = errors.New("bad payload")
	ErrUnknownMsg = errors.New("unknown event")
)

type Option func(*GameManager)

// WithSeed makes every game deal from the same seed. Zero keeps the default
// time-seeded shuffle.
func WithSeed(seed int64) Option {
	return func(m *GameManager) { m.seed = seed }
}

func WithFollowSuit(on bool) Option {
	return func(m *GameManager) { m.followSuit = on }
}

// GameManager 管理所有对局
type GameManager struct {
	mu           sync.RWMutex
	rooms        map[string]*Room  // tableID → room
	playerToRoom map[string]string // player address → tableID
	hub          websocket.HubInterface
	log          *log.Logger

	seed       int64
	followSuit bool

	// OnTableClosed is called once a room's game is over and the room is gone.
	OnTableClosed func(*table.Table)
}

func NewGameManager(hub websocket.HubInterface, opts ...Option) *GameManager {
	m := &GameManager{
		rooms:        make(map[string]*Room),
		playerToRoom: make(map[string]string),
		hub:          hub,
		log:          utils.Named("manager"),
		followSuit:   true,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// StartTable 创建房间，发第一轮牌并启动动作循环
func (m *GameManager) StartTable(t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrRoomExists, t.ID)
	}
	for _, addr := range t.Players {
		if id, ok := m.playerToRoom[addr]; ok {
			return fmt.Errorf("%s is playing at %s", addr, id)
		}
	}

	r := newRoom(t)
	opts := []engine.Option{
		engine.WithID(t.ID),
		engine.WithFollowSuit(m.followSuit),
		engine.WithNotifier(engine.NotifierFunc(func(ev engine.Event) { m.relay(r, ev) })),
	}
	if m.seed != 0 {
		opts = append(opts, engine.WithSeed(m.seed))
	}
	r.Engine = engine.New(opts...)

	if err := r.Engine.SetParticipants(r.participants()); err != nil {
		return err
	}
	if err := r.Engine.StartGame(); err != nil {
		return err
	}

	m.rooms[t.ID] = r
	// ⭐ 建立玩家地址 → 房间 ID 映射
	for _, addr := range t.Players {
		m.playerToRoom[addr] = t.ID
	}
	go m.actionLoop(r)

	m.log.Info("room started", "table", t.ID, "players", t.Players)
	return nil
}

// HandlePlayerMessage 统一入口（来自 Hub.OnIncoming）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	m.mu.RLock()
	r := m.rooms[m.playerToRoom[msg.From]]
	m.mu.RUnlock()

	if r == nil {
		m.reject(msg.From, msg.Event, ErrNotSeated)
		return
	}

	select {
	case r.actions <- action{from: msg.From, event: msg.Event, data: msg.Data}:
	case <-r.done:
		m.reject(msg.From, msg.Event, ErrNotSeated)
	default:
		m.reject(msg.From, msg.Event, ErrBusy)
	}
}

// View returns the public view of a running table.
func (m *GameManager) View(tableID string) (engine.View, bool) {
	m.mu.RLock()
	r := m.rooms[tableID]
	m.mu.RUnlock()
	if r == nil {
		return engine.View{}, false
	}
	return r.Engine.View().Public(), true
}

// Rooms is the number of running tables.
func (m *GameManager) Rooms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// 动作循环：按顺序处理玩家操作
func (m *GameManager) actionLoop(r *Room) {
	for {
		select {
		case a := <-r.actions:
			if err := m.handle(r, a); err != nil {
				m.reject(a.from, a.event, err)
			}
		case <-r.done:
			return
		}
	}
}

type bidPayload struct {
	Bid *int `json:"bid"`
}

type playPayload struct {
	Suit card.Suit `json:"suit"`
	Rank card.Rank `json:"rank"`
}

type chatPayload struct {
	Text string `json:"text"`
}

func (m *GameManager) handle(r *Room, a action) error {
	seat := r.seats[a.from]

	switch a.event {
	case "bid":
		var p bidPayload
		if err := json.Unmarshal(a.data, &p); err != nil || p.Bid == nil {
			return ErrBadPayload
		}
		return r.Engine.PlaceBid(seat, *p.Bid)

	case "play":
		var p playPayload
		if err := json.Unmarshal(a.data, &p); err != nil {
			return ErrBadPayload
		}
		c, err := card.New(p.Rank, p.Suit)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return r.Engine.PlayCard(seat, c)

	case "state":
		m.hub.SendToPlayer(a.from, websocket.OutgoingMessage{Event: "state", Data: privateView(r.Engine.View(), a.from)})
		return nil

	case "chat":
		var p chatPayload
		if err := json.Unmarshal(a.data, &p); err != nil || p.Text == "" {
			return ErrBadPayload
		}
		// 桌内聊天广播
		m.hub.BroadcastToPlayers(r.Table.Players, websocket.OutgoingMessage{
			Event: "chat",
			Data:  map[string]any{"from": a.from, "text": p.Text},
		})
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownMsg, a.event)
}

// relay forwards engine events to the table.
func (m *GameManager) relay(r *Room, ev engine.Event) {
	switch ev.Kind {
	case engine.EventRoundDealt:
		for _, addr := range r.Table.Players {
			m.hub.SendToPlayer(addr, websocket.OutgoingMessage{
				Event: string(ev.Kind),
				Data: map[string]any{
					"round":          ev.Round,
					"cards":          engine.CardsPerRound(ev.Round),
					"trump":          ev.Trump,
					"canSeeOwnCards": engine.CanSeeOwnCards(ev.Round),
					"hands":          visibleHands(ev.Hands, addr, ev.Round),
				},
			})
		}

	case engine.EventGameComplete:
		m.hub.BroadcastToPlayers(r.Table.Players, websocket.OutgoingMessage{Event: string(ev.Kind), Data: ev})
		m.closeRoom(r)

	default:
		m.hub.BroadcastToPlayers(r.Table.Players, websocket.OutgoingMessage{Event: string(ev.Kind), Data: ev})
	}
}

func (m *GameManager) closeRoom(r *Room) {
	if !r.close() {
		return
	}
	m.mu.Lock()
	delete(m.rooms, r.Table.ID)
	for _, addr := range r.Table.Players {
		if m.playerToRoom[addr] == r.Table.ID {
			delete(m.playerToRoom, addr)
		}
	}
	m.mu.Unlock()

	m.log.Info("room closed", "table", r.Table.ID)
	if m.OnTableClosed != nil {
		go m.OnTableClosed(r.Table)
	}
}

func (m *GameManager) reject(addr, event string, err error) {
	m.log.Debug("action rejected", "address", addr, "event", event, "err", err)
	m.hub.SendToPlayer(addr, websocket.OutgoingMessage{
		Event: "error",
		Data:  map[string]any{"event": event, "error": err.Error()},
	})
}

func privateView(v engine.View, viewer string) engine.View {
	v.Hands = visibleHands(v.Hands, viewer, v.Round)
	return v
}
