package manager

import (
	"encoding/json"
	"sync"

	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/engine"
	"UpDownRiver/internal/game/player"
	"UpDownRiver/internal/game/table"
)

// Room is one seated table and the engine running its game. Player actions
// are applied one at a time by the room's action loop.
type Room struct {
	Table  *table.Table
	Engine *engine.Engine

	seats     map[string]*player.Seat // address -> seat
	actions   chan action
	done      chan struct{}
	closeOnce sync.Once
}

type action struct {
	from  string
	event string
	data  json.RawMessage
}

func newRoom(t *table.Table) *Room {
	r := &Room{
		Table:   t,
		seats:   make(map[string]*player.Seat, len(t.Players)),
		actions: make(chan action, 32), // 防止阻塞 Hub 分发
		done:    make(chan struct{}),
	}
	for _, addr := range t.Players {
		r.seats[addr] = player.New(addr)
	}
	return r
}

func (r *Room) participants() []engine.Participant {
	ps := make([]engine.Participant, 0, len(r.Table.Players))
	for _, addr := range r.Table.Players {
		ps = append(ps, r.seats[addr])
	}
	return ps
}

func (r *Room) close() bool {
	closed := false
	r.closeOnce.Do(func() {
		close(r.done)
		closed = true
	})
	return closed
}

// visibleHands filters hands down to what viewer may see in round.
func visibleHands(hands map[string][]card.Card, viewer string, round int) map[string][]card.Card {
	out := make(map[string][]card.Card, len(hands))
	for id, h := range hands {
		if id == viewer && !engine.CanSeeOwnCards(round) {
			continue
		}
		if id != viewer && !engine.CanSeeOthersCards(round) {
			continue
		}
		out[id] = h
	}
	return out
}
