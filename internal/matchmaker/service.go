package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UpDownRiver/internal/game/engine"
	"UpDownRiver/internal/game/table"
	"UpDownRiver/internal/utils"
	"UpDownRiver/internal/websocket"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrInvalidSeats   = errors.New("invalid seat count")
	ErrAlreadySeated  = errors.New("player already seated")
	ErrMissingAddress = errors.New("missing address")
)

type HubBroadcaster interface {
	BroadcastToPlayers(addrs []string, msg websocket.OutgoingMessage)
}

type Service struct {
	repo         Repo
	playerTTL    time.Duration
	hub          HubBroadcaster
	defaultPool  string
	log          *log.Logger
	OnTableReady func(*table.Table) // 成桌回调：交给 GameManager
}

func NewService(repo Repo, playerTTL time.Duration, hub HubBroadcaster, defaultPool string) *Service {
	if defaultPool == "" {
		defaultPool = "default"
	}
	return &Service{
		repo:        repo,
		playerTTL:   playerTTL,
		hub:         hub,
		defaultPool: defaultPool,
		log:         utils.Named("matchmaker"),
	}
}

// Join 入队并尝试立即成桌（随机）。若可成桌，返回桌子；否则返回排队中。
func (s *Service) Join(ctx context.Context, req JoinRequest) (*table.Table, bool, error) {
	if req.Address == "" {
		return nil, false, ErrMissingAddress
	}
	if req.Seats < engine.MinPlayers || req.Seats > engine.MaxPlayers() {
		return nil, false, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidSeats, req.Seats, engine.MinPlayers, engine.MaxPlayers())
	}
	if req.Pool == "" {
		req.Pool = s.defaultPool
	}

	tableID, err := s.repo.TableOf(ctx, req.Address)
	if err != nil {
		return nil, false, err
	}
	if tableID != "" {
		return nil, false, fmt.Errorf("%w: %s is at table %s", ErrAlreadySeated, req.Address, tableID)
	}

	if err := s.repo.Enqueue(ctx, req.Pool, req.Seats, req.Address, s.playerTTL); err != nil {
		return nil, false, err
	}
	addrs, err := s.repo.PopN(ctx, req.Pool, req.Seats, req.Seats)
	if err != nil {
		return nil, false, err
	}
	if len(addrs) < req.Seats {
		return nil, true, nil // queued
	}

	t := &table.Table{
		ID:        uuid.NewString(),
		Pool:      req.Pool,
		Seats:     req.Seats,
		Players:   addrs,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveTable(ctx, t, s.playerTTL); err != nil {
		s.log.Warn("save table", "table", t.ID, "err", err)
	}
	s.log.Info("table ready", "table", t.ID, "pool", t.Pool, "players", t.Players)

	s.hub.BroadcastToPlayers(addrs, websocket.OutgoingMessage{
		Event: "matched",
		Data: map[string]any{
			"tableId": t.ID,
			"pool":    t.Pool,
			"seats":   t.Seats,
			"players": t.Players,
		},
	})
	if s.OnTableReady != nil {
		go s.OnTableReady(t)
	}
	return t, false, nil
}

func (s *Service) Cancel(ctx context.Context, address string) error {
	return s.repo.Remove(ctx, address)
}

// Release frees the players of a finished table so they can queue again.
func (s *Service) Release(ctx context.Context, t *table.Table) error {
	s.log.Info("table released", "table", t.ID)
	return s.repo.ReleaseTable(ctx, t)
}
