package matchmaker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"UpDownRiver/internal/game/table"
)

// memRepo 内存实现：单进程部署与测试用，忽略 TTL
type memRepo struct {
	mu     sync.Mutex
	queues map[string]map[string]struct{} // key -> set(address)
	queued map[string]string              // address -> key
	tables map[string]*table.Table
	seated map[string]string // address -> table id
}

func NewMemoryRepo() Repo {
	return &memRepo{
		queues: make(map[string]map[string]struct{}),
		queued: make(map[string]string),
		tables: make(map[string]*table.Table),
		seated: make(map[string]string),
	}
}

func (m *memRepo) Enqueue(_ context.Context, pool string, seats int, address string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := queueKey(pool, seats)
	if _, ok := m.queues[key]; !ok {
		m.queues[key] = make(map[string]struct{})
	}
	m.queues[key][address] = struct{}{}
	m.queued[address] = key
	return nil
}

func (m *memRepo) PopN(_ context.Context, pool string, seats int, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := queueKey(pool, seats)
	q := m.queues[key]
	if len(q) < n {
		return nil, nil
	}
	addrs := make([]string, 0, len(q))
	for a := range q {
		addrs = append(addrs, a)
	}
	rand.Shuffle(len(addrs), func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })

	chosen := addrs[:n]
	for _, a := range chosen {
		delete(q, a)
		delete(m.queued, a)
	}
	if len(q) == 0 {
		delete(m.queues, key)
	}
	return chosen, nil
}

func (m *memRepo) Remove(_ context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.queued[address]
	if !ok {
		return nil
	}
	if q, ok := m.queues[key]; ok {
		delete(q, address)
		if len(q) == 0 {
			delete(m.queues, key)
		}
	}
	delete(m.queued, address)
	return nil
}

func (m *memRepo) Count(_ context.Context, pool string, seats int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.queues[queueKey(pool, seats)])), nil
}

func (m *memRepo) SaveTable(_ context.Context, t *table.Table, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t
	for _, a := range t.Players {
		m.seated[a] = t.ID
	}
	return nil
}

func (m *memRepo) TableOf(_ context.Context, address string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seated[address], nil
}

func (m *memRepo) ReleaseTable(_ context.Context, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, t.ID)
	for _, a := range t.Players {
		if m.seated[a] == t.ID {
			delete(m.seated, a)
		}
	}
	return nil
}
