package matchmaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"UpDownRiver/internal/game/table"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// KEYS[1] = queuedKey, KEYS[2] = queueKey, ARGV[1] = address
var leaveScript = redis.NewScript(`
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if redis.call("SCARD", KEYS[2]) == 0 then
    redis.call("DEL", KEYS[2])
end
return 1
`)

func (r *redisRepo) Enqueue(ctx context.Context, pool string, seats int, address string, ttl time.Duration) error {
	p := r.rdb.TxPipeline()
	p.SAdd(ctx, queueKey(pool, seats), address)
	p.Set(ctx, queuedKey(address), fmt.Sprintf("%s:%d", pool, seats), ttl)
	_, err := p.Exec(ctx)
	return err
}

func (r *redisRepo) PopN(ctx context.Context, pool string, seats int, n int) ([]string, error) {
	key := queueKey(pool, seats)
	cnt, err := r.rdb.SCard(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if cnt < int64(n) {
		return nil, nil
	}
	// SPOP COUNT 原子随机弹出
	res, err := r.rdb.SPopN(ctx, key, int64(n)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) < n {
		// lost a race with another pop: put them back
		if len(res) > 0 {
			members := make([]any, len(res))
			for i, a := range res {
				members[i] = a
			}
			if err := r.rdb.SAdd(ctx, key, members...).Err(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	p := r.rdb.Pipeline()
	for _, addr := range res {
		p.Del(ctx, queuedKey(addr))
	}
	if _, err := p.Exec(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *redisRepo) Remove(ctx context.Context, address string) error {
	kv, err := r.rdb.Get(ctx, queuedKey(address)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	// "pool:seats"; the pool name may itself contain ':'
	i := strings.LastIndex(kv, ":")
	seats, convErr := strconv.Atoi(kv[i+1:])
	if i < 0 || convErr != nil {
		return r.rdb.Del(ctx, queuedKey(address)).Err()
	}
	return leaveScript.Run(ctx, r.rdb, []string{queuedKey(address), queueKey(kv[:i], seats)}, address).Err()
}

func (r *redisRepo) Count(ctx context.Context, pool string, seats int) (int64, error) {
	return r.rdb.SCard(ctx, queueKey(pool, seats)).Result()
}

func (r *redisRepo) SaveTable(ctx context.Context, t *table.Table, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	p := r.rdb.TxPipeline()
	p.Set(ctx, tableKey(t.ID), data, ttl)
	for _, addr := range t.Players {
		p.Set(ctx, seatedKey(addr), t.ID, ttl)
	}
	_, err = p.Exec(ctx)
	return err
}

func (r *redisRepo) TableOf(ctx context.Context, address string) (string, error) {
	val, err := r.rdb.Get(ctx, seatedKey(address)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *redisRepo) ReleaseTable(ctx context.Context, t *table.Table) error {
	keys := []string{tableKey(t.ID)}
	for _, addr := range t.Players {
		keys = append(keys, seatedKey(addr))
	}
	return r.rdb.Del(ctx, keys...).Err()
}
