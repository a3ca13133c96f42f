package matchmaker

import (
	"context"
	"fmt"
	"time"

	"UpDownRiver/internal/game/table"
)

// Repo stores the waiting queues and the seated tables.
type Repo interface {
	// Enqueue adds address to the queue of pool/seats.
	Enqueue(ctx context.Context, pool string, seats int, address string, ttl time.Duration) error
	// PopN atomically takes n random addresses out of the queue, or none
	// when fewer than n are waiting.
	PopN(ctx context.Context, pool string, seats int, n int) ([]string, error)
	// Remove takes address out of whichever queue holds it.
	Remove(ctx context.Context, address string) error
	Count(ctx context.Context, pool string, seats int) (int64, error)

	// SaveTable records t and marks its players as seated.
	SaveTable(ctx context.Context, t *table.Table, ttl time.Duration) error
	// TableOf returns the table address is seated at, or "".
	TableOf(ctx context.Context, address string) (string, error)
	// ReleaseTable forgets t and frees its players.
	ReleaseTable(ctx context.Context, t *table.Table) error
}

// key 约定：
//
//	set: udr:queue:{pool}:{seats}   -> Set(address,...)
//	kv : udr:queued:{address}       -> "pool:seats"
//	kv : udr:table:{id}             -> JSON table
//	kv : udr:seated:{address}       -> table id
func queueKey(pool string, seats int) string {
	return fmt.Sprintf("udr:queue:%s:%d", pool, seats)
}

func queuedKey(addr string) string {
	return "udr:queued:" + addr
}

func tableKey(id string) string {
	return "udr:table:" + id
}

func seatedKey(addr string) string {
	return "udr:seated:" + addr
}
