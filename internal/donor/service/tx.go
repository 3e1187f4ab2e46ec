package service

import (
	"context"
	"slices"
	"sync"
	"time"

	dErrors "sndot/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for a registration. fn receives
// a context that store calls must use; a PostgreSQL implementation carries
// its *sql.Tx in it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// numTxShards spreads natural keys over independent locks so unrelated
// registrations never wait on each other.
const numTxShards = 128

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes in-memory transactions per natural key. It has no
// rollback: the registrar finishes every check before its first write.
type ShardedTx struct {
	shards  [numTxShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx(timeout time.Duration) *ShardedTx {
	return &ShardedTx{timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shards := selectShards(ctx)
	for _, shard := range shards {
		t.shards[shard].Lock()
	}
	defer func() {
		for i := len(shards) - 1; i >= 0; i-- {
			t.shards[shards[i]].Unlock()
		}
	}()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// selectShards maps the lock keys in ctx to distinct shards in ascending order,
// so transactions naming several keys never deadlock. No key means shard 0.
func selectShards(ctx context.Context) []int {
	keys, _ := ctx.Value(txLockKeyCtx).([]string)
	shards := make([]int, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		shard := int(hashString(key) % numTxShards)
		if !slices.Contains(shards, shard) {
			shards = append(shards, shard)
		}
	}
	if len(shards) == 0 {
		return []int{0}
	}
	slices.Sort(shards)
	return shards
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

type txLockKey struct{}

var txLockKeyCtx = txLockKey{}

// WithLockKey names the natural keys a transaction works on. In-memory
// transactions lock all of them; SQL transactions ignore them and rely on row locks.
func WithLockKey(ctx context.Context, keys ...string) context.Context {
	return context.WithValue(ctx, txLockKeyCtx, keys)
}
