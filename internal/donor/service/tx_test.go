package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sndot/pkg/domain-errors"
	"sndot/pkg/platform/sentinel"
)

func TestShardedTx(t *testing.T) {
	t.Run("cancelled context aborts with timeout code", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := NewShardedTx(0).RunInTx(ctx, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, called)
	})

	t.Run("adds a deadline when the caller has none", func(t *testing.T) {
		var hasDeadline bool
		err := NewShardedTx(time.Second).RunInTx(context.Background(), func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hasDeadline)
	})

	t.Run("same key runs one at a time", func(t *testing.T) {
		tx := NewShardedTx(0)
		ctx := WithLockKey(context.Background(), "11144477735")
		var inside, maxInside int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = tx.RunInTx(ctx, func(context.Context) error {
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&inside, -1)
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside)
	})

	t.Run("keys spread across shards", func(t *testing.T) {
		seen := map[int]struct{}{}
		for _, key := range []string{"11144477735", "52998224725", "39053344705", "86288366757"} {
			shards := selectShards(WithLockKey(context.Background(), key))
			require.Len(t, shards, 1)
			seen[shards[0]] = struct{}{}
		}
		assert.Greater(t, len(seen), 1)
		assert.Equal(t, []int{0}, selectShards(context.Background()))
	})

	t.Run("several keys lock distinct shards in ascending order", func(t *testing.T) {
		shards := selectShards(WithLockKey(context.Background(), "52998224725", "11144477735", "52998224725", ""))
		require.NotEmpty(t, shards)
		assert.IsIncreasing(t, shards)
	})

	t.Run("a multi-key transaction excludes each of its keys", func(t *testing.T) {
		tx := NewShardedTx(0)
		entered := make(chan struct{})
		release := make(chan struct{})
		go func() {
			_ = tx.RunInTx(WithLockKey(context.Background(), "11144477735", "52998224725"), func(context.Context) error {
				close(entered)
				<-release
				return nil
			})
		}()
		<-entered

		done := make(chan struct{})
		go func() {
			_ = tx.RunInTx(WithLockKey(context.Background(), "52998224725"), func(context.Context) error { return nil })
			close(done)
		}()
		select {
		case <-done:
			t.Fatal("single-key transaction ran while the multi-key one held its shard")
		case <-time.After(50 * time.Millisecond):
		}
		close(release)
		<-done
	})

	t.Run("opposite key orders do not deadlock", func(t *testing.T) {
		tx := NewShardedTx(time.Second)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			keys := []string{"11144477735", "52998224725"}
			if i%2 == 1 {
				keys[0], keys[1] = keys[1], keys[0]
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, tx.RunInTx(WithLockKey(context.Background(), keys...), func(context.Context) error { return nil }))
			}()
		}
		wg.Wait()
	})
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"not found", fmt.Errorf("donor: %w", sentinel.ErrNotFound), dErrors.CodeNotFound},
		{"conflict", fmt.Errorf("insert: %w", sentinel.ErrConflict), dErrors.CodeConflict},
		{"deadline", context.DeadlineExceeded, dErrors.CodeTimeout},
		{"coded passes through", dErrors.New(dErrors.CodeValidation, "bad"), dErrors.CodeValidation},
		{"unknown", assert.AnError, dErrors.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, dErrors.CodeOf(translate(tc.err, "op")))
		})
	}
	assert.NoError(t, translate(nil, "op"))
}
