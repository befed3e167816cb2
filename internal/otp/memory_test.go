package otp_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := otp.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestMemoryStore_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(5 * time.Minute)

	t.Run("valid exactly at expiry", func(t *testing.T) {
		store := otp.NewMemoryStore()
		require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "a@b.c", Code: "123456", ExpiresAt: expires}))

		err := store.ConsumeChallenge(ctx, "a@b.c", "123456", expires, expires.Add(time.Hour))
		assert.NoError(t, err)
	})

	t.Run("expired one second later", func(t *testing.T) {
		store := otp.NewMemoryStore()
		require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "a@b.c", Code: "123456", ExpiresAt: expires}))

		err := store.ConsumeChallenge(ctx, "a@b.c", "123456", expires.Add(time.Second), expires.Add(time.Hour))
		assert.ErrorIs(t, err, errs.ErrExpired)
		assert.Equal(t, 0, store.Len())

		// запись удалена, повторная попытка видит отсутствие кода
		err = store.ConsumeChallenge(ctx, "a@b.c", "123456", expires.Add(time.Second), expires.Add(time.Hour))
		assert.ErrorIs(t, err, errs.ErrNoChallenge)
	})
}

func TestMemoryStore_VerifiedMark(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := otp.NewMemoryStore()

	require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "a@b.c", Code: "123456", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.ConsumeChallenge(ctx, "a@b.c", "123456", now, now.Add(time.Hour)))

	ok, err := store.IsVerified(ctx, "a@b.c", now.Add(59*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsVerified(ctx, "a@b.c", now.Add(61*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ClearVerified(ctx, "a@b.c"))
	ok, _ = store.IsVerified(ctx, "a@b.c", now)
	assert.False(t, ok)
}

func TestMemoryStore_DeleteChallengeOnlyCurrent(t *testing.T) {
	ctx := context.Background()
	store := otp.NewMemoryStore()
	exp := time.Now().Add(time.Minute)

	require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "a@b.c", Code: "111111", ExpiresAt: exp}))
	require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "a@b.c", Code: "222222", ExpiresAt: exp}))

	// старый код уже перезаписан, удалять нечего
	require.NoError(t, store.DeleteChallenge(ctx, "a@b.c", "111111"))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.DeleteChallenge(ctx, "a@b.c", "222222"))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := otp.NewMemoryStore()

	require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "old@b.c", Code: "111111", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "new@b.c", Code: "222222", ExpiresAt: now.Add(time.Minute)}))

	deleted, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := otp.NewMemoryStore()
	require.NoError(t, store.SaveChallenge(ctx, models.OTPChallenge{Email: "a@b.c", Code: "123456", ExpiresAt: now.Add(time.Minute)}))

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.ConsumeChallenge(ctx, "a@b.c", "123456", now, now.Add(time.Hour)) == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "code must be accepted exactly once")
}
