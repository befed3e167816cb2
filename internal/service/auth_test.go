package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit"
	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/otp"
	"github.com/linemk/checkout-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "testsecret"

func verifyEmail(t *testing.T, store *otp.MemoryStore, email string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveChallenge(ctx, otpChallenge(email, "111111")))
	require.NoError(t, store.ConsumeChallenge(ctx, email, "111111", time.Now(), time.Now().Add(time.Hour)))
}

func TestAuthService_Register(t *testing.T) {
	users := newFakeUserRepo()
	store := otp.NewMemoryStore()
	svc := service.NewAuthService(testLogger, users, store, testSecret, time.Hour)

	email := gofakeit.Email()

	_, err := svc.Register(context.Background(), gofakeit.Name(), email, "password123")
	assert.ErrorIs(t, err, errs.ErrEmailNotVerified)
	assert.Empty(t, users.users)

	verifyEmail(t, store, email)

	token, err := svc.Register(context.Background(), gofakeit.Name(), email, "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, email, claims["email"])

	// отметка израсходована
	verified, err := store.IsVerified(context.Background(), email, time.Now())
	require.NoError(t, err)
	assert.False(t, verified)

	user := users.users[email]
	require.NotNil(t, user)
	assert.NotEqual(t, "password123", string(user.PassHash))
	assert.False(t, user.IsAdmin)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	users := newFakeUserRepo()
	store := otp.NewMemoryStore()
	svc := service.NewAuthService(testLogger, users, store, testSecret, time.Hour)

	email := gofakeit.Email()
	users.add(1, email, false)
	verifyEmail(t, store, email)

	_, err := svc.Register(context.Background(), "Someone", email, "password123")
	assert.ErrorIs(t, err, errs.ErrUserExists)
}

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserRepo()
	store := otp.NewMemoryStore()
	svc := service.NewAuthService(testLogger, users, store, testSecret, time.Hour)

	email := gofakeit.Email()
	verifyEmail(t, store, email)
	_, err := svc.Register(context.Background(), "Buyer", email, "password123")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		token, err := svc.Login(context.Background(), email, "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), email, "password124")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("unknown email is not registered", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost@example.com", "password123")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.NotContains(t, users.users, "ghost@example.com")
	})
}

func TestAuthService_IsAdmin(t *testing.T) {
	users := newFakeUserRepo()
	users.add(1, "user@example.com", false)
	users.add(2, "admin@example.com", true)
	svc := service.NewAuthService(testLogger, users, otp.NewMemoryStore(), testSecret, time.Hour)

	isAdmin, err := svc.IsAdmin(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = svc.IsAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = svc.IsAdmin(context.Background(), 404)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}
