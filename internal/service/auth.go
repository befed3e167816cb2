package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	security "github.com/linemk/checkout-service/internal/jwt-new"
	"github.com/linemk/checkout-service/internal/otp"
	"github.com/linemk/checkout-service/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	otpStore  otp.Store
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, otpStore otp.Store, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		otpStore:  otpStore,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Register создаёт пользователя с email, подтверждённым через OTP.
// Отметка о подтверждении расходуется: повторная регистрация потребует нового кода.
// Пароль хэшируется через bcrypt, который автоматически добавляет соль.
func (a *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	const op = "auth.Register"

	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, errs.ErrMissingEmail)
	}
	logger := a.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("registering user")

	verified, err := a.otpStore.IsVerified(ctx, email, time.Now())
	if err != nil {
		logger.Error("failed to check email verification", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to check email verification: %w", op, err)
	}
	if !verified {
		logger.Warn("email is not verified")
		return "", fmt.Errorf("%s: %w", op, errs.ErrEmailNotVerified)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		PassHash: passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("user already exists")
			return "", fmt.Errorf("%s: %w", op, errs.ErrUserExists)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	if err := a.otpStore.ClearVerified(ctx, email); err != nil {
		// пользователь уже создан, повторная регистрация упрётся в ErrUserExists
		logger.Error("failed to clear verified mark", slog.Any("error", err))
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return token, nil
}

// Login осуществляет аутентификацию пользователя.
// Введённый пароль сравнивается с сохранённым хэшем, после успешной проверки
// генерируется JWT-токен. Неизвестный email и неверный пароль неразличимы.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	email = normalizeEmail(email)
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

// IsAdmin читает флаг администратора из БД на каждый запрос,
// поэтому снятие прав действует сразу, без перевыпуска токена.
func (a *AuthService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, errs.ErrUnauthorized
		}
		return false, fmt.Errorf("auth.IsAdmin: %w", err)
	}
	return user.IsAdmin, nil
}
