package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/checkout-service/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = "id, name, email, pass_hash, is_admin, created_at"

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PassHash, &user.IsAdmin, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

// получение уже существующего пользователя
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (name, email, pass_hash, is_admin) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		user.Name, user.Email, user.PassHash, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// LockUserByIDTx блокирует строку пользователя до конца транзакции.
// Используется, чтобы сериализовать операции над черновиком заказа одного пользователя.
func (r *userRepository) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
	user, err := scanUser(row)
	if err != nil {
		if pqCode(err) == pqLockNotAvailable {
			return nil, fmt.Errorf("%w: %w", ErrLocked, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
