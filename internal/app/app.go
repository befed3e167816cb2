package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/lib/pq"
	"github.com/linemk/checkout-service/internal/config"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
}

// DSN собирает строку подключения к postgres; пароль экранируется
func DSN(db config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewApp создаёт новый экземпляр App
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	return app, nil
}
