package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/checkout-service/internal/lib/logger/handlers/slogpretty"
)

// окружения из config.Env
const (
	EnvLocal       = "local"
	EnvDevelopment = "development" // значение по умолчанию в конфиге
	EnvDev         = "dev"
	EnvProd        = "prod"
	EnvProduction  = "production"
)

// SetupLogger собирает логгер checkout-сервиса под окружение:
// local - цветной pretty-вывод с debug, development/dev - JSON с debug,
// prod/production и неизвестные окружения - JSON с info.
// Все записи, кроме local, помечаются атрибутом env.
func SetupLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	if env == EnvLocal {
		return setupPrettySlog(w)
	}

	level := slog.LevelInfo
	switch env {
	case EnvDevelopment, EnvDev:
		level = slog.LevelDebug
	case EnvProd, EnvProduction:
	default:
		// неизвестное окружение - как prod
		env = EnvProd
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("env", env))
}

func setupPrettySlog(w io.Writer) *slog.Logger {
	color.NoColor = false

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(w))
}
