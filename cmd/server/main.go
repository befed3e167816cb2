package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/checkout-service/internal/app"
	"github.com/linemk/checkout-service/internal/config"
	"github.com/linemk/checkout-service/internal/lib/logger"
	"github.com/linemk/checkout-service/internal/lib/tracing"
	"github.com/linemk/checkout-service/internal/notify"
	"github.com/linemk/checkout-service/internal/otp"
	"github.com/linemk/checkout-service/internal/payment"
	"github.com/linemk/checkout-service/internal/service"
	"github.com/linemk/checkout-service/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName)
		if err != nil {
			panic(errors.Wrap(err, "failed to init tracer"))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Error("tracer shutdown failed", slog.Any("error", err))
			}
		}()
	}

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	paymentRepo := storage.NewPaymentRepository(application.DB)

	var otpStore otp.Store
	switch cfg.OTP.Backend {
	case "postgres":
		otpStore = storage.NewOTPRepository(application.DB)
	case "memory":
		log.Warn("otp codes are kept in memory and will be lost on restart")
		otpStore = otp.NewMemoryStore()
	default:
		panic(errors.Errorf("unknown otp backend %q", cfg.OTP.Backend))
	}
	go func() {
		if err := otp.NewSweeper(log, otpStore, cfg.OTP.SweepInterval).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("otp sweeper stopped", slog.Any("error", err))
		}
	}()

	var notifier notify.Notifier
	if brokers := notify.ParseBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(brokers, cfg.Kafka.Topic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		log.Info("notifications go to kafka", slog.String("topic", cfg.Kafka.Topic))
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Warn("kafka brokers are not set, notifications are only logged")
	}

	gateways := []payment.Gateway{payment.NewPayPal(cfg.PayPal.Currency)}
	if cfg.Razorpay.KeySecret != "" {
		gateways = append(gateways, payment.NewRazorpay(payment.RazorpayConfig{
			BaseURL:   cfg.Razorpay.BaseURL,
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			Currency:  cfg.Razorpay.Currency,
			Timeout:   cfg.Razorpay.Timeout,
		}))
	} else {
		log.Warn("RAZORPAY_KEY_SECRET is not set, razorpay is disabled")
	}

	pricing := service.NewPricingValidator(log, productRepo)
	services := app.Services{
		Auth: service.NewAuthService(log, userRepo, otpStore, cfg.JWT.Secret,
			time.Duration(cfg.JWT.TokenTTL)*time.Minute),
		OTP: service.NewOTPService(log, otpStore, notifier, cfg.OTP.TTL, cfg.OTP.VerifiedTTL, cfg.Notify.Timeout),
		Orders: service.NewOrderService(log, application.DB, pricing, userRepo, orderRepo, paymentRepo),
		Payments: service.NewPaymentService(log, application.DB, payment.NewRegistry(gateways...),
			orderRepo, paymentRepo, notifier, cfg.Notify.Timeout),
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      app.NewRouter(log, services, cfg.JWT.Secret),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
