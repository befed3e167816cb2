package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/checkout-service/internal/app/handlers"
	"github.com/linemk/checkout-service/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/checkout-service/internal/lib/logger/handlers/urllog"
	"github.com/linemk/checkout-service/internal/lib/metrics"
	"github.com/linemk/checkout-service/internal/service"
)

// Services - всё, что нужно HTTP-слою
type Services struct {
	Auth     service.AuthServiceInterface
	OTP      service.OTPService
	Orders   service.OrderService
	Payments service.PaymentService
}

// NewRouter собирает маршруты API
func NewRouter(log *slog.Logger, svc Services, jwtSecret string) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", metrics.Handler())

	// регистрация и вход доступны без токена
	router.Route("/api/users", func(r chi.Router) {
		r.Post("/otp/send", handlers.SendOTPHandler(log, svc.OTP))
		r.Post("/otp/verify", handlers.VerifyOTPHandler(log, svc.OTP))
		r.Post("/register", handlers.RegisterHandler(log, svc.Auth))
		r.Post("/login", handlers.LoginHandler(log, svc.Auth))
	})

	jwtMW := jwtmiddleware.NewJWTMiddleware(jwtSecret)

	router.Route("/api/orders", func(r chi.Router) {
		r.Use(jwtMW)
		r.Post("/create", handlers.CreateOrderHandler(log, svc.Orders))
		r.Get("/newOrderForCurrentUser", handlers.CurrentOrderHandler(log, svc.Orders))
		r.Get("/track/{orderId}", handlers.TrackOrderHandler(log, svc.Orders))
		r.Get("/allstatus", handlers.AllStatusHandler(svc.Orders))
		purchaseCount := handlers.PurchaseCountHandler(log, svc.Orders)
		r.Get("/user-purchase-count", purchaseCount)
		r.Get("/purchase-count", purchaseCount) // прежний путь
		r.Get("/", handlers.ListOrdersHandler(log, svc.Orders))

		r.Post("/paypal/pay", handlers.PayPalPayHandler(log, svc.Payments))
		r.Post("/razorpay/create-order", handlers.RazorpayCreateOrderHandler(log, svc.Payments))
		r.Post("/razorpay/verify-payment", handlers.RazorpayVerifyHandler(log, svc.Payments))
	})

	router.Route("/api/admin", func(r chi.Router) {
		r.Use(jwtMW)
		r.Use(jwtmiddleware.AdminOnly(log, svc.Auth))
		r.Get("/orders", handlers.AdminListOrdersHandler(log, svc.Orders))
		r.Patch("/orders/{id}/status", handlers.AdminSetOrderStatusHandler(log, svc.Orders))
		r.Delete("/orders/{id}", handlers.AdminDeleteOrderHandler(log, svc.Orders))
		r.Get("/orders/{id}/payments", handlers.AdminListPaymentsHandler(log, svc.Payments))
		r.Patch("/payments/{id}/status", handlers.AdminSetPaymentStatusHandler(log, svc.Payments))
	})

	return router
}
