// Package metrics - prometheus-метрики сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Количество HTTP-запросов",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Время обработки HTTP-запроса",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Заказы
	DraftsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "orders",
		Name:      "drafts_created_total",
		Help:      "Созданные черновики заказов",
	}, []string{"result"}) // success / rejected / error

	// Платежи
	PaymentConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "payments",
		Name:      "confirmations_total",
		Help:      "Подтверждения оплаты по провайдеру и результату",
	}, []string{"method", "result"})

	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: "payments",
		Name:      "gateway_duration_seconds",
		Help:      "Время вызова платёжного провайдера",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "operation"})

	GatewayFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "payments",
		Name:      "gateway_failures_total",
		Help:      "Неудачные вызовы платёжного провайдера",
	}, []string{"method", "operation", "reason"}) // unavailable / upstream_error / rejected / error

	// OTP
	OTPIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "otp",
		Name:      "issued_total",
		Help:      "Выданные коды подтверждения",
	}, []string{"result"}) // sent / delivery_failed / error

	OTPVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "otp",
		Name:      "verified_total",
		Help:      "Проверки кодов подтверждения",
	}, []string{"result"}) // success / no_challenge / expired / invalid / error

	OTPPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "otp",
		Name:      "purged_total",
		Help:      "Удалённые по TTL коды и отметки",
	})

	// Уведомления
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "Отправленные уведомления",
	}, []string{"type", "status"})
)

// Handler отдаёт метрики для prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware считает запросы по шаблону маршрута chi, чтобы id не раздували кардинальность.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
