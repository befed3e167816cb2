// Package errs описывает таксономию доменных ошибок: каждая ошибка несёт
// вид (Kind), по которому транспортный слой выбирает HTTP-статус и признак
// повторяемости запроса.
package errs

import "errors"

// Kind - класс ошибки.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindIntegrity     Kind = "integrity"
	KindUpstream      Kind = "upstream"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

// Error - доменная ошибка-сентинел. Сравнение через errors.Is идёт по указателю.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable сообщает, имеет ли смысл клиенту повторить запрос.
func (e *Error) Retryable() bool {
	return e.Kind == KindUpstream
}

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Ошибки валидации (вина клиента, повторять бессмысленно)
var (
	ErrEmptyCart                 = newErr(KindValidation, "cart is empty")
	ErrUnknownProduct            = newErr(KindValidation, "invalid product in cart")
	ErrInvalidSize               = newErr(KindValidation, "invalid size for product")
	ErrPriceMismatch             = newErr(KindValidation, "price mismatch")
	ErrInvalidQuantity           = newErr(KindValidation, "quantity must be positive")
	ErrMissingEmail              = newErr(KindValidation, "email is required")
	ErrMissingVerificationFields = newErr(KindValidation, "missing required payment verification fields")
	ErrInvalidStatus             = newErr(KindValidation, "unknown status")
	ErrInvalidTransition         = newErr(KindValidation, "status transition is not allowed")
	ErrUnsupportedMethod         = newErr(KindValidation, "unsupported payment method")
	ErrNoChallenge               = newErr(KindValidation, "no otp challenge for email")
	ErrExpired                   = newErr(KindValidation, "otp expired")
	ErrInvalidCode               = newErr(KindValidation, "invalid otp code")
	ErrEmailNotVerified          = newErr(KindValidation, "email is not verified")
	ErrUserExists                = newErr(KindValidation, "user already exists, please login")
)

// Ошибки авторизации
var (
	ErrUnauthorized       = newErr(KindAuthorization, "unauthorized")
	ErrForbidden          = newErr(KindAuthorization, "admin access required")
	ErrInvalidCredentials = newErr(KindAuthorization, "username or password is invalid")
)

// Ошибки целостности: устаревшее или подделанное состояние клиента
var (
	ErrInvalidSignature = newErr(KindIntegrity, "invalid signature")
	ErrAlreadyPaid      = newErr(KindIntegrity, "order is already paid")
	ErrNoActiveOrder    = newErr(KindIntegrity, "no active order")
	ErrConcurrentUpdate = newErr(KindIntegrity, "order is being updated concurrently, please retry")
	ErrHasPayments      = newErr(KindIntegrity, "order has payment records")
)

// Ошибки внешних систем (клиент может повторить)
var (
	ErrGatewayUnavailable = newErr(KindUpstream, "payment gateway unavailable")
	ErrGatewayRejected    = newErr(KindUpstream, "payment gateway rejected the request")
	ErrDeliveryFailed     = newErr(KindUpstream, "failed to deliver notification")
)

var (
	ErrOrderNotFound   = newErr(KindNotFound, "order not found")
	ErrPaymentNotFound = newErr(KindNotFound, "payment not found")
)

// KindOf возвращает класс ошибки; всё, что не является *Error, считается внутренней ошибкой.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As извлекает доменную ошибку из цепочки.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
