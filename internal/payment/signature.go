package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature считает подпись Razorpay: hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Signature(providerOrderID, providerPaymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature сравнивает подпись за постоянное время.
func ValidSignature(providerOrderID, providerPaymentID, signature, secret string) bool {
	expected := Signature(providerOrderID, providerPaymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
