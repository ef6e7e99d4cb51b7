package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	domain "github.com/storefront/backend/internal/domain/payment"
)

// Sign returns the hex HMAC-SHA256 of message under secret
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckoutMessage is the payload a checkout signature covers
func CheckoutMessage(gatewayOrderID, paymentID string) string {
	return gatewayOrderID + "|" + paymentID
}

// verifySignature compares in constant time
func verifySignature(secret, message, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return domain.ErrMissingSignature
	}
	expected := Sign(secret, message)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return domain.ErrInvalidSignature
	}
	return nil
}
