package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	razorpay "github.com/razorpay/razorpay-go"

	"startupops/config"
)

var razorpayClient *razorpay.Client

// InitRazorpay wires the gateway client from configuration. Call once at
// startup before any order is created.
func InitRazorpay() {
	razorpayClient = razorpay.NewClient(config.AppConfig.RazorpayKeyID, config.AppConfig.RazorpayKeySecret)
}

// CreateOrder opens a gateway order for the given amount (smallest currency
// unit) and returns the opaque order id the client completes checkout with.
func CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	if razorpayClient == nil {
		return "", errors.New("payment gateway client not initialized")
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	body, err := razorpayClient.Order.Create(data, nil)
	if err != nil {
		return "", err
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", errors.New("gateway response missing order id")
	}
	return orderID, nil
}

// VerifyPaymentSignature recomputes the gateway signature over
// "{order_id}|{payment_id}" with the shared secret and compares it against
// the client-supplied value in constant time. This is the sole proof that a
// claimed payment actually happened; no gateway round-trip is involved.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
