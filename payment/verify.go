package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingPaymentFields is returned when orderId, paymentId or signature is
// absent; nothing is computed in that case.
var ErrMissingPaymentFields = errors.New("missing payment details")

// ExpectedSignature computes the gateway's signature for an order/payment
// pair: HMAC-SHA256 over "orderId|paymentId", lowercase hex. The result must
// never be written into a client-facing payload.
func ExpectedSignature(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature reports whether the supplied signature matches the one the
// gateway would have produced. The comparison is constant-time. A mismatch is
// a normal false, not an error.
func VerifySignature(orderID, paymentID, signature, secret string) (bool, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return false, ErrMissingPaymentFields
	}
	expected := ExpectedSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// VerifyPaymentSignature is VerifySignature bound to the client's secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error) {
	return VerifySignature(orderID, paymentID, signature, c.keySecret)
}
