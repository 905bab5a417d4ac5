package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74/webhook"
)

// VerifyDirectWebhook authenticates a direct-gateway webhook. The signature
// is HMAC-SHA256 over the raw, unparsed body: re-serializing parsed JSON
// would not round-trip byte-for-byte, so the body must be used verbatim.
func VerifyDirectWebhook(body []byte, signature, secret string) (*DirectEvent, error) {
	if signature == "" {
		return nil, &VerificationError{Reason: ReasonInvalidSignature, Err: errors.New("missing signature header")}
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, &VerificationError{Reason: ReasonInvalidSignature}
	}
	var payload DirectPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &VerificationError{Reason: ReasonMalformedPayload, Err: err}
	}
	if payload.Reference == "" && payload.SubscriptionID == "" {
		return nil, &VerificationError{Reason: ReasonMalformedPayload, Err: errors.New("payload carries no reference")}
	}
	return &DirectEvent{Payload: payload}, nil
}

// VerifyGatewayWebhook authenticates a card gateway webhook via the SDK's
// signed-event construction.
func VerifyGatewayWebhook(body []byte, signatureHeader, secret string) (*GatewayEvent, error) {
	event, err := webhook.ConstructEvent(body, signatureHeader, secret)
	if err != nil {
		return nil, &VerificationError{Reason: ReasonInvalidSignature, Err: err}
	}
	return &GatewayEvent{Event: event}, nil
}

// SignDirectPayload computes the signature a direct-gateway delivery would
// carry. Counterpart of VerifyDirectWebhook for producing deliveries in tests.
func SignDirectPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// NotApproved wraps a provider "declined" outcome for redirect flows.
func NotApproved(format string, args ...interface{}) error {
	return &VerificationError{Reason: ReasonNotApproved, Err: fmt.Errorf(format, args...)}
}
