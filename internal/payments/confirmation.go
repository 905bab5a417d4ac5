package payments

import (
	"github.com/stripe/stripe-go/v74"

	"vital/pkg/provider"
)

// Event kinds after normalization. Payments create orders or memberships;
// subscription updates mutate membership state; refunds transition an
// existing order.
const (
	KindPayment            = "payment"
	KindSubscriptionUpdate = "subscription_update"
	KindRefund             = "refund"
)

type OrderLineItem struct {
	SKU                 string `json:"sku"`
	Name                string `json:"name"`
	Quantity            int    `json:"quantity"`
	UnitPriceMinorUnits int64  `json:"unit_price_minor_units"`
	Category            string `json:"category"`
}

// LineItemTotal returns the summed price of the given items in minor units.
func LineItemTotal(items []OrderLineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPriceMinorUnits * int64(it.Quantity)
	}
	return total
}

// PaymentConfirmation is the canonical, provider-independent form every
// verified event is reduced to before it reaches the router.
type PaymentConfirmation struct {
	Kind              string
	Provider          string
	ExternalReference string
	SubscriptionID    string
	PlanTier          string
	AmountMinorUnits  int64
	Currency          string
	CustomerEmail     string
	CustomerName      string
	LineItems         []OrderLineItem
	Mode              string // subscription or one_time
	// SubscriptionStatus is set for subscription lifecycle events.
	SubscriptionStatus string
}

// VerifiedEvent is the tagged union of provider confirmations. One variant
// per provider protocol; the normalizer is the single dispatch over it.
type VerifiedEvent interface {
	ProviderID() string
}

// DirectEvent is a payload from the direct-charge gateway, delivered over an
// HMAC-signed webhook.
type DirectEvent struct {
	Payload DirectPayload
}

type DirectPayload struct {
	EventType      string `json:"event_type"` // payment.succeeded, payment.refunded, subscription.updated, subscription.cancelled
	Reference      string `json:"reference"`
	SubscriptionID string `json:"subscription_id"`
	Mode           string `json:"mode"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	PlanTier       string `json:"plan_tier"`
	Customer       struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer"`
	Items []DirectItem `json:"items"`
}

type DirectItem struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Category       string `json:"category"`
}

// GatewayEvent is a signature-verified card gateway webhook event.
type GatewayEvent struct {
	Event stripe.Event
}

// GatewaySession is a checkout session retrieved directly after a redirect.
type GatewaySession struct {
	Session *stripe.CheckoutSession
}

// BnplASettlement is the authorize+capture result for the first BNPL
// provider.
type BnplASettlement struct {
	Authorization *provider.Authorization
	Capture       *provider.Capture
}

// BnplBSettlement is the finalized order for the second BNPL provider.
type BnplBSettlement struct {
	Order *provider.SettledOrder
}

func (DirectEvent) ProviderID() string     { return "card_direct" }
func (GatewayEvent) ProviderID() string    { return "card_gateway" }
func (GatewaySession) ProviderID() string  { return "card_gateway" }
func (BnplASettlement) ProviderID() string { return "bnpl_a" }
func (BnplBSettlement) ProviderID() string { return "bnpl_b" }
