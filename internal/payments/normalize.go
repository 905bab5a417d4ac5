package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"vital/internal/domain"
	"vital/pkg/provider"
)

// SessionItemLister resolves a gateway checkout session's line items. The
// confirmation payload itself does not embed them.
type SessionItemLister interface {
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
}

// Normalizer reduces every verified provider event to a PaymentConfirmation.
type Normalizer struct {
	sessions SessionItemLister
}

func NewNormalizer(sessions SessionItemLister) *Normalizer {
	return &Normalizer{sessions: sessions}
}

// Normalize dispatches over the event union. A (nil, nil) return means the
// event type is recognized but carries nothing to reconcile (acknowledged
// and dropped).
func (n *Normalizer) Normalize(ctx context.Context, ev VerifiedEvent) (*PaymentConfirmation, error) {
	switch e := ev.(type) {
	case *DirectEvent:
		return n.normalizeDirect(e)
	case *GatewayEvent:
		return n.normalizeGatewayEvent(ctx, e)
	case *GatewaySession:
		return n.normalizeSession(ctx, e.Session)
	case *BnplASettlement:
		return normalizeBnplA(e)
	case *BnplBSettlement:
		return normalizeBnplB(e)
	default:
		return nil, fmt.Errorf("normalize: unknown event type %T", ev)
	}
}

func (n *Normalizer) normalizeDirect(e *DirectEvent) (*PaymentConfirmation, error) {
	p := e.Payload
	conf := &PaymentConfirmation{
		Provider:          domain.ProviderCardDirect,
		ExternalReference: p.Reference,
		SubscriptionID:    p.SubscriptionID,
		PlanTier:          p.PlanTier,
		AmountMinorUnits:  p.AmountCents,
		Currency:          strings.ToUpper(p.Currency),
		CustomerEmail:     p.Customer.Email,
		CustomerName:      p.Customer.Name,
		Mode:              p.Mode,
	}
	for _, it := range p.Items {
		conf.LineItems = append(conf.LineItems, OrderLineItem{
			SKU:                 it.SKU,
			Name:                it.Name,
			Quantity:            it.Quantity,
			UnitPriceMinorUnits: it.UnitPriceCents,
			Category:            it.Category,
		})
	}
	switch p.EventType {
	case "payment.succeeded":
		conf.Kind = KindPayment
		if conf.Mode == "" {
			conf.Mode = domain.ModeOneTime
		}
	case "payment.refunded":
		conf.Kind = KindRefund
	case "subscription.updated":
		conf.Kind = KindSubscriptionUpdate
		conf.Mode = domain.ModeSubscription
		conf.SubscriptionStatus = domain.SubscriptionActive
	case "subscription.past_due":
		conf.Kind = KindSubscriptionUpdate
		conf.Mode = domain.ModeSubscription
		conf.SubscriptionStatus = domain.SubscriptionPastDue
	case "subscription.cancelled":
		conf.Kind = KindSubscriptionUpdate
		conf.Mode = domain.ModeSubscription
		conf.SubscriptionStatus = domain.SubscriptionCancelled
	default:
		log.Printf("[normalize] ignoring direct event type %q", p.EventType)
		return nil, nil
	}
	return conf, nil
}

func (n *Normalizer) normalizeGatewayEvent(ctx context.Context, e *GatewayEvent) (*PaymentConfirmation, error) {
	switch e.Event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(e.Event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("normalize gateway session: %w", err)
		}
		return n.normalizeSession(ctx, &sess)
	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(e.Event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("normalize gateway subscription: %w", err)
		}
		return normalizeSubscription(&sub), nil
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(e.Event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("normalize gateway charge: %w", err)
		}
		ref := ch.ID
		if ch.PaymentIntent != nil {
			ref = ch.PaymentIntent.ID
		}
		return &PaymentConfirmation{
			Kind:              KindRefund,
			Provider:          domain.ProviderCardGateway,
			ExternalReference: ref,
			AmountMinorUnits:  ch.AmountRefunded,
			Currency:          strings.ToUpper(string(ch.Currency)),
		}, nil
	default:
		log.Printf("[normalize] ignoring gateway event type %q", e.Event.Type)
		return nil, nil
	}
}

func (n *Normalizer) normalizeSession(ctx context.Context, sess *stripe.CheckoutSession) (*PaymentConfirmation, error) {
	conf := &PaymentConfirmation{
		Kind:             KindPayment,
		Provider:         domain.ProviderCardGateway,
		AmountMinorUnits: sess.AmountTotal,
		Currency:         strings.ToUpper(string(sess.Currency)),
	}
	if sess.CustomerDetails != nil {
		conf.CustomerEmail = sess.CustomerDetails.Email
		conf.CustomerName = sess.CustomerDetails.Name
	}
	if sess.Mode == stripe.CheckoutSessionModeSubscription {
		conf.Mode = domain.ModeSubscription
		conf.SubscriptionStatus = domain.SubscriptionActive
		if sess.Subscription != nil {
			conf.SubscriptionID = sess.Subscription.ID
			conf.ExternalReference = sess.Subscription.ID
		}
	} else {
		conf.Mode = domain.ModeOneTime
		if sess.PaymentIntent != nil {
			conf.ExternalReference = sess.PaymentIntent.ID
		} else {
			conf.ExternalReference = sess.ID
		}
	}

	// Line items live behind a second API call. If it fails the order is
	// still valid without item detail: log a data-quality defect and
	// degrade to an empty list.
	if n.sessions != nil {
		items, err := n.sessions.ListLineItems(ctx, sess.ID)
		if err != nil {
			log.Printf("[normalize] line items unavailable for session %s: %v", sess.ID, err)
		} else {
			conf.LineItems = convertGatewayItems(items)
		}
	}
	if conf.Mode == domain.ModeSubscription {
		conf.PlanTier = planTierFromItems(conf.LineItems)
	}
	return conf, nil
}

func normalizeSubscription(sub *stripe.Subscription) *PaymentConfirmation {
	conf := &PaymentConfirmation{
		Kind:           KindSubscriptionUpdate,
		Provider:       domain.ProviderCardGateway,
		SubscriptionID: sub.ID,
		Mode:           domain.ModeSubscription,
	}
	switch sub.Status {
	case stripe.SubscriptionStatusPastDue:
		conf.SubscriptionStatus = domain.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled:
		conf.SubscriptionStatus = domain.SubscriptionCancelled
	default:
		conf.SubscriptionStatus = domain.SubscriptionActive
	}
	if tier, ok := sub.Metadata["tier"]; ok {
		conf.PlanTier = tier
	}
	if sub.Items != nil {
		var items []OrderLineItem
		for _, si := range sub.Items.Data {
			if si.Price == nil {
				continue
			}
			items = append(items, OrderLineItem{
				SKU:                 priceSKU(si.Price),
				UnitPriceMinorUnits: si.Price.UnitAmount,
				Quantity:            1,
			})
		}
		if conf.PlanTier == "" {
			conf.PlanTier = planTierFromItems(items)
		}
	}
	return conf
}

func normalizeBnplA(e *BnplASettlement) (*PaymentConfirmation, error) {
	auth := e.Authorization
	ref := e.Capture.Reference
	if ref == "" {
		ref = e.Capture.ID
	}
	conf := &PaymentConfirmation{
		Kind:              KindPayment,
		Provider:          domain.ProviderBnplA,
		ExternalReference: ref,
		AmountMinorUnits:  auth.AmountCents,
		Currency:          strings.ToUpper(auth.Currency),
		CustomerEmail:     auth.Customer.Email,
		CustomerName:      auth.Customer.Name,
		LineItems:         convertProviderItems(auth.Items),
		Mode:              domain.ModeOneTime,
	}
	return conf, nil
}

func normalizeBnplB(e *BnplBSettlement) (*PaymentConfirmation, error) {
	o := e.Order
	return &PaymentConfirmation{
		Kind:              KindPayment,
		Provider:          domain.ProviderBnplB,
		ExternalReference: o.OrderID,
		AmountMinorUnits:  o.AmountCents,
		Currency:          strings.ToUpper(o.Currency),
		CustomerEmail:     o.Customer.Email,
		CustomerName:      o.Customer.Name,
		LineItems:         convertProviderItems(o.Items),
		Mode:              domain.ModeOneTime,
	}, nil
}

func convertProviderItems(items []provider.Item) []OrderLineItem {
	var out []OrderLineItem
	for _, it := range items {
		out = append(out, OrderLineItem{
			SKU:                 it.SKU,
			Name:                it.Name,
			Quantity:            it.Quantity,
			UnitPriceMinorUnits: it.UnitPriceCents,
			Category:            it.Category,
		})
	}
	return out
}

func convertGatewayItems(items []*stripe.LineItem) []OrderLineItem {
	var out []OrderLineItem
	for _, li := range items {
		item := OrderLineItem{
			Name:     li.Description,
			Quantity: int(li.Quantity),
		}
		if li.Price != nil {
			item.SKU = priceSKU(li.Price)
			item.UnitPriceMinorUnits = li.Price.UnitAmount
			item.Category = li.Price.Metadata["category"]
		}
		out = append(out, item)
	}
	return out
}

func priceSKU(p *stripe.Price) string {
	if p.LookupKey != "" {
		return p.LookupKey
	}
	return p.ID
}

// planTierFromItems derives the membership tier from a plan lookup key like
// "plan_concierge", falling back to core.
func planTierFromItems(items []OrderLineItem) string {
	for _, it := range items {
		if strings.HasPrefix(it.SKU, "plan_") {
			return strings.TrimPrefix(it.SKU, "plan_")
		}
	}
	return domain.PlanTierCore
}
