package provider

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// GatewayClient wraps the card gateway SDK for the two server-side lookups
// the reconciliation core needs: retrieving a checkout session after a
// redirect, and listing a session's line items.
type GatewayClient struct {
	api *client.API
}

func NewGatewayClient(secretKey string) *GatewayClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &GatewayClient{api: api}
}

// RetrieveSession fetches the checkout session named in the redirect URL.
func (g *GatewayClient) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("gateway session %s: %w", sessionID, err)
	}
	return sess, nil
}

// ListLineItems fetches the session's purchased items. Callers treat failure
// as a data-quality defect, not a fatal one.
func (g *GatewayClient) ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	iter := g.api.CheckoutSessions.ListLineItems(params)
	var items []*stripe.LineItem
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("gateway line items %s: %w", sessionID, err)
	}
	return items, nil
}
