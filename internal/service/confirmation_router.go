package service

import (
	"context"
	"log"
	"time"

	"vital/internal/models"
	"vital/internal/payments"
)

// Router outcomes, mirroring the confirmation state machine's terminal
// states. Only verification and materialization failures change the HTTP
// response; everything after materialization is best-effort.
const (
	OutcomeDone    = "done"
	OutcomeIgnored = "ignored"
	OutcomeRetry   = "retry"
)

type Outcome struct {
	Status      string
	OrderNumber string
	Created     bool
}

// ConfirmationRouter walks a verified event through normalization,
// materialization, documents and notification, isolating failures per
// stage. A failure downstream of materialization never unwinds it.
type ConfirmationRouter struct {
	normalizer   *payments.Normalizer
	materializer *Materializer
	documents    *DocumentService
	notifier     *Notifier
	budget       time.Duration
}

func NewConfirmationRouter(
	normalizer *payments.Normalizer,
	materializer *Materializer,
	documents *DocumentService,
	notifier *Notifier,
	budget time.Duration,
) *ConfirmationRouter {
	if budget <= 0 {
		budget = 5 * time.Second
	}
	return &ConfirmationRouter{
		normalizer:   normalizer,
		materializer: materializer,
		documents:    documents,
		notifier:     notifier,
		budget:       budget,
	}
}

// Process returns an error only for failures the caller must surface:
// normalization of a malformed payload, or a retryable storage failure
// (checked with errors.Is against payments.ErrRetryableStorage).
func (r *ConfirmationRouter) Process(ctx context.Context, ev payments.VerifiedEvent) (*Outcome, error) {
	conf, err := r.normalizer.Normalize(ctx, ev)
	if err != nil {
		return nil, err
	}
	if conf == nil {
		return &Outcome{Status: OutcomeIgnored}, nil
	}

	res, err := r.materializer.Materialize(ctx, conf)
	if err != nil {
		return &Outcome{Status: OutcomeRetry}, err
	}

	out := &Outcome{Status: OutcomeDone, Created: res.Created}
	if res.Order != nil {
		out.OrderNumber = res.Order.OrderNumber
	}

	// The confirmation is durable from here. Remaining stages run within
	// the pipeline budget and degrade to logged failures; the webhook
	// response is already decided.
	bctx, cancel := context.WithTimeout(context.Background(), r.budget)
	defer cancel()

	switch {
	case res.Order != nil && res.Created:
		docs, err := r.documents.Process(bctx, res.Order)
		if err != nil {
			log.Printf("[router] document pipeline degraded for order %s: %v", res.Order.OrderNumber, err)
		}
		var lmn *models.LmnRecord
		if docs != nil {
			lmn = docs.Lmn
		}
		if err := r.notifier.OrderConfirmed(bctx, res.Order, lmn); err != nil {
			log.Printf("[router] confirmation email failed for order %s: %v", res.Order.OrderNumber, err)
		}
		log.Printf("[router] done: order=%s created=%v", res.Order.OrderNumber, res.Created)
	case res.Membership != nil && res.Created:
		if err := r.notifier.MembershipStarted(bctx, res.Membership); err != nil {
			log.Printf("[router] welcome email failed for subscription %s: %v", res.Membership.SubscriptionID, err)
		}
		log.Printf("[router] done: membership=%s status=%s", res.Membership.SubscriptionID, res.Membership.SubscriptionStatus)
	default:
		// Redelivery or lifecycle update: one-time effects already ran.
		log.Printf("[router] done: converged, no new side effects (kind=%s ref=%s)", conf.Kind, conf.ExternalReference)
	}
	return out, nil
}
