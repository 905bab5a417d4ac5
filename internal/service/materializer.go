package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vital/internal/domain"
	"vital/internal/models"
	"vital/internal/payments"
	"vital/internal/repository"
)

// MaterializeResult reports what a confirmation became. Created gates the
// one-time downstream effects: redeliveries come back with Created=false and
// skip document generation and email.
type MaterializeResult struct {
	Order      *models.Order
	Membership *models.Membership
	Created    bool
}

type Materializer struct {
	orders      *repository.OrderRepository
	memberships *repository.MembershipRepository
}

func NewMaterializer(orders *repository.OrderRepository, memberships *repository.MembershipRepository) *Materializer {
	return &Materializer{orders: orders, memberships: memberships}
}

// Materialize durably persists the confirmation. Storage failures other than
// idempotency conflicts are wrapped as retryable so the webhook response
// tells the provider to redeliver.
func (m *Materializer) Materialize(ctx context.Context, conf *payments.PaymentConfirmation) (*MaterializeResult, error) {
	switch {
	case conf.Kind == payments.KindRefund:
		return m.applyRefund(ctx, conf)
	case conf.Kind == payments.KindSubscriptionUpdate || conf.Mode == domain.ModeSubscription:
		return m.upsertMembership(ctx, conf)
	default:
		return m.createOrder(ctx, conf)
	}
}

func (m *Materializer) createOrder(ctx context.Context, conf *payments.PaymentConfirmation) (*MaterializeResult, error) {
	itemsJSON, err := json.Marshal(conf.LineItems)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	order := &models.Order{
		OrderNumber:              GenerateOrderNumber(),
		CustomerEmail:            conf.CustomerEmail,
		CustomerName:             conf.CustomerName,
		Provider:                 conf.Provider,
		ExternalPaymentReference: conf.ExternalReference,
		Status:                   domain.OrderStatusPaid,
		TotalAmountCents:         conf.AmountMinorUnits,
		Currency:                 conf.Currency,
		Items:                    string(itemsJSON),
	}
	created, err := m.orders.CreateIfAbsent(ctx, order)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Order-number collision: regenerate once and retry.
		order.OrderNumber = GenerateOrderNumber()
		created, err = m.orders.CreateIfAbsent(ctx, order)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", payments.ErrRetryableStorage, conf.ExternalReference, err)
	}
	if !created {
		log.Printf("[materializer] duplicate confirmation for %s, converged on order %s", conf.ExternalReference, order.OrderNumber)
	}
	return &MaterializeResult{Order: order, Created: created}, nil
}

func (m *Materializer) upsertMembership(ctx context.Context, conf *payments.PaymentConfirmation) (*MaterializeResult, error) {
	if conf.SubscriptionID == "" {
		// The unique index would key this row on the empty string and the
		// next id-less confirmation would clobber it. Redelivery cannot fix
		// a missing id, so the error stays non-retryable.
		return nil, fmt.Errorf("membership confirmation without subscription id (provider %s, ref %q)", conf.Provider, conf.ExternalReference)
	}
	status := conf.SubscriptionStatus
	if status == "" {
		status = domain.SubscriptionActive
	}
	tier := conf.PlanTier
	if tier == "" {
		tier = domain.PlanTierCore
	}
	membership := &models.Membership{
		SubscriptionID:     conf.SubscriptionID,
		CustomerEmail:      conf.CustomerEmail,
		CustomerName:       conf.CustomerName,
		Provider:           conf.Provider,
		PlanTier:           tier,
		SubscriptionStatus: status,
	}
	if status == domain.SubscriptionCancelled {
		now := time.Now()
		membership.CancelledAt = &now
	}
	created, err := m.memberships.Upsert(ctx, membership)
	if err != nil {
		return nil, fmt.Errorf("%w: membership %s: %v", payments.ErrRetryableStorage, conf.SubscriptionID, err)
	}
	return &MaterializeResult{Membership: membership, Created: created}, nil
}

func (m *Materializer) applyRefund(ctx context.Context, conf *payments.PaymentConfirmation) (*MaterializeResult, error) {
	if _, err := m.orders.GetByReference(ctx, conf.ExternalReference); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to transition; acknowledge so the provider stops.
			log.Printf("[materializer] refund for unknown reference %s ignored", conf.ExternalReference)
			return &MaterializeResult{}, nil
		}
		return nil, fmt.Errorf("%w: refund lookup %s: %v", payments.ErrRetryableStorage, conf.ExternalReference, err)
	}
	if err := m.orders.UpdateStatus(ctx, conf.ExternalReference, domain.OrderStatusRefunded); err != nil {
		return nil, fmt.Errorf("%w: refund %s: %v", payments.ErrRetryableStorage, conf.ExternalReference, err)
	}
	order, err := m.orders.GetByReference(ctx, conf.ExternalReference)
	if err != nil {
		return nil, fmt.Errorf("%w: refund reload %s: %v", payments.ErrRetryableStorage, conf.ExternalReference, err)
	}
	return &MaterializeResult{Order: order}, nil
}

// GenerateOrderNumber mints a human-readable order number. Uniqueness is
// enforced by the DB constraint, not the suffix.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:5])
}
