package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"vital/internal/domain"
	"vital/internal/models"
	"vital/internal/payments"
	"vital/internal/repository"
	"vital/pkg/pdf"
)

const lmnAttestation = "Based on a licensed provider's review of the patient's " +
	"intake and treatment plan, the items listed above are medically necessary " +
	"for the treatment or mitigation of a diagnosed condition. This letter is " +
	"issued to support reimbursement through a tax-advantaged health account."

// PipelineResult carries whichever documents exist for an order after
// processing. Either field may be nil.
type PipelineResult struct {
	Lmn     *models.LmnRecord
	Invoice *models.InvoiceRecord
}

// DocumentService runs the eligibility and document pipeline: category
// filtering, LMN and invoice record creation, and on-demand PDF rendering.
type DocumentService struct {
	docs   *repository.DocumentRepository
	orders *repository.OrderRepository
}

func NewDocumentService(docs *repository.DocumentRepository, orders *repository.OrderRepository) *DocumentService {
	return &DocumentService{docs: docs, orders: orders}
}

// Process generates the order's documents. Records are persisted before any
// email goes out, so a dashboard query never shows a gap. Re-running for an
// order that already has documents reuses the existing numbers. An LMN
// failure does not stop invoice generation; errors are joined for the
// caller to log.
func (s *DocumentService) Process(ctx context.Context, order *models.Order) (*PipelineResult, error) {
	items, err := decodeItems(order.Items)
	if err != nil {
		return nil, fmt.Errorf("order %s items: %w", order.OrderNumber, err)
	}
	s.logTotalDiscrepancy(order, items)

	result := &PipelineResult{}
	var lmnErr error
	result.Lmn, lmnErr = s.ensureLmn(ctx, order, items)
	var invErr error
	result.Invoice, invErr = s.ensureInvoice(ctx, order, items)
	return result, errors.Join(lmnErr, invErr)
}

func (s *DocumentService) ensureLmn(ctx context.Context, order *models.Order, items []payments.OrderLineItem) (*models.LmnRecord, error) {
	existing, err := s.docs.GetLmnByOrder(ctx, order.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("lmn lookup %s: %w", order.OrderNumber, err)
	}
	if existing != nil {
		return existing, nil
	}
	eligible := eligibleItems(items)
	if len(eligible) == 0 {
		// Most orders may carry no eligible items; not an error.
		return nil, nil
	}
	eligibleJSON, err := json.Marshal(eligible)
	if err != nil {
		return nil, fmt.Errorf("marshal eligible items: %w", err)
	}
	rec := &models.LmnRecord{
		LmnNumber:          GenerateLmnNumber(time.Now()),
		OrderNumber:        order.OrderNumber,
		Items:              string(eligibleJSON),
		EligibleTotalCents: payments.LineItemTotal(eligible),
		Currency:           order.Currency,
		IssueDate:          time.Now(),
		AttestationText:    lmnAttestation,
		ProviderReference:  order.ExternalPaymentReference,
	}
	if err := s.docs.CreateLmn(ctx, rec); err != nil {
		return nil, fmt.Errorf("create lmn for %s: %w", order.OrderNumber, err)
	}
	log.Printf("[documents] issued %s for order %s (eligible total %d)", rec.LmnNumber, order.OrderNumber, rec.EligibleTotalCents)
	return rec, nil
}

func (s *DocumentService) ensureInvoice(ctx context.Context, order *models.Order, items []payments.OrderLineItem) (*models.InvoiceRecord, error) {
	existing, err := s.docs.GetInvoiceByOrder(ctx, order.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("invoice lookup %s: %w", order.OrderNumber, err)
	}
	if existing != nil {
		return existing, nil
	}
	rec := &models.InvoiceRecord{
		InvoiceNumber: GenerateInvoiceNumber(time.Now()),
		OrderNumber:   order.OrderNumber,
		Items:         order.Items,
		TotalCents:    order.TotalAmountCents,
		Currency:      order.Currency,
		IssueDate:     time.Now(),
	}
	if err := s.docs.CreateInvoice(ctx, rec); err != nil {
		return nil, fmt.Errorf("create invoice for %s: %w", order.OrderNumber, err)
	}
	log.Printf("[documents] issued %s for order %s", rec.InvoiceNumber, order.OrderNumber)
	return rec, nil
}

// LmnPDF regenerates the letter from its stored record.
func (s *DocumentService) LmnPDF(ctx context.Context, number string) ([]byte, error) {
	rec, err := s.docs.GetLmnByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByNumber(ctx, rec.OrderNumber)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(rec.Items)
	if err != nil {
		return nil, err
	}
	return pdf.RenderLmn(pdf.LmnData{
		LmnNumber:         rec.LmnNumber,
		OrderNumber:       rec.OrderNumber,
		IssueDate:         rec.IssueDate,
		CustomerName:      order.CustomerName,
		CustomerEmail:     order.CustomerEmail,
		Items:             pdfLines(items),
		EligibleTotal:     rec.EligibleTotalCents,
		Currency:          rec.Currency,
		Attestation:       rec.AttestationText,
		ProviderReference: rec.ProviderReference,
	})
}

// InvoicePDF regenerates the receipt from its stored record.
func (s *DocumentService) InvoicePDF(ctx context.Context, number string) ([]byte, error) {
	rec, err := s.docs.GetInvoiceByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByNumber(ctx, rec.OrderNumber)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(rec.Items)
	if err != nil {
		return nil, err
	}
	return pdf.RenderInvoice(pdf.InvoiceData{
		InvoiceNumber: rec.InvoiceNumber,
		OrderNumber:   rec.OrderNumber,
		IssueDate:     rec.IssueDate,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Items:         pdfLines(items),
		Total:         rec.TotalCents,
		Currency:      rec.Currency,
	})
}

// logTotalDiscrepancy compares the provider-authoritative total against the
// line-item derivation. Neither figure is adjusted; a material divergence
// (beyond one minor unit of rounding per item) is logged for review.
func (s *DocumentService) logTotalDiscrepancy(order *models.Order, items []payments.OrderLineItem) {
	if len(items) == 0 {
		return
	}
	derived := payments.LineItemTotal(items)
	diff := order.TotalAmountCents - derived
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(len(items)) {
		log.Printf("[documents] total mismatch on order %s: provider=%d line_items=%d", order.OrderNumber, order.TotalAmountCents, derived)
	}
}

func eligibleItems(items []payments.OrderLineItem) []payments.OrderLineItem {
	var out []payments.OrderLineItem
	for _, it := range items {
		if domain.LmnEligible(it.Category) {
			out = append(out, it)
		}
	}
	return out
}

// HasLmnEligibleItems reports whether any item survives the category
// exclusion filter.
func HasLmnEligibleItems(items []payments.OrderLineItem) bool {
	return len(eligibleItems(items)) > 0
}

func decodeItems(raw string) ([]payments.OrderLineItem, error) {
	if raw == "" {
		return nil, nil
	}
	var items []payments.OrderLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func pdfLines(items []payments.OrderLineItem) []pdf.Line {
	var out []pdf.Line
	for _, it := range items {
		out = append(out, pdf.Line{
			SKU:            it.SKU,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceMinorUnits,
			TotalCents:     it.UnitPriceMinorUnits * int64(it.Quantity),
		})
	}
	return out
}

// GenerateLmnNumber mints an LMN-YYYYMMDD-XXXXX identifier.
func GenerateLmnNumber(now time.Time) string {
	return fmt.Sprintf("LMN-%s-%s", now.Format("20060102"), randomSuffix())
}

// GenerateInvoiceNumber mints an INV-YYYYMMDD-XXXXX identifier.
func GenerateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), randomSuffix())
}
