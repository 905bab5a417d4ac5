package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vital/internal/models"
	"vital/internal/payments"
	"vital/internal/repository"
)

func newDocumentService(t *testing.T) (*DocumentService, *testDeps) {
	t.Helper()
	db := newTestDB(t)
	deps := &testDeps{
		db:     db,
		orders: repository.NewOrderRepository(db),
		docs:   repository.NewDocumentRepository(db),
	}
	return NewDocumentService(deps.docs, deps.orders), deps
}

var metabolicItem = payments.OrderLineItem{
	SKU: "GLP-1-2T-10MG-03ML", Name: "GLP-1 vial", Quantity: 1, UnitPriceMinorUnits: 50000, Category: "metabolic",
}

var accessoryItem = payments.OrderLineItem{
	SKU: "ACC-CASE", Name: "Travel case", Quantity: 2, UnitPriceMinorUnits: 2500, Category: "accessory",
}

func TestProcessIssuesLmnAndInvoice(t *testing.T) {
	svc, deps := newDocumentService(t)
	order := storedOrder(t, deps.db, []payments.OrderLineItem{metabolicItem, accessoryItem})

	result, err := svc.Process(context.Background(), order)
	require.NoError(t, err)
	require.NotNil(t, result.Lmn)
	require.NotNil(t, result.Invoice)

	// Only the eligible subset reaches the LMN; accessories are excluded.
	assert.Equal(t, int64(50000), result.Lmn.EligibleTotalCents)
	var lmnItems []payments.OrderLineItem
	require.NoError(t, json.Unmarshal([]byte(result.Lmn.Items), &lmnItems))
	require.Len(t, lmnItems, 1)
	assert.Equal(t, "metabolic", lmnItems[0].Category)

	// The invoice covers everything.
	assert.Equal(t, order.TotalAmountCents, result.Invoice.TotalCents)
	assert.Regexp(t, `^LMN-\d{8}-[0-9A-F]{5}$`, result.Lmn.LmnNumber)
	assert.Regexp(t, `^INV-\d{8}-[0-9A-F]{5}$`, result.Invoice.InvoiceNumber)
}

func TestProcessSkipsLmnWhenNothingEligible(t *testing.T) {
	svc, deps := newDocumentService(t)
	order := storedOrder(t, deps.db, []payments.OrderLineItem{accessoryItem})

	result, err := svc.Process(context.Background(), order)
	require.NoError(t, err)
	assert.Nil(t, result.Lmn, "accessory-only orders get no LMN")
	require.NotNil(t, result.Invoice)

	var count int64
	deps.db.Model(&models.LmnRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestProcessReusesExistingLmnNumber(t *testing.T) {
	svc, deps := newDocumentService(t)
	order := storedOrder(t, deps.db, []payments.OrderLineItem{metabolicItem})

	first, err := svc.Process(context.Background(), order)
	require.NoError(t, err)
	second, err := svc.Process(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, first.Lmn.LmnNumber, second.Lmn.LmnNumber)
	assert.Equal(t, first.Invoice.InvoiceNumber, second.Invoice.InvoiceNumber)

	var count int64
	deps.db.Model(&models.LmnRecord{}).Where("order_number = ?", order.OrderNumber).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProcessLmnFailureDoesNotBlockInvoice(t *testing.T) {
	svc, deps := newDocumentService(t)
	order := storedOrder(t, deps.db, []payments.OrderLineItem{metabolicItem})

	// Force the LMN write to fail while leaving invoices intact.
	require.NoError(t, deps.db.Migrator().DropTable(&models.LmnRecord{}))

	result, err := svc.Process(context.Background(), order)
	assert.Error(t, err)
	assert.Nil(t, result.Lmn)
	require.NotNil(t, result.Invoice, "invoice generation proceeds despite LMN failure")
}

func TestHasLmnEligibleItems(t *testing.T) {
	assert.True(t, HasLmnEligibleItems([]payments.OrderLineItem{metabolicItem, accessoryItem}))
	assert.False(t, HasLmnEligibleItems([]payments.OrderLineItem{accessoryItem}))
	assert.False(t, HasLmnEligibleItems(nil))
}

func TestLmnPDFRegeneratesFromRecord(t *testing.T) {
	svc, deps := newDocumentService(t)
	order := storedOrder(t, deps.db, []payments.OrderLineItem{metabolicItem})

	result, err := svc.Process(context.Background(), order)
	require.NoError(t, err)

	content, err := svc.LmnPDF(context.Background(), result.Lmn.LmnNumber)
	require.NoError(t, err)
	assert.True(t, len(content) > 0)
	assert.Equal(t, "%PDF", string(content[:4]))

	again, err := svc.LmnPDF(context.Background(), result.Lmn.LmnNumber)
	require.NoError(t, err)
	assert.Equal(t, content, again, "regeneration is deterministic")
}

func TestProcessStopsOnExpiredContext(t *testing.T) {
	svc, deps := newDocumentService(t)
	order := storedOrder(t, deps.db, []payments.OrderLineItem{metabolicItem})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Process(ctx, order)
	assert.Error(t, err)
	assert.Nil(t, result.Lmn)
	assert.Nil(t, result.Invoice)

	// No partial records once the deadline is gone.
	var lmnCount, invCount int64
	deps.db.Model(&models.LmnRecord{}).Count(&lmnCount)
	deps.db.Model(&models.InvoiceRecord{}).Count(&invCount)
	assert.Equal(t, int64(0), lmnCount)
	assert.Equal(t, int64(0), invCount)
}
