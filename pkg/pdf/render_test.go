package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLmn() LmnData {
	return LmnData{
		LmnNumber:     "LMN-20260115-A1B2C",
		OrderNumber:   "ORD-1700000000000-XYZ12",
		IssueDate:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CustomerName:  "Pat Example",
		CustomerEmail: "pat@example.com",
		Items: []Line{
			{SKU: "GLP-1-2T-10MG-03ML", Name: "GLP-1 vial", Quantity: 1, UnitPriceCents: 50000, TotalCents: 50000},
		},
		EligibleTotal:     50000,
		Currency:          "USD",
		Attestation:       "The items listed above are medically necessary.",
		ProviderReference: "pi_123",
	}
}

func TestRenderLmnProducesPDF(t *testing.T) {
	content, err := RenderLmn(sampleLmn())
	require.NoError(t, err)
	require.True(t, len(content) > 500)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestRenderLmnIsDeterministic(t *testing.T) {
	a, err := RenderLmn(sampleLmn())
	require.NoError(t, err)
	b, err := RenderLmn(sampleLmn())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	content, err := RenderInvoice(InvoiceData{
		InvoiceNumber: "INV-20260115-D3E4F",
		OrderNumber:   "ORD-1700000000000-XYZ12",
		IssueDate:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CustomerEmail: "pat@example.com",
		Items: []Line{
			{SKU: "ACC-CASE", Name: "Travel case", Quantity: 2, UnitPriceCents: 2500, TotalCents: 5000},
		},
		Total:    5000,
		Currency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestMoneyFormatsMinorUnits(t *testing.T) {
	assert.Equal(t, "500.00 USD", money(50000, "usd"))
	assert.Equal(t, "0.05 USD", money(5, "USD"))
	assert.Equal(t, "-1.23 EUR", money(-123, "EUR"))
	assert.Equal(t, "0.00 USD", money(0, ""))
}
