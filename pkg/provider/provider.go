package provider

// Shared shapes returned by the redirect-based provider clients. The
// payments package converts these into the canonical confirmation.

type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Item struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Category       string `json:"category"`
}
