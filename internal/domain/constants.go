package domain

const (
	ProviderCardDirect  = "card_direct"
	ProviderCardGateway = "card_gateway"
	ProviderBnplA       = "bnpl_a"
	ProviderBnplB       = "bnpl_b"
)

const (
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

const (
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

const (
	ModeSubscription = "subscription"
	ModeOneTime      = "one_time"
)

const (
	RoleAdmin   = "ADMIN"
	RoleSupport = "SUPPORT"
)

// Product categories carried on checkout line items.
const (
	CategoryMetabolic  = "metabolic"
	CategoryHormone    = "hormone"
	CategoryPeptide    = "peptide"
	CategoryDiagnostic = "diagnostic"
	CategoryAccessory  = "accessory"
	CategorySupplies   = "supplies"
)

// Categories never covered by a Letter of Medical Necessity. Everything
// else is eligible by default.
var LmnExcludedCategories = map[string]bool{
	CategoryAccessory: true,
	CategorySupplies:  true,
}

// LmnEligible reports whether items of the given category can appear on an LMN.
func LmnEligible(category string) bool {
	return !LmnExcludedCategories[category]
}

// Membership plan tiers.
const (
	PlanTierCore      = "core"
	PlanTierPlus      = "plus"
	PlanTierConcierge = "concierge"
)
