package services

// PlanLimits holds the typed feature limits of a subscription tier.
// Integer limits of 0 mean unlimited.
type PlanLimits struct {
	VisitorLimit       int  `json:"visitor_limit"` // per calendar month
	StaffLimit         int  `json:"staff_limit"`
	EmailNotifications bool `json:"email_notifications"`
	PhotoCapture       bool `json:"visitor_photo_capture"`
	BadgePrinting      bool `json:"badge_printing"`
	DocumentSigning    bool `json:"document_signing"`
	Preregistration    bool `json:"pre_registration"`
	ReportsExport      bool `json:"reports_export"`
	CustomBranding     bool `json:"custom_branding"`
	APIAccess          bool `json:"api_access"`
}

// Plan describes one subscription tier. The free plan has no Stripe price
// ids and never touches the billing processor.
type Plan struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	PriceMonthly       float64    `json:"price_monthly"`
	PriceYearly        float64    `json:"price_yearly"`
	StripePriceMonthly string     `json:"-"`
	StripePriceYearly  string     `json:"-"`
	Limits             PlanLimits `json:"limits"`
}

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// planCatalog is loaded once at startup; order matters for listing.
var planCatalog = []Plan{
	{
		ID:           "free",
		Name:         "Free",
		Description:  "Basic visitor management for small organizations",
		PriceMonthly: 0,
		PriceYearly:  0,
		Limits: PlanLimits{
			VisitorLimit:       50,
			StaffLimit:         5,
			EmailNotifications: true,
			PhotoCapture:       true,
		},
	},
	{
		ID:                 "basic",
		Name:               "Basic",
		Description:        "Professional visitor management for growing organizations",
		PriceMonthly:       49,
		PriceYearly:        490,
		StripePriceMonthly: "price_basic_monthly",
		StripePriceYearly:  "price_basic_yearly",
		Limits: PlanLimits{
			VisitorLimit:       200,
			StaffLimit:         20,
			EmailNotifications: true,
			PhotoCapture:       true,
			BadgePrinting:      true,
			DocumentSigning:    true,
			Preregistration:    true,
			ReportsExport:      true,
		},
	},
	{
		ID:                 "professional",
		Name:               "Professional",
		Description:        "Advanced visitor management for medium businesses",
		PriceMonthly:       99,
		PriceYearly:        990,
		StripePriceMonthly: "price_professional_monthly",
		StripePriceYearly:  "price_professional_yearly",
		Limits: PlanLimits{
			VisitorLimit:       500,
			StaffLimit:         50,
			EmailNotifications: true,
			PhotoCapture:       true,
			BadgePrinting:      true,
			DocumentSigning:    true,
			Preregistration:    true,
			ReportsExport:      true,
			CustomBranding:     true,
		},
	},
	{
		ID:                 "enterprise",
		Name:               "Enterprise",
		Description:        "Complete visitor management for large organizations",
		PriceMonthly:       199,
		PriceYearly:        1990,
		StripePriceMonthly: "price_enterprise_monthly",
		StripePriceYearly:  "price_enterprise_yearly",
		Limits: PlanLimits{
			VisitorLimit:       2000,
			StaffLimit:         200,
			EmailNotifications: true,
			PhotoCapture:       true,
			BadgePrinting:      true,
			DocumentSigning:    true,
			Preregistration:    true,
			ReportsExport:      true,
			CustomBranding:     true,
			APIAccess:          true,
		},
	},
}

// AllPlans returns the catalog in display order.
func AllPlans() []Plan {
	out := make([]Plan, len(planCatalog))
	copy(out, planCatalog)
	return out
}

// GetPlan looks up a plan by id. Unknown ids fall back to the free plan,
// so an organization with a stale plan name never gains paid features.
func GetPlan(planID string) Plan {
	for _, p := range planCatalog {
		if p.ID == planID {
			return p
		}
	}
	return planCatalog[0]
}

// IsValidPlan reports whether planID names a catalog entry.
func IsValidPlan(planID string) bool {
	for _, p := range planCatalog {
		if p.ID == planID {
			return true
		}
	}
	return false
}

// StripePriceID returns the price id for a plan and billing cycle, empty if
// the plan is not purchasable (the free tier).
func (p Plan) StripePriceID(billingCycle string) string {
	switch billingCycle {
	case BillingCycleMonthly:
		return p.StripePriceMonthly
	case BillingCycleYearly:
		return p.StripePriceYearly
	}
	return ""
}

// Price returns the plan price for a billing cycle.
func (p Plan) Price(billingCycle string) float64 {
	if billingCycle == BillingCycleYearly {
		return p.PriceYearly
	}
	return p.PriceMonthly
}

// WithinLimit reports whether currentCount leaves room under limit.
// A zero limit means unlimited.
func WithinLimit(limit, currentCount int) bool {
	if limit <= 0 {
		return true
	}
	return currentCount < limit
}
