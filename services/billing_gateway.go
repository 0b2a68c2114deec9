package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// BillingSubscription is the processor-neutral view of one subscription.
type BillingSubscription struct {
	ID           string
	CustomerID   string
	Status       string
	PlanID       string
	BillingCycle string
	PeriodStart  time.Time
	PeriodEnd    time.Time
}

// BillingEvent is a normalized webhook event from the payment processor.
type BillingEvent struct {
	Type           string
	SubscriptionID string
	CustomerID     string
	Status         string
	PlanID         string
	BillingCycle   string
	OrganizationID uint
	PeriodStart    time.Time
	PeriodEnd      time.Time
}

// BillingGateway abstracts the payment processor so the subscription
// service can be exercised with a fake in tests.
type BillingGateway interface {
	// CreateCustomer registers the organization with the processor and
	// returns the billing customer id.
	CreateCustomer(email, name string, organizationID uint) (string, error)

	// CreateCheckoutSession starts a hosted subscription checkout and
	// returns its redirect URL.
	CreateCheckoutSession(customerID, priceID, planID, billingCycle string, organizationID uint, successURL, cancelURL string) (string, error)

	// GetSubscription fetches one subscription by its processor id.
	GetSubscription(subscriptionID string) (*BillingSubscription, error)

	// ActiveSubscription returns the customer's current active
	// subscription, or nil when there is none.
	ActiveSubscription(customerID string) (*BillingSubscription, error)

	// CancelSubscription cancels a subscription immediately.
	CancelSubscription(subscriptionID string) error

	// VerifyWebhook checks the event signature and normalizes the
	// payload.
	VerifyWebhook(payload []byte, signature string) (*BillingEvent, error)
}

// StripeGateway implements BillingGateway on the Stripe API.
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the Stripe client from STRIPE_SECRET_KEY and
// STRIPE_WEBHOOK_SECRET.
func NewStripeGateway() (*StripeGateway, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	stripe.Key = key

	return &StripeGateway{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}, nil
}

func (g *StripeGateway) CreateCustomer(email, name string, organizationID uint) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.AddMetadata("organization_id", strconv.FormatUint(uint64(organizationID), 10))

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return cust.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(customerID, priceID, planID, billingCycle string, organizationID uint, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"organization_id": strconv.FormatUint(uint64(organizationID), 10),
				"plan_id":         planID,
				"billing_cycle":   billingCycle,
			},
		},
	}
	params.AddMetadata("organization_id", strconv.FormatUint(uint64(organizationID), 10))
	params.AddMetadata("plan_id", planID)
	params.AddMetadata("billing_cycle", billingCycle)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) GetSubscription(subscriptionID string) (*BillingSubscription, error) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return fromStripeSubscription(sub), nil
}

func (g *StripeGateway) ActiveSubscription(customerID string) (*BillingSubscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)

	iter := subscription.List(params)
	for iter.Next() {
		return fromStripeSubscription(iter.Subscription()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return nil, nil
}

func (g *StripeGateway) CancelSubscription(subscriptionID string) error {
	if _, err := subscription.Cancel(subscriptionID, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return nil
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*BillingEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook verification failed: %v", ErrValidation, err)
	}
	return normalizeStripeEvent(&event)
}

func normalizeStripeEvent(event *stripe.Event) (*BillingEvent, error) {
	be := &BillingEvent{Type: string(event.Type)}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := sess.UnmarshalJSON(event.Data.Raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if sess.Subscription != nil {
			be.SubscriptionID = sess.Subscription.ID
		}
		if sess.Customer != nil {
			be.CustomerID = sess.Customer.ID
		}
		be.PlanID = sess.Metadata["plan_id"]
		be.BillingCycle = sess.Metadata["billing_cycle"]
		be.OrganizationID = parseOrgID(sess.Metadata)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := sub.UnmarshalJSON(event.Data.Raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		bs := fromStripeSubscription(&sub)
		be.SubscriptionID = bs.ID
		be.CustomerID = bs.CustomerID
		be.Status = bs.Status
		be.PlanID = bs.PlanID
		be.BillingCycle = bs.BillingCycle
		be.PeriodStart = bs.PeriodStart
		be.PeriodEnd = bs.PeriodEnd
		be.OrganizationID = parseOrgID(sub.Metadata)

	case "invoice.payment_succeeded", "invoice.payment_failed":
		var inv stripe.Invoice
		if err := inv.UnmarshalJSON(event.Data.Raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if inv.Customer != nil {
			be.CustomerID = inv.Customer.ID
		}
		if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && inv.Parent.SubscriptionDetails.Subscription != nil {
			be.SubscriptionID = inv.Parent.SubscriptionDetails.Subscription.ID
		}
	}

	return be, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *BillingSubscription {
	bs := &BillingSubscription{
		ID:           sub.ID,
		Status:       string(sub.Status),
		PlanID:       sub.Metadata["plan_id"],
		BillingCycle: sub.Metadata["billing_cycle"],
	}
	if sub.Customer != nil {
		bs.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		bs.PeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		bs.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	return bs
}

func parseOrgID(metadata map[string]string) uint {
	raw := metadata["organization_id"]
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
