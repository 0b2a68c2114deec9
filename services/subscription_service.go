package services

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/utils"
)

// SubscriptionService keeps the organization's plan fields consistent with
// the billing processor. Local state only changes once the processor
// confirms, either through a webhook or a synchronous cancellation.
type SubscriptionService struct {
	db      *gorm.DB
	gateway BillingGateway
	audit   *AuditLogger
}

func NewSubscriptionService(db *gorm.DB, gateway BillingGateway, audit *AuditLogger) *SubscriptionService {
	return &SubscriptionService{db: db, gateway: gateway, audit: audit}
}

// ChangePlan validates the requested plan and starts a hosted checkout.
// Returns the checkout URL. No local plan state is mutated here; the
// webhook confirms the change. Switching to the free plan goes through
// Cancel instead, since free has no billing subscription.
func (ss *SubscriptionService) ChangePlan(organizationID uint, userID *uint, userEmail, planID, billingCycle, successURL, cancelURL string) (string, error) {
	if ss.gateway == nil {
		return "", fmt.Errorf("%w: billing is not configured", ErrExternalService)
	}
	if !IsValidPlan(planID) {
		return "", fmt.Errorf("%w: unknown plan %q", ErrValidation, planID)
	}
	if billingCycle != BillingCycleMonthly && billingCycle != BillingCycleYearly {
		return "", fmt.Errorf("%w: billing cycle must be monthly or yearly", ErrValidation)
	}
	if planID == "free" {
		return "", fmt.Errorf("%w: downgrade to free by cancelling the subscription", ErrValidation)
	}

	plan := GetPlan(planID)
	priceID := plan.StripePriceID(billingCycle)
	if priceID == "" {
		return "", fmt.Errorf("%w: plan %q is not purchasable for %s billing", ErrValidation, planID, billingCycle)
	}

	var org models.Organization
	if err := ss.db.First(&org, organizationID).Error; err != nil {
		return "", ErrNotFound
	}

	if org.StripeCustomerID == "" {
		customerID, err := ss.gateway.CreateCustomer(userEmail, org.Name, org.ID)
		if err != nil {
			return "", err
		}
		err = ss.db.Model(&models.Organization{}).Where("id = ?", org.ID).
			Update("stripe_customer_id", customerID).Error
		if err != nil {
			return "", err
		}
		org.StripeCustomerID = customerID
	}

	checkoutURL, err := ss.gateway.CreateCheckoutSession(
		org.StripeCustomerID, priceID, planID, billingCycle, org.ID, successURL, cancelURL)
	if err != nil {
		return "", err
	}

	ss.audit.Record(organizationID, userID, "subscription_checkout_started", map[string]interface{}{
		"plan_id":       planID,
		"billing_cycle": billingCycle,
	})
	return checkoutURL, nil
}

// ApplyWebhookEvent is the state machine over billing events. Events are
// idempotent: the same event replayed converges to the same state, matched
// by the processor's subscription id.
func (ss *SubscriptionService) ApplyWebhookEvent(event *BillingEvent) error {
	switch event.Type {
	case "checkout.session.completed", "invoice.payment_succeeded":
		// The session/invoice payload does not carry period dates;
		// fetch the authoritative subscription state.
		if event.SubscriptionID == "" {
			return nil
		}
		sub, err := ss.gateway.GetSubscription(event.SubscriptionID)
		if err != nil {
			return err
		}
		return ss.applySubscriptionState(sub, event.OrganizationID)

	case "customer.subscription.created", "customer.subscription.updated":
		sub := &BillingSubscription{
			ID:           event.SubscriptionID,
			CustomerID:   event.CustomerID,
			Status:       event.Status,
			PlanID:       event.PlanID,
			BillingCycle: event.BillingCycle,
			PeriodStart:  event.PeriodStart,
			PeriodEnd:    event.PeriodEnd,
		}
		return ss.applySubscriptionState(sub, event.OrganizationID)

	case "customer.subscription.deleted":
		return ss.applyCancellation(event)
	}

	// Unhandled event types are acknowledged without side effects.
	utils.InfoLogger.Printf("subscription: ignoring webhook event %s", event.Type)
	return nil
}

// applySubscriptionState sets the organization plan fields and upserts the
// local Subscription row, all in one transaction.
func (ss *SubscriptionService) applySubscriptionState(sub *BillingSubscription, organizationID uint) error {
	org, err := ss.resolveOrganization(organizationID, sub.CustomerID)
	if err != nil {
		return err
	}
	if sub.PlanID == "" || !IsValidPlan(sub.PlanID) {
		return fmt.Errorf("%w: subscription %s has no valid plan metadata", ErrValidation, sub.ID)
	}

	plan := GetPlan(sub.PlanID)
	now := time.Now().UTC()

	tx := ss.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	orgUpdates := map[string]interface{}{
		"subscription_plan":          sub.PlanID,
		"subscription_status":        localStatus(sub.Status),
		"subscription_expires_at":    sub.PeriodEnd,
		"enable_badge_printing":      plan.Limits.BadgePrinting,
		"enable_email_notifications": plan.Limits.EmailNotifications,
		"updated_at":                 now,
	}
	if err := tx.Model(&models.Organization{}).Where("id = ?", org.ID).
		Updates(orgUpdates).Error; err != nil {
		tx.Rollback()
		return err
	}

	features, _ := json.Marshal(plan.Limits)
	record := models.Subscription{
		OrganizationID:       org.ID,
		PlanName:             plan.Name,
		Status:               localStatus(sub.Status),
		StripeSubscriptionID: sub.ID,
		BillingCycle:         sub.BillingCycle,
		StartDate:            sub.PeriodStart,
		EndDate:              &sub.PeriodEnd,
		Price:                plan.Price(sub.BillingCycle),
		Features:             string(features),
	}

	var existing models.Subscription
	err = tx.Where("stripe_subscription_id = ?", sub.ID).First(&existing).Error
	if err == nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = now
		if err := tx.Save(&record).Error; err != nil {
			tx.Rollback()
			return err
		}
	} else {
		record.CreatedAt = now
		record.UpdatedAt = now
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	ss.audit.Record(org.ID, nil, "subscription_applied", map[string]interface{}{
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
		"status":          localStatus(sub.Status),
	})
	return nil
}

// applyCancellation downgrades the organization to the free tier. Replays
// converge: a second deleted event for the same subscription finds the
// fields already set.
func (ss *SubscriptionService) applyCancellation(event *BillingEvent) error {
	org, err := ss.resolveOrganization(event.OrganizationID, event.CustomerID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	free := GetPlan("free")

	tx := ss.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Model(&models.Organization{}).Where("id = ?", org.ID).
		Updates(map[string]interface{}{
			"subscription_plan":          "free",
			"subscription_status":        "cancelled",
			"subscription_expires_at":    nil,
			"enable_badge_printing":      free.Limits.BadgePrinting,
			"enable_email_notifications": free.Limits.EmailNotifications,
			"updated_at":                 now,
		}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if event.SubscriptionID != "" {
		err := tx.Model(&models.Subscription{}).
			Where("stripe_subscription_id = ?", event.SubscriptionID).
			Updates(map[string]interface{}{
				"status":     "cancelled",
				"end_date":   now,
				"updated_at": now,
			}).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	ss.audit.Record(org.ID, nil, "subscription_cancelled", map[string]interface{}{
		"subscription_id": event.SubscriptionID,
	})
	return nil
}

// Cancel requests cancellation from the processor, then downgrades local
// state. A processor failure leaves local state untouched.
func (ss *SubscriptionService) Cancel(organizationID uint, userID *uint) error {
	if ss.gateway == nil {
		return fmt.Errorf("%w: billing is not configured", ErrExternalService)
	}

	var org models.Organization
	if err := ss.db.First(&org, organizationID).Error; err != nil {
		return ErrNotFound
	}
	if org.StripeCustomerID == "" {
		return fmt.Errorf("%w: organization has no billing account", ErrNotFound)
	}

	sub, err := ss.gateway.ActiveSubscription(org.StripeCustomerID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: no active subscription", ErrNotFound)
	}

	if err := ss.gateway.CancelSubscription(sub.ID); err != nil {
		return err
	}

	err = ss.applyCancellation(&BillingEvent{
		Type:           "customer.subscription.deleted",
		SubscriptionID: sub.ID,
		CustomerID:     org.StripeCustomerID,
		OrganizationID: org.ID,
	})
	if err != nil {
		return err
	}

	ss.audit.Record(org.ID, userID, "subscription_cancel_requested", map[string]interface{}{
		"subscription_id": sub.ID,
	})
	return nil
}

// History returns the organization's subscription records, newest first.
func (ss *SubscriptionService) History(organizationID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := ss.db.Where("organization_id = ?", organizationID).
		Order("start_date DESC").Find(&subs).Error
	return subs, err
}

// resolveOrganization locates the tenant for a webhook event, preferring
// the metadata organization id and falling back to the billing customer id.
// Payload ids are never trusted without a matching local row.
func (ss *SubscriptionService) resolveOrganization(organizationID uint, customerID string) (*models.Organization, error) {
	var org models.Organization
	if organizationID != 0 {
		if err := ss.db.First(&org, organizationID).Error; err == nil {
			return &org, nil
		}
	}
	if customerID != "" {
		if err := ss.db.Where("stripe_customer_id = ?", customerID).First(&org).Error; err == nil {
			return &org, nil
		}
	}
	return nil, ErrNotFound
}

// localStatus maps processor statuses onto the small set the application
// stores.
func localStatus(processorStatus string) string {
	switch processorStatus {
	case "active", "trialing", "":
		return "active"
	case "past_due", "unpaid":
		return "past_due"
	case "canceled", "cancelled", "incomplete_expired":
		return "cancelled"
	default:
		return processorStatus
	}
}
