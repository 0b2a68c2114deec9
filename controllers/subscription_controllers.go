package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

type SubscriptionController struct {
	DB            *gorm.DB
	Subscriptions *services.SubscriptionService
	Gateway       services.BillingGateway
}

func NewSubscriptionController(db *gorm.DB, subscriptions *services.SubscriptionService, gateway services.BillingGateway) *SubscriptionController {
	return &SubscriptionController{DB: db, Subscriptions: subscriptions, Gateway: gateway}
}

// GetPlans lists the plan catalog. Public so the pricing page can render
// without a session.
func (sc *SubscriptionController) GetPlans(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Available plans", services.AllPlans())
}

// GetCurrentSubscription reports the organization's plan, status and limits.
func (sc *SubscriptionController) GetCurrentSubscription(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var org models.Organization
	if err := sc.DB.First(&org, id.OrganizationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("organization not found"))
		return
	}

	plan := services.GetPlan(org.SubscriptionPlan)
	utils.RespondJSON(c, http.StatusOK, "Current subscription", gin.H{
		"plan":       plan,
		"status":     org.SubscriptionStatus,
		"expires_at": org.SubscriptionExpiresAt,
	})
}

// CreateCheckout starts a hosted payment session for a plan change and
// returns the redirect URL. The local plan only changes once the payment
// processor confirms via webhook.
func (sc *SubscriptionController) CreateCheckout(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	var input struct {
		PlanID       string `json:"plan_id" binding:"required"`
		BillingCycle string `json:"billing_cycle" binding:"required"`
		SuccessURL   string `json:"success_url" binding:"required"`
		CancelURL    string `json:"cancel_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := sc.DB.First(&user, id.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	checkoutURL, err := sc.Subscriptions.ChangePlan(id.OrganizationID, &id.UserID, user.Email,
		input.PlanID, input.BillingCycle, input.SuccessURL, input.CancelURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Checkout session created", gin.H{
		"checkout_url": checkoutURL,
	})
}

// CancelSubscription cancels the active subscription at the processor and
// downgrades the organization to the free plan.
func (sc *SubscriptionController) CancelSubscription(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	if err := sc.Subscriptions.Cancel(id.OrganizationID, &id.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Subscription cancelled", nil)
}

// GetSubscriptionHistory lists past and present subscription records.
func (sc *SubscriptionController) GetSubscriptionHistory(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	history, err := sc.Subscriptions.History(id.OrganizationID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Subscription history", history)
}

// HandleWebhook receives billing events from the payment processor. The
// signature is verified against the raw body before anything is applied.
// Unverifiable requests get 400 so the processor retries; processing
// failures after verification also return non-2xx for the same reason.
func (sc *SubscriptionController) HandleWebhook(c *gin.Context) {
	if sc.Gateway == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("billing is not configured"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unreadable payload"))
		return
	}

	event, err := sc.Gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.ErrorLogger.Printf("Webhook signature verification failed: %v", err)
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid signature"))
		return
	}

	if err := sc.Subscriptions.ApplyWebhookEvent(event); err != nil {
		utils.ErrorLogger.Printf("Webhook %s failed: %v", event.Type, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("event processing failed"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Webhook processed", nil)
}
