package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

type SettingsController struct {
	DB    *gorm.DB
	Audit *services.AuditLogger
}

func NewSettingsController(db *gorm.DB, audit *services.AuditLogger) *SettingsController {
	return &SettingsController{DB: db, Audit: audit}
}

// GetOrganization returns the tenant's profile, branding and feature flags.
func (sc *SettingsController) GetOrganization(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var org models.Organization
	if err := sc.DB.First(&org, id.OrganizationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("organization not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Organization settings", org)
}

// UpdateOrganization applies a partial update to profile, branding and
// feature flags. Subscription fields are never writable here.
func (sc *SettingsController) UpdateOrganization(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	var org models.Organization
	if err := sc.DB.First(&org, id.OrganizationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("organization not found"))
		return
	}

	var input struct {
		Name                     *string `json:"name"`
		Logo                     *string `json:"logo"`
		PrimaryColor             *string `json:"primary_color"`
		SecondaryColor           *string `json:"secondary_color"`
		ContactEmail             *string `json:"contact_email"`
		ContactPhone             *string `json:"contact_phone"`
		Address                  *string `json:"address"`
		EnablePhotoCapture       *bool   `json:"enable_photo_capture"`
		EnableBadgePrinting      *bool   `json:"enable_badge_printing"`
		EnableAutoCheckout       *bool   `json:"enable_auto_checkout"`
		EnableEmailNotifications *bool   `json:"enable_email_notifications"`
		AutoCheckoutDelayHours   *int    `json:"auto_checkout_delay_hours"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	limits := services.GetPlan(org.SubscriptionPlan).Limits

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Name != nil {
		if *input.Name == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("name cannot be empty"))
			return
		}
		updates["name"] = *input.Name
	}
	if input.Logo != nil {
		if !limits.CustomBranding {
			utils.RespondError(c, http.StatusPaymentRequired, errors.New("custom branding is not available on the current plan"))
			return
		}
		updates["logo"] = *input.Logo
	}
	if input.PrimaryColor != nil {
		updates["primary_color"] = *input.PrimaryColor
	}
	if input.SecondaryColor != nil {
		updates["secondary_color"] = *input.SecondaryColor
	}
	if input.ContactEmail != nil {
		updates["contact_email"] = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		updates["contact_phone"] = *input.ContactPhone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.EnablePhotoCapture != nil {
		updates["enable_photo_capture"] = *input.EnablePhotoCapture
	}
	if input.EnableBadgePrinting != nil {
		updates["enable_badge_printing"] = *input.EnableBadgePrinting
	}
	if input.EnableAutoCheckout != nil {
		updates["enable_auto_checkout"] = *input.EnableAutoCheckout
	}
	if input.EnableEmailNotifications != nil {
		updates["enable_email_notifications"] = *input.EnableEmailNotifications
	}
	if input.AutoCheckoutDelayHours != nil {
		if *input.AutoCheckoutDelayHours < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("auto_checkout_delay_hours must be at least 1"))
			return
		}
		updates["auto_checkout_delay_hours"] = *input.AutoCheckoutDelayHours
	}

	if err := sc.DB.Model(&org).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "organization_updated", map[string]interface{}{
		"fields": len(updates) - 1,
	})
	utils.RespondJSON(c, http.StatusOK, "Organization updated", org)
}

// GetBadgeTemplate returns the stored badge layout, or the default layout
// when none has been customized.
func (sc *SettingsController) GetBadgeTemplate(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var org models.Organization
	if err := sc.DB.First(&org, id.OrganizationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("organization not found"))
		return
	}

	var layout services.BadgeLayout
	if org.BadgeTemplate == "" || json.Unmarshal([]byte(org.BadgeTemplate), &layout) != nil {
		layout = services.DefaultBadgeLayout(org.Name)
	}
	utils.RespondJSON(c, http.StatusOK, "Badge template", layout)
}

// UpdateBadgeTemplate replaces the badge layout. The body must be a valid
// layout document; it is re-marshalled before storing so junk never lands
// in the column.
func (sc *SettingsController) UpdateBadgeTemplate(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	var layout services.BadgeLayout
	if err := c.ShouldBindJSON(&layout); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid badge layout"))
		return
	}

	raw, err := json.Marshal(layout)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid badge layout"))
		return
	}

	err = sc.DB.Model(&models.Organization{}).
		Where("id = ?", id.OrganizationID).
		Updates(map[string]interface{}{
			"badge_template": string(raw),
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "badge_template_updated", nil)
	utils.RespondJSON(c, http.StatusOK, "Badge template updated", layout)
}

// GetAllEmailTemplates lists the organization's email templates.
func (sc *SettingsController) GetAllEmailTemplates(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var templates []models.EmailTemplate
	err := sc.DB.Where("organization_id = ?", id.OrganizationID).
		Order("template_type").Find(&templates).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of email templates", templates)
}

// UpdateEmailTemplate edits a template's name, subject or body. The
// template type is fixed at creation.
func (sc *SettingsController) UpdateEmailTemplate(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	templateID, _ := strconv.Atoi(c.Param("template_id"))
	var template models.EmailTemplate
	err := sc.DB.Where("id = ? AND organization_id = ?", templateID, id.OrganizationID).
		First(&template).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("email template not found"))
		return
	}

	var input struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Subject != "" {
		updates["subject"] = input.Subject
	}
	if input.Body != "" {
		updates["body"] = input.Body
	}

	if err := sc.DB.Model(&template).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "email_template_updated", map[string]interface{}{
		"template_id":   template.ID,
		"template_type": template.TemplateType,
	})
	utils.RespondJSON(c, http.StatusOK, "Email template updated", template)
}

// GetAllDocuments lists check-in documents (NDAs, policies, waivers).
func (sc *SettingsController) GetAllDocuments(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var documents []models.Document
	err := sc.DB.Where("organization_id = ?", id.OrganizationID).
		Order("created_at DESC").Find(&documents).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of documents", documents)
}

// CreateDocument uploads a new check-in document. Gated by the plan's
// document signing feature.
func (sc *SettingsController) CreateDocument(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	var org models.Organization
	if err := sc.DB.First(&org, id.OrganizationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("organization not found"))
		return
	}
	if !services.GetPlan(org.SubscriptionPlan).Limits.DocumentSigning {
		utils.RespondError(c, http.StatusPaymentRequired, errors.New("document signing is not available on the current plan"))
		return
	}

	var input struct {
		Name         string `json:"name" binding:"required"`
		Content      string `json:"content" binding:"required"`
		DocumentType string `json:"document_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	document := models.Document{
		Name:           input.Name,
		Content:        input.Content,
		DocumentType:   input.DocumentType,
		OrganizationID: id.OrganizationID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := sc.DB.Create(&document).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "document_created", map[string]interface{}{
		"document_id":   document.ID,
		"document_type": document.DocumentType,
	})
	utils.RespondJSON(c, http.StatusCreated, "Document created", document)
}

// DeleteDocument removes a check-in document.
func (sc *SettingsController) DeleteDocument(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	documentID, _ := strconv.Atoi(c.Param("document_id"))
	var document models.Document
	err := sc.DB.Where("id = ? AND organization_id = ?", documentID, id.OrganizationID).
		First(&document).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("document not found"))
		return
	}

	if err := sc.DB.Delete(&document).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "document_deleted", map[string]interface{}{
		"document_id": document.ID,
	})
	utils.RespondJSON(c, http.StatusOK, "Document deleted", nil)
}

// GetAuditLogs lists recent audit events, newest first. Admin only.
func (sc *SettingsController) GetAuditLogs(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}
	if !requireAdmin(c, id) {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	var logs []models.Log
	err := sc.DB.Where("organization_id = ?", id.OrganizationID).
		Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Audit logs", logs)
}
