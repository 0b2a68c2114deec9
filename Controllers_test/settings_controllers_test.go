package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/controllers"
	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
)

func setupSettingsRouter(db *gorm.DB, userID, orgID uint, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	settingsCtrl := controllers.NewSettingsController(db, services.NewAuditLogger(db))

	router := gin.New()
	router.Use(asIdentity(userID, orgID, isAdmin))
	router.GET("/organization", settingsCtrl.GetOrganization)
	router.PATCH("/organization", settingsCtrl.UpdateOrganization)
	router.GET("/badge-template", settingsCtrl.GetBadgeTemplate)
	router.PUT("/badge-template", settingsCtrl.UpdateBadgeTemplate)
	router.GET("/email-templates", settingsCtrl.GetAllEmailTemplates)
	router.PATCH("/email-templates/:template_id", settingsCtrl.UpdateEmailTemplate)
	router.GET("/documents", settingsCtrl.GetAllDocuments)
	router.POST("/documents", settingsCtrl.CreateDocument)
	router.DELETE("/documents/:document_id", settingsCtrl.DeleteDocument)
	router.GET("/audit-logs", settingsCtrl.GetAuditLogs)
	return router
}

func TestUpdateOrganizationFlags(t *testing.T) {
	db := setupTestDB("settings_flags")
	org := seedOrg(db, "Settings Org", "basic")
	admin := seedAdmin(db, org.ID, "settingsadmin")
	router := setupSettingsRouter(db, admin.ID, org.ID, true)

	w := doJSON(router, "PATCH", "/organization", map[string]interface{}{
		"enable_auto_checkout":      false,
		"auto_checkout_delay_hours": 12,
		"contact_phone":             "+1 555 0100",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var fresh models.Organization
	db.First(&fresh, org.ID)
	assert.False(t, fresh.EnableAutoCheckout)
	assert.Equal(t, 12, fresh.AutoCheckoutDelayHours)
	assert.Equal(t, "+1 555 0100", fresh.ContactPhone)
	// Untouched fields survive the partial update.
	assert.True(t, fresh.EnableEmailNotifications)

	w = doJSON(router, "PATCH", "/organization", map[string]interface{}{
		"auto_checkout_delay_hours": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrganizationRequiresAdmin(t *testing.T) {
	db := setupTestDB("settings_admin_gate")
	org := seedOrg(db, "Settings Gate Org", "basic")
	member := seedAdmin(db, org.ID, "settingsmember")
	router := setupSettingsRouter(db, member.ID, org.ID, false)

	w := doJSON(router, "PATCH", "/organization", map[string]interface{}{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, "GET", "/organization", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomBrandingGatedByPlan(t *testing.T) {
	db := setupTestDB("settings_branding")
	org := seedOrg(db, "Branding Org", "basic")
	admin := seedAdmin(db, org.ID, "brandingadmin")
	router := setupSettingsRouter(db, admin.ID, org.ID, true)

	// The basic plan has no custom branding.
	w := doJSON(router, "PATCH", "/organization", map[string]interface{}{
		"logo": "base64-logo-bytes",
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	db.Model(&models.Organization{}).Where("id = ?", org.ID).
		Update("subscription_plan", "professional")
	w = doJSON(router, "PATCH", "/organization", map[string]interface{}{
		"logo": "base64-logo-bytes",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBadgeTemplateRoundTrip(t *testing.T) {
	db := setupTestDB("settings_badge_tpl")
	org := seedOrg(db, "Badge Tpl Org", "basic")
	admin := seedAdmin(db, org.ID, "badgetpladmin")
	router := setupSettingsRouter(db, admin.ID, org.ID, true)

	// With nothing stored, the default layout is served.
	w := doJSON(router, "GET", "/badge-template", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	layout := decodeEnvelope(w)["data"].(map[string]interface{})
	assert.Equal(t, "portrait", layout["layout"])

	custom := services.BadgeLayout{
		Layout: "landscape", Width: "4in", Height: "3in",
		Elements: []services.BadgeElement{
			{Type: "text", X: "50%", Y: "50%", Text: "{{visitor_name}}"},
		},
	}
	w = doJSON(router, "PUT", "/badge-template", custom)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/badge-template", nil)
	layout = decodeEnvelope(w)["data"].(map[string]interface{})
	assert.Equal(t, "landscape", layout["layout"])
}

func TestUpdateEmailTemplate(t *testing.T) {
	db := setupTestDB("settings_email_tpl")
	org := seedOrg(db, "Email Tpl Org", "basic")
	admin := seedAdmin(db, org.ID, "emailtpladmin")
	assert.NoError(t, services.SeedDefaultEmailTemplates(db, org.ID))
	router := setupSettingsRouter(db, admin.ID, org.ID, true)

	w := doJSON(router, "GET", "/email-templates", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	templates := decodeEnvelope(w)["data"].([]interface{})
	assert.Len(t, templates, 3)
	first := templates[0].(map[string]interface{})
	templateID := int(first["id"].(float64))

	w = doJSON(router, "PATCH", fmt.Sprintf("/email-templates/%d", templateID), map[string]interface{}{
		"subject": "{{visitor_name}} has arrived",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var tpl models.EmailTemplate
	db.First(&tpl, templateID)
	assert.Equal(t, "{{visitor_name}} has arrived", tpl.Subject)

	// Templates of other tenants are out of reach.
	other := seedOrg(db, "Other Email Org", "basic")
	assert.NoError(t, services.SeedDefaultEmailTemplates(db, other.ID))
	var foreign models.EmailTemplate
	db.Where("organization_id = ?", other.ID).First(&foreign)
	w = doJSON(router, "PATCH", fmt.Sprintf("/email-templates/%d", foreign.ID), map[string]interface{}{
		"subject": "hijacked",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsGatedByPlan(t *testing.T) {
	db := setupTestDB("settings_documents")
	org := seedOrg(db, "Docs Org", "free")
	admin := seedAdmin(db, org.ID, "docsadmin")
	router := setupSettingsRouter(db, admin.ID, org.ID, true)

	payload := map[string]interface{}{
		"name": "Visitor NDA", "content": "<p>NDA text</p>", "document_type": "nda",
	}

	// The free plan has no document signing.
	w := doJSON(router, "POST", "/documents", payload)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	db.Model(&models.Organization{}).Where("id = ?", org.ID).
		Update("subscription_plan", "basic")
	w = doJSON(router, "POST", "/documents", payload)
	assert.Equal(t, http.StatusCreated, w.Code)
	doc := decodeEnvelope(w)["data"].(map[string]interface{})
	docID := int(doc["id"].(float64))

	w = doJSON(router, "GET", "/documents", nil)
	docs := decodeEnvelope(w)["data"].([]interface{})
	assert.Len(t, docs, 1)

	w = doJSON(router, "DELETE", fmt.Sprintf("/documents/%d", docID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/documents", nil)
	docs = decodeEnvelope(w)["data"].([]interface{})
	assert.Len(t, docs, 0)
}

func TestAuditLogsAdminOnly(t *testing.T) {
	db := setupTestDB("settings_audit")
	org := seedOrg(db, "Audit Org", "basic")
	admin := seedAdmin(db, org.ID, "auditadmin")

	audit := services.NewAuditLogger(db)
	audit.Record(org.ID, &admin.ID, "visitor_check_in", map[string]interface{}{"check_in_id": 1})

	router := setupSettingsRouter(db, admin.ID, org.ID, true)
	w := doJSON(router, "GET", "/audit-logs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	logs := decodeEnvelope(w)["data"].([]interface{})
	if assert.Len(t, logs, 1) {
		entry := logs[0].(map[string]interface{})
		assert.Equal(t, "visitor_check_in", entry["event_type"])
	}

	memberRouter := setupSettingsRouter(db, admin.ID, org.ID, false)
	w = doJSON(memberRouter, "GET", "/audit-logs", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
