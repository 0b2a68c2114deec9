package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/router"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the main flow:
// 1. Register an organization -> login -> token
// 2. Create a staff member (host)
// 3. Check a visitor in, fetch the generated badge
// 4. Check the visitor out
// 5. Pull the report and verify the visit is counted
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	r := setupIntegrationRouter(db)

	registerTest(t, r)
	token := loginTest(t, r)
	staffID := createStaffTest(t, r, token)
	checkinID := checkInTest(t, r, token, staffID)
	badgeTest(t, r, token, checkinID)
	checkOutTest(t, r, token, checkinID)
	reportTest(t, r, token)
}

// TestGlobalRateLimit hammers a cheap route on a fresh engine and expects
// the per-IP limiter to push back before the loop finishes.
func TestGlobalRateLimit(t *testing.T) {
	r := setupIntegrationRouter(setupIntegrationDB())

	limited := false
	for i := 0; i < 60; i++ {
		w := request(r, "GET", "/ping", "", nil)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.True(t, limited, "limiter never rejected a request")
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Staff{},
		&models.Visitor{},
		&models.CheckIn{},
		&models.Badge{},
		&models.PreregisteredVisitor{},
		&models.EmailTemplate{},
		&models.Document{},
		&models.Subscription{},
		&models.Log{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupIntegrationRouter(db *gorm.DB) *gin.Engine {
	audit := services.NewAuditLogger(db)
	notifications := services.NewNotificationService(db, nil, audit)
	badges := services.NewBadgeService(db, audit)
	checkins := services.NewCheckInService(db, notifications, badges, audit)

	return router.SetupRouter(router.Deps{
		DB:            db,
		Notifications: notifications,
		Badges:        badges,
		CheckIns:      checkins,
		Reports:       services.NewReportService(db),
		Subscriptions: services.NewSubscriptionService(db, nil, audit),
		Audit:         audit,
	})
}

func request(r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		panic(err)
	}
	return resp
}

func registerTest(t *testing.T, r *gin.Engine) {
	w := request(r, "POST", "/register", "", map[string]interface{}{
		"organization_name": "Integration Org",
		"username":          "intadmin",
		"email":             "admin@integration.test",
		"password":          "integration-pass",
		"first_name":        "Ingrid",
		"last_name":         "Admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func loginTest(t *testing.T, r *gin.Engine) string {
	w := request(r, "POST", "/login", "", map[string]interface{}{
		"email":    "admin@integration.test",
		"password": "integration-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope(w)["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func createStaffTest(t *testing.T, r *gin.Engine, token string) int {
	w := request(r, "POST", "/admin/staff", token, map[string]interface{}{
		"first_name": "Harry",
		"last_name":  "Host",
		"email":      "harry@integration.test",
		"department": "Engineering",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelope(w)["data"].(map[string]interface{})
	return int(data["id"].(float64))
}

func checkInTest(t *testing.T, r *gin.Engine, token string, staffID int) int {
	// Unauthenticated requests are turned away.
	w := request(r, "POST", "/admin/check-ins", "", map[string]interface{}{
		"first_name": "No", "last_name": "Token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, "POST", "/admin/check-ins", token, map[string]interface{}{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@integration.test",
		"company":    "Globex",
		"purpose":    "Sales Meeting",
		"staff_id":   staffID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := envelope(w)["data"].(map[string]interface{})
	assert.Nil(t, data["check_out_time"])
	return int(data["id"].(float64))
}

func badgeTest(t *testing.T, r *gin.Engine, token string, checkinID int) {
	w := request(r, "GET", fmt.Sprintf("/admin/check-ins/%d/badge", checkinID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	badge := envelope(w)["data"].(map[string]interface{})
	assert.Contains(t, badge["template_data"], "Jane Doe")

	badgeID := int(badge["id"].(float64))
	w = request(r, "POST", fmt.Sprintf("/admin/badges/%d/print", badgeID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func checkOutTest(t *testing.T, r *gin.Engine, token string, checkinID int) {
	w := request(r, "POST", fmt.Sprintf("/admin/check-ins/%d/check-out", checkinID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope(w)["data"].(map[string]interface{})
	assert.NotNil(t, data["check_out_time"])

	// Closing twice conflicts.
	w = request(r, "POST", fmt.Sprintf("/admin/check-ins/%d/check-out", checkinID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func reportTest(t *testing.T, r *gin.Engine, token string) {
	w := request(r, "GET", "/admin/reports/check-ins", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope(w)["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_check_ins"])
	assert.Equal(t, "Harry Host", stats["most_visited_host"])
}
