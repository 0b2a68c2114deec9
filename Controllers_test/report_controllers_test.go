package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/controllers"
	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
)

func setupReportRouter(db *gorm.DB, userID, orgID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reportCtrl := controllers.NewReportController(db, services.NewReportService(db))

	router := gin.New()
	router.Use(asIdentity(userID, orgID, true))
	router.GET("/reports/check-ins", reportCtrl.GetCheckInReport)
	router.GET("/reports/daily", reportCtrl.GetDailyStats)
	return router
}

func seedReportData(db *gorm.DB, orgID uint, host models.Staff) {
	now := time.Now().UTC()
	visitor := models.Visitor{
		FirstName: "Jane", LastName: "Doe",
		OrganizationID: orgID, CreatedAt: now, UpdatedAt: now,
	}
	db.Create(&visitor)

	out := now.Add(-time.Hour)
	db.Create(&models.CheckIn{
		VisitorID: visitor.ID, StaffID: &host.ID,
		CheckInTime: now.Add(-2 * time.Hour), CheckOutTime: &out,
		Purpose: "Sales Meeting", CreatedAt: now, UpdatedAt: now,
	})
	db.Create(&models.CheckIn{
		VisitorID: visitor.ID, CheckInTime: now.Add(-30 * time.Minute),
		Purpose: "Interview", CreatedAt: now, UpdatedAt: now,
	})
}

func TestCheckInReport(t *testing.T) {
	db := setupTestDB("report_basic")
	org := seedOrg(db, "Report Org", "basic")
	admin := seedAdmin(db, org.ID, "reportadmin")
	host := seedHost(db, org.ID, "Alice", "Anders")
	seedReportData(db, org.ID, host)
	router := setupReportRouter(db, admin.ID, org.ID)

	w := doJSON(router, "GET", "/reports/check-ins", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(w)["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total_check_ins"])
	assert.EqualValues(t, 1, stats["unique_visitors"])
	assert.Equal(t, "Alice Anders", stats["most_visited_host"])

	checkins := data["check_ins"].([]interface{})
	assert.Len(t, checkins, 2)
}

func TestCheckInReportFilters(t *testing.T) {
	db := setupTestDB("report_filter")
	org := seedOrg(db, "Filter Org", "basic")
	admin := seedAdmin(db, org.ID, "filteradmin")
	host := seedHost(db, org.ID, "Alice", "Anders")
	seedReportData(db, org.ID, host)
	router := setupReportRouter(db, admin.ID, org.ID)

	w := doJSON(router, "GET", "/reports/check-ins?purpose=sales", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(w)["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_check_ins"])

	// A range fully in the past excludes today's visits.
	w = doJSON(router, "GET", "/reports/check-ins?start_date=2020-01-01&end_date=2020-01-31", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(w)["data"].(map[string]interface{})
	stats = data["stats"].(map[string]interface{})
	assert.EqualValues(t, 0, stats["total_check_ins"])

	w = doJSON(router, "GET", "/reports/check-ins?start_date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", "/reports/check-ins?start_date=2026-02-01&end_date=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInReportEndDateCoversWholeDay(t *testing.T) {
	db := setupTestDB("report_endday")
	org := seedOrg(db, "End Day Org", "basic")
	admin := seedAdmin(db, org.ID, "enddayadmin")
	router := setupReportRouter(db, admin.ID, org.ID)

	now := time.Now().UTC()
	visitor := models.Visitor{
		FirstName: "Jane", LastName: "Doe",
		OrganizationID: org.ID, CreatedAt: now, UpdatedAt: now,
	}
	db.Create(&visitor)

	// One visit at the last second of Jan 15, one at midnight of Jan 16.
	lastSecond := time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)
	nextMidnight := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	db.Create(&models.CheckIn{
		VisitorID: visitor.ID, CheckInTime: lastSecond,
		Purpose: "Late visit", CreatedAt: now, UpdatedAt: now,
	})
	db.Create(&models.CheckIn{
		VisitorID: visitor.ID, CheckInTime: nextMidnight,
		Purpose: "Next day", CreatedAt: now, UpdatedAt: now,
	})

	w := doJSON(router, "GET", "/reports/check-ins?start_date=2026-01-15&end_date=2026-01-15", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(w)["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_check_ins"])

	checkins := data["check_ins"].([]interface{})
	if assert.Len(t, checkins, 1) {
		row := checkins[0].(map[string]interface{})
		assert.Equal(t, "Late visit", row["purpose"])
	}
}

func TestDailyStats(t *testing.T) {
	db := setupTestDB("report_dailystats")
	org := seedOrg(db, "Daily Org", "basic")
	admin := seedAdmin(db, org.ID, "dailyadmin")
	host := seedHost(db, org.ID, "Alice", "Anders")
	seedReportData(db, org.ID, host)
	router := setupReportRouter(db, admin.ID, org.ID)

	w := doJSON(router, "GET", "/reports/daily?days=7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	days := decodeEnvelope(w)["data"].([]interface{})
	assert.Len(t, days, 7)

	w = doJSON(router, "GET", "/reports/daily?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
