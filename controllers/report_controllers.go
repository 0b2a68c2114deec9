package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

type ReportController struct {
	DB      *gorm.DB
	Reports *services.ReportService
}

func NewReportController(db *gorm.DB, reports *services.ReportService) *ReportController {
	return &ReportController{DB: db, Reports: reports}
}

// parseReportFilter reads date range and optional filters from the query
// string. Dates use YYYY-MM-DD; the end date is widened to midnight of the
// following day so the whole day is included. Defaults to the last 30 days.
func parseReportFilter(c *gin.Context) (services.ReportFilter, error) {
	now := time.Now().UTC()
	filter := services.ReportFilter{
		Start: now.AddDate(0, 0, -30),
		End:   now,
	}

	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		filter.Start = start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		filter.End = end.AddDate(0, 0, 1)
	}
	if filter.End.Before(filter.Start) {
		return filter, errors.New("end_date is before start_date")
	}

	if raw := c.Query("staff_id"); raw != "" {
		staffID, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("invalid staff_id")
		}
		sid := uint(staffID)
		filter.StaffID = &sid
	}
	filter.Purpose = c.Query("purpose")

	return filter, nil
}

// GetCheckInReport returns the filtered check-in list together with
// aggregate statistics for the range.
func (rc *ReportController) GetCheckInReport(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	filter, err := parseReportFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	stats, checkins, err := rc.Reports.Stats(id.OrganizationID, filter)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Check-in report", gin.H{
		"stats":     stats,
		"check_ins": checkins,
	})
}

// GetDailyStats returns per-day check-in counts for the dashboard chart.
// ?days controls the window, capped at 90.
func (rc *ReportController) GetDailyStats(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid days"))
			return
		}
		days = parsed
	}
	if days > 90 {
		days = 90
	}

	counts, err := rc.Reports.DailyCounts(id.OrganizationID, days, time.Now().UTC())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily check-in counts", counts)
}
