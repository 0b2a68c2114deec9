package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
)

// ReportFilter scopes a report query. Start and End are inclusive; the
// controller widens End to end-of-day. Purpose is a case-insensitive
// substring match.
type ReportFilter struct {
	Start   time.Time
	End     time.Time
	StaffID *uint
	Purpose string
}

// ReportStats are the derived aggregates, all computed over the filtered
// result set with no persistence side effects.
type ReportStats struct {
	TotalCheckIns        int            `json:"total_check_ins"`
	UniqueVisitors       int            `json:"unique_visitors"`
	FirstTimeVisitors    int            `json:"first_time_visitors"`
	ReturningVisitors    int            `json:"returning_visitors"`
	AvgDurationMinutes   float64        `json:"avg_duration_minutes"`
	MostVisitedHost      string         `json:"most_visited_host"`
	MostVisitedHostCount int            `json:"most_visited_host_count"`
	CheckInsByDay        map[string]int `json:"check_ins_by_day"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// CheckIns returns the filtered check-in history for one organization,
// newest first.
func (rs *ReportService) CheckIns(organizationID uint, filter ReportFilter) ([]models.CheckIn, error) {
	q := rs.db.Preload("Visitor").Preload("Host").
		Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("visitors.organization_id = ?", organizationID).
		Where("check_ins.check_in_time >= ? AND check_ins.check_in_time < ?", filter.Start, filter.End)

	if filter.StaffID != nil {
		q = q.Where("check_ins.staff_id = ?", *filter.StaffID)
	}
	if filter.Purpose != "" {
		q = q.Where("LOWER(check_ins.purpose) LIKE LOWER(?)", "%"+filter.Purpose+"%")
	}

	var checkins []models.CheckIn
	if err := q.Order("check_ins.check_in_time DESC").Find(&checkins).Error; err != nil {
		return nil, err
	}
	return checkins, nil
}

// Stats computes the aggregate statistics for a filtered set.
func (rs *ReportService) Stats(organizationID uint, filter ReportFilter) (*ReportStats, []models.CheckIn, error) {
	checkins, err := rs.CheckIns(organizationID, filter)
	if err != nil {
		return nil, nil, err
	}
	return ComputeStats(checkins), checkins, nil
}

// ComputeStats derives the report aggregates from an already filtered
// result set.
func ComputeStats(checkins []models.CheckIn) *ReportStats {
	stats := &ReportStats{
		TotalCheckIns: len(checkins),
		CheckInsByDay: make(map[string]int),
	}

	visitCounts := make(map[uint]int)
	hostCounts := make(map[string]int)
	hostOrder := []string{}

	var totalMinutes float64
	closed := 0

	for _, ci := range checkins {
		visitCounts[ci.VisitorID]++
		stats.CheckInsByDay[ci.CheckInTime.Format("2006-01-02")]++

		if ci.CheckOutTime != nil {
			totalMinutes += ci.CheckOutTime.Sub(ci.CheckInTime).Minutes()
			closed++
		}

		if ci.Host != nil {
			name := ci.Host.FullName()
			if _, seen := hostCounts[name]; !seen {
				hostOrder = append(hostOrder, name)
			}
			hostCounts[name]++
		}
	}

	stats.UniqueVisitors = len(visitCounts)
	for _, n := range visitCounts {
		// "first-time" means exactly one check-in within the filtered
		// set, not lifetime.
		if n == 1 {
			stats.FirstTimeVisitors++
		} else {
			stats.ReturningVisitors++
		}
	}

	if closed > 0 {
		stats.AvgDurationMinutes = totalMinutes / float64(closed)
	}

	// Ties go to the host first encountered in the result ordering.
	for _, name := range hostOrder {
		if hostCounts[name] > stats.MostVisitedHostCount {
			stats.MostVisitedHost = name
			stats.MostVisitedHostCount = hostCounts[name]
		}
	}

	return stats
}

// DailyCounts returns per-day check-in counts for the trailing `days` days,
// including zero-count days, for the charting layer.
func (rs *ReportService) DailyCounts(organizationID uint, days int, now time.Time) ([]map[string]interface{}, error) {
	if days <= 0 {
		days = 30
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))

	checkins, err := rs.CheckIns(organizationID, ReportFilter{Start: start, End: now})
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int)
	for _, ci := range checkins {
		byDay[ci.CheckInTime.Format("2006-01-02")]++
	}

	out := make([]map[string]interface{}, 0, days)
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		out = append(out, map[string]interface{}{
			"date":  key,
			"count": byDay[key],
		})
	}
	return out, nil
}
