package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/utils"
)

// CheckInService owns the visitor lifecycle: opening visits, closing them,
// and the periodic auto-checkout sweep.
type CheckInService struct {
	db            *gorm.DB
	notifications *NotificationService
	badges        *BadgeService
	audit         *AuditLogger

	sweepStop chan struct{}
}

func NewCheckInService(db *gorm.DB, notifications *NotificationService, badges *BadgeService, audit *AuditLogger) *CheckInService {
	return &CheckInService{
		db:            db,
		notifications: notifications,
		badges:        badges,
		audit:         audit,
	}
}

// CheckInInput is the visitor-facing payload for opening a visit.
type CheckInInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Photo     string
	Purpose   string
	Notes     string
	StaffID   *uint
}

// CheckIn opens a visit. An existing visitor is reused when the email
// matches within the organization; otherwise a new visitor is created.
// Notification and badge generation run after the transaction commits and
// never fail the check-in.
func (cs *CheckInService) CheckIn(organizationID uint, userID *uint, input CheckInInput) (*models.CheckIn, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, fmt.Errorf("%w: visitor first and last name are required", ErrValidation)
	}

	var org models.Organization
	if err := cs.db.First(&org, organizationID).Error; err != nil {
		return nil, ErrNotFound
	}

	plan := GetPlan(org.SubscriptionPlan)
	monthCount, err := cs.countCheckInsThisMonth(organizationID)
	if err != nil {
		return nil, err
	}
	if !WithinLimit(plan.Limits.VisitorLimit, monthCount) {
		return nil, fmt.Errorf("%w: monthly visitor limit of %d reached", ErrPlanLimit, plan.Limits.VisitorLimit)
	}

	// Host must belong to the same organization.
	if input.StaffID != nil {
		var host models.Staff
		err := cs.db.Where("id = ? AND organization_id = ?", *input.StaffID, organizationID).
			First(&host).Error
		if err != nil {
			return nil, ErrNotFound
		}
	}

	now := time.Now().UTC()
	tx := cs.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var visitor models.Visitor
	found := false
	if input.Email != "" {
		err := tx.Where("email = ? AND organization_id = ?", input.Email, organizationID).
			First(&visitor).Error
		found = err == nil
	}
	if !found {
		visitor = models.Visitor{
			FirstName:      input.FirstName,
			LastName:       input.LastName,
			Email:          input.Email,
			Phone:          input.Phone,
			Company:        input.Company,
			Photo:          input.Photo,
			OrganizationID: organizationID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&visitor).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	checkin := models.CheckIn{
		VisitorID:   visitor.ID,
		StaffID:     input.StaffID,
		CheckInTime: now,
		Purpose:     input.Purpose,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Create(&checkin).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	loaded, err := cs.loadCheckIn(organizationID, checkin.ID)
	if err != nil {
		return nil, err
	}

	cs.audit.Record(organizationID, userID, "visitor_check_in", map[string]interface{}{
		"check_in_id": loaded.ID,
		"visitor_id":  visitor.ID,
	})

	cs.notifications.NotifyCheckIn(loaded, &org)
	if org.EnableBadgePrinting {
		if _, err := cs.badges.Generate(loaded, &org); err != nil {
			utils.ErrorLogger.Printf("checkin: badge generation for check-in %d failed: %v", loaded.ID, err)
		}
	}

	return loaded, nil
}

// CheckOut closes an open visit. Returns ErrAlreadyClosed if the check-in
// already has a check-out time, ErrNotFound if the record does not exist in
// this organization.
func (cs *CheckInService) CheckOut(organizationID uint, userID *uint, checkinID uint) (*models.CheckIn, error) {
	var org models.Organization
	if err := cs.db.First(&org, organizationID).Error; err != nil {
		return nil, ErrNotFound
	}

	tx := cs.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var checkin models.CheckIn
	err := tx.Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("check_ins.id = ? AND visitors.organization_id = ?", checkinID, organizationID).
		First(&checkin).Error
	if err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if checkin.CheckOutTime != nil {
		tx.Rollback()
		return nil, ErrAlreadyClosed
	}

	now := time.Now().UTC()
	// Guard on the open state so a concurrent checkout or sweep loses
	// cleanly instead of double-closing.
	res := tx.Model(&models.CheckIn{}).
		Where("id = ? AND check_out_time IS NULL", checkin.ID).
		Updates(map[string]interface{}{"check_out_time": now, "updated_at": now})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrAlreadyClosed
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	loaded, err := cs.loadCheckIn(organizationID, checkin.ID)
	if err != nil {
		return nil, err
	}

	cs.audit.Record(organizationID, userID, "visitor_check_out", map[string]interface{}{
		"check_in_id": loaded.ID,
	})
	cs.notifications.NotifyCheckOut(loaded, &org)

	return loaded, nil
}

// SweepOnce closes every stale open check-in for organizations that enable
// auto-checkout. Idempotent: only rows still open are touched, so running
// it twice in a row converges to the same state and never double-notifies.
func (cs *CheckInService) SweepOnce(now time.Time) (int, error) {
	var orgs []models.Organization
	if err := cs.db.Where("enable_auto_checkout = ?", true).Find(&orgs).Error; err != nil {
		return 0, err
	}

	closed := 0
	for i := range orgs {
		org := &orgs[i]
		delay := org.AutoCheckoutDelayHours
		if delay <= 0 {
			delay = 8
		}
		cutoff := now.Add(-time.Duration(delay) * time.Hour)

		var stale []models.CheckIn
		err := cs.db.Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
			Where("visitors.organization_id = ? AND check_ins.check_out_time IS NULL AND check_ins.check_in_time < ?",
				org.ID, cutoff).
			Find(&stale).Error
		if err != nil {
			utils.ErrorLogger.Printf("sweep: failed to list stale check-ins for organization %d: %v", org.ID, err)
			continue
		}

		for _, checkin := range stale {
			res := cs.db.Model(&models.CheckIn{}).
				Where("id = ? AND check_out_time IS NULL", checkin.ID).
				Updates(map[string]interface{}{"check_out_time": now, "updated_at": now})
			if res.Error != nil {
				utils.ErrorLogger.Printf("sweep: failed to close check-in %d: %v", checkin.ID, res.Error)
				continue
			}
			if res.RowsAffected == 0 {
				// closed concurrently by a live checkout, nothing to do
				continue
			}
			closed++

			cs.audit.Record(org.ID, nil, "auto_check_out", map[string]interface{}{
				"check_in_id": checkin.ID,
			})
			if loaded, err := cs.loadCheckIn(org.ID, checkin.ID); err == nil {
				cs.notifications.NotifyCheckOut(loaded, org)
			}
		}
	}
	return closed, nil
}

// StartAutoCheckoutSweep runs SweepOnce on a fixed interval until Stop is
// called.
func (cs *CheckInService) StartAutoCheckoutSweep(interval time.Duration) {
	cs.sweepStop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := cs.SweepOnce(time.Now().UTC()); err != nil {
					utils.ErrorLogger.Printf("sweep: %v", err)
				} else if n > 0 {
					utils.InfoLogger.Printf("sweep: auto-checked-out %d stale check-ins", n)
				}
			case <-cs.sweepStop:
				return
			}
		}
	}()
}

// Stop halts the background sweep.
func (cs *CheckInService) Stop() {
	if cs.sweepStop != nil {
		close(cs.sweepStop)
	}
}

func (cs *CheckInService) loadCheckIn(organizationID, checkinID uint) (*models.CheckIn, error) {
	var checkin models.CheckIn
	err := cs.db.Preload("Visitor").Preload("Host").
		Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("check_ins.id = ? AND visitors.organization_id = ?", checkinID, organizationID).
		First(&checkin).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &checkin, nil
}

func (cs *CheckInService) countCheckInsThisMonth(organizationID uint) (int, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var count int64
	err := cs.db.Model(&models.CheckIn{}).
		Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("visitors.organization_id = ? AND check_ins.check_in_time >= ?", organizationID, monthStart).
		Count(&count).Error
	return int(count), err
}
