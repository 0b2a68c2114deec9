package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/visitor-app/models"
)

// PreregisterInput is the payload for announcing a future visit.
type PreregisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Company         string
	Purpose         string
	StaffID         uint
	ExpectedArrival time.Time
}

// Preregister records an expected visitor and notifies the host. Gated by
// the plan's pre-registration feature.
func (cs *CheckInService) Preregister(organizationID uint, userID *uint, input PreregisterInput) (*models.PreregisteredVisitor, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if input.ExpectedArrival.IsZero() {
		return nil, fmt.Errorf("%w: expected arrival is required", ErrValidation)
	}

	var org models.Organization
	if err := cs.db.First(&org, organizationID).Error; err != nil {
		return nil, ErrNotFound
	}
	if !GetPlan(org.SubscriptionPlan).Limits.Preregistration {
		return nil, fmt.Errorf("%w: pre-registration is not included in the %s plan", ErrPlanLimit, org.SubscriptionPlan)
	}

	var host models.Staff
	err := cs.db.Where("id = ? AND organization_id = ?", input.StaffID, organizationID).
		First(&host).Error
	if err != nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	prereg := models.PreregisteredVisitor{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		Phone:           input.Phone,
		Company:         input.Company,
		Purpose:         input.Purpose,
		ExpectedArrival: input.ExpectedArrival,
		StaffID:         input.StaffID,
		OrganizationID:  organizationID,
		Status:          models.PreregStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := cs.db.Create(&prereg).Error; err != nil {
		return nil, err
	}
	prereg.Host = host

	cs.audit.Record(organizationID, userID, "visitor_preregistered", map[string]interface{}{
		"preregistration_id": prereg.ID,
	})
	cs.notifications.NotifyPreregistration(&prereg, &org)

	return &prereg, nil
}

// Arrive converts a pending preregistration into a visitor check-in. Status
// moves forward only; an already converted or cancelled record is rejected.
func (cs *CheckInService) Arrive(organizationID uint, userID *uint, preregID uint) (*models.CheckIn, error) {
	var prereg models.PreregisteredVisitor
	err := cs.db.Where("id = ? AND organization_id = ?", preregID, organizationID).
		First(&prereg).Error
	if err != nil {
		return nil, ErrNotFound
	}
	if prereg.Status != models.PreregStatusPending {
		return nil, fmt.Errorf("%w: preregistration is %s", ErrValidation, prereg.Status)
	}

	// Claim the record before converting so a concurrent or retried
	// arrival cannot check the visitor in twice.
	res := cs.db.Model(&models.PreregisteredVisitor{}).
		Where("id = ? AND status = ?", prereg.ID, models.PreregStatusPending).
		Updates(map[string]interface{}{
			"status":     models.PreregStatusCheckedIn,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: preregistration is no longer pending", ErrValidation)
	}

	checkin, err := cs.CheckIn(organizationID, userID, CheckInInput{
		FirstName: prereg.FirstName,
		LastName:  prereg.LastName,
		Email:     prereg.Email,
		Phone:     prereg.Phone,
		Company:   prereg.Company,
		Purpose:   prereg.Purpose,
		StaffID:   &prereg.StaffID,
	})
	if err != nil {
		// Release the claim so the arrival can be retried.
		cs.db.Model(&models.PreregisteredVisitor{}).
			Where("id = ? AND status = ?", prereg.ID, models.PreregStatusCheckedIn).
			Updates(map[string]interface{}{
				"status":     models.PreregStatusPending,
				"updated_at": time.Now().UTC(),
			})
		return nil, err
	}

	return checkin, nil
}

// CancelPreregistration marks a pending preregistration cancelled.
func (cs *CheckInService) CancelPreregistration(organizationID uint, userID *uint, preregID uint) error {
	var prereg models.PreregisteredVisitor
	err := cs.db.Where("id = ? AND organization_id = ?", preregID, organizationID).
		First(&prereg).Error
	if err != nil {
		return ErrNotFound
	}
	if prereg.Status != models.PreregStatusPending {
		return fmt.Errorf("%w: preregistration is %s", ErrValidation, prereg.Status)
	}

	err = cs.db.Model(&models.PreregisteredVisitor{}).
		Where("id = ?", prereg.ID).
		Updates(map[string]interface{}{
			"status":     models.PreregStatusCancelled,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return err
	}

	cs.audit.Record(organizationID, userID, "preregistration_cancelled", map[string]interface{}{
		"preregistration_id": prereg.ID,
	})
	return nil
}
