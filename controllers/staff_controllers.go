package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

type StaffController struct {
	DB    *gorm.DB
	Audit *services.AuditLogger
}

func NewStaffController(db *gorm.DB, audit *services.AuditLogger) *StaffController {
	return &StaffController{DB: db, Audit: audit}
}

// GetAllStaff lists the organization's staff directory.
func (sc *StaffController) GetAllStaff(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var staff []models.Staff
	err := sc.DB.Where("organization_id = ?", id.OrganizationID).
		Order("last_name, first_name").Find(&staff).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of staff", staff)
}

// CreateStaff adds a staff member, enforcing the plan's staff limit.
func (sc *StaffController) CreateStaff(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok || !requireAdmin(c, id) {
		return
	}

	var input struct {
		FirstName  string `json:"first_name" binding:"required"`
		LastName   string `json:"last_name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Phone      string `json:"phone"`
		Department string `json:"department"`
		Position   string `json:"position"`
		Photo      string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var org models.Organization
	if err := sc.DB.First(&org, id.OrganizationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var count int64
	sc.DB.Model(&models.Staff{}).Where("organization_id = ?", id.OrganizationID).Count(&count)
	plan := services.GetPlan(org.SubscriptionPlan)
	if !services.WithinLimit(plan.Limits.StaffLimit, int(count)) {
		respondServiceError(c, fmt.Errorf("%w: staff limit of %d reached",
			services.ErrPlanLimit, plan.Limits.StaffLimit))
		return
	}

	now := time.Now().UTC()
	staff := models.Staff{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Department:     input.Department,
		Position:       input.Position,
		Photo:          input.Photo,
		OrganizationID: id.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := sc.DB.Create(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "staff_created", map[string]interface{}{
		"staff_id": staff.ID,
	})
	utils.RespondJSON(c, http.StatusCreated, "Staff member created", staff)
}

// GetStaffByID returns one staff member.
func (sc *StaffController) GetStaffByID(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	staffID, _ := strconv.Atoi(c.Param("staff_id"))
	var staff models.Staff
	err := sc.DB.Where("id = ? AND organization_id = ?", staffID, id.OrganizationID).
		First(&staff).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("staff member not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff member retrieved", staff)
}

// UpdateStaff edits a staff member.
func (sc *StaffController) UpdateStaff(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok || !requireAdmin(c, id) {
		return
	}

	staffID, _ := strconv.Atoi(c.Param("staff_id"))
	var staff models.Staff
	err := sc.DB.Where("id = ? AND organization_id = ?", staffID, id.OrganizationID).
		First(&staff).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("staff member not found"))
		return
	}

	var input struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Department string `json:"department"`
		Position   string `json:"position"`
		Photo      string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}
	if input.Email != "" {
		updates["email"] = input.Email
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}
	if input.Department != "" {
		updates["department"] = input.Department
	}
	if input.Position != "" {
		updates["position"] = input.Position
	}
	if input.Photo != "" {
		updates["photo"] = input.Photo
	}

	if err := sc.DB.Model(&staff).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff member updated", staff)
}

// DeleteStaff removes a staff member. Refused while they still host open
// check-ins, so active visits never lose their host reference.
func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok || !requireAdmin(c, id) {
		return
	}

	staffID, _ := strconv.Atoi(c.Param("staff_id"))
	var staff models.Staff
	err := sc.DB.Where("id = ? AND organization_id = ?", staffID, id.OrganizationID).
		First(&staff).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("staff member not found"))
		return
	}

	var open int64
	sc.DB.Model(&models.CheckIn{}).
		Where("staff_id = ? AND check_out_time IS NULL", staff.ID).
		Count(&open)
	if open > 0 {
		utils.RespondError(c, http.StatusConflict,
			errors.New("staff member has active check-ins and cannot be removed"))
		return
	}

	if err := sc.DB.Delete(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.Audit.Record(id.OrganizationID, &id.UserID, "staff_deleted", map[string]interface{}{
		"staff_id": staff.ID,
	})
	utils.RespondJSON(c, http.StatusOK, "Staff member deleted", nil)
}
