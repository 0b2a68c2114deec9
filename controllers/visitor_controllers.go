package controllers

import (
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

type VisitorController struct {
	DB       *gorm.DB
	CheckIns *services.CheckInService
}

func NewVisitorController(db *gorm.DB, checkins *services.CheckInService) *VisitorController {
	return &VisitorController{DB: db, CheckIns: checkins}
}

// CheckIn opens a visit for a new or returning visitor.
func (vc *VisitorController) CheckIn(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var input struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Company   string `json:"company"`
		Photo     string `json:"photo"`
		Purpose   string `json:"purpose"`
		Notes     string `json:"notes"`
		StaffID   *uint  `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	checkin, err := vc.CheckIns.CheckIn(id.OrganizationID, &id.UserID, services.CheckInInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Company:   input.Company,
		Photo:     input.Photo,
		Purpose:   input.Purpose,
		Notes:     input.Notes,
		StaffID:   input.StaffID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Visitor checked in", checkin)
}

// CheckOut closes an open visit.
func (vc *VisitorController) CheckOut(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	checkinID, err := strconv.Atoi(c.Param("checkin_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid check-in id"))
		return
	}

	checkin, err := vc.CheckIns.CheckOut(id.OrganizationID, &id.UserID, uint(checkinID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Visitor checked out", checkin)
}

// GetAllCheckIns lists check-ins, newest first. ?active=true narrows to
// visitors still on site.
func (vc *VisitorController) GetAllCheckIns(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	q := vc.DB.Preload("Visitor").Preload("Host").
		Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("visitors.organization_id = ?", id.OrganizationID)

	if c.Query("active") == "true" {
		q = q.Where("check_ins.check_out_time IS NULL")
	}

	var checkins []models.CheckIn
	if err := q.Order("check_ins.check_in_time DESC").Find(&checkins).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of check-ins", checkins)
}

// GetAllVisitors lists the organization's visitor directory.
func (vc *VisitorController) GetAllVisitors(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var visitors []models.Visitor
	err := vc.DB.Where("organization_id = ?", id.OrganizationID).
		Order("created_at DESC").Find(&visitors).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of visitors", visitors)
}

// GetVisitorByID returns one visitor with their visit history.
func (vc *VisitorController) GetVisitorByID(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	visitorID, _ := strconv.Atoi(c.Param("visitor_id"))
	var visitor models.Visitor
	err := vc.DB.Preload("CheckIns").
		Where("id = ? AND organization_id = ?", visitorID, id.OrganizationID).
		First(&visitor).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("visitor not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Visitor retrieved", visitor)
}

// UpdateVisitor edits visitor contact details.
func (vc *VisitorController) UpdateVisitor(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	visitorID, _ := strconv.Atoi(c.Param("visitor_id"))
	var visitor models.Visitor
	err := vc.DB.Where("id = ? AND organization_id = ?", visitorID, id.OrganizationID).
		First(&visitor).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("visitor not found"))
		return
	}

	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Company   string `json:"company"`
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
	if input.Company != "" {
		updates["company"] = input.Company
	}

	if err := vc.DB.Model(&visitor).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Visitor updated", visitor)
}

// Preregister announces an expected visitor.
func (vc *VisitorController) Preregister(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var input struct {
		FirstName       string    `json:"first_name" binding:"required"`
		LastName        string    `json:"last_name" binding:"required"`
		Email           string    `json:"email" binding:"required,email"`
		Phone           string    `json:"phone"`
		Company         string    `json:"company"`
		Purpose         string    `json:"purpose"`
		StaffID         uint      `json:"staff_id" binding:"required"`
		ExpectedArrival time.Time `json:"expected_arrival" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	prereg, err := vc.CheckIns.Preregister(id.OrganizationID, &id.UserID, services.PreregisterInput{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		Phone:           input.Phone,
		Company:         input.Company,
		Purpose:         input.Purpose,
		StaffID:         input.StaffID,
		ExpectedArrival: input.ExpectedArrival,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Visitor preregistered", prereg)
}

// GetAllPreregistrations lists expected visitors, soonest first.
func (vc *VisitorController) GetAllPreregistrations(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	q := vc.DB.Preload("Host").Where("organization_id = ?", id.OrganizationID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var preregs []models.PreregisteredVisitor
	if err := q.Order("expected_arrival").Find(&preregs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of preregistrations", preregs)
}

// Arrive converts a pending preregistration into a check-in.
func (vc *VisitorController) Arrive(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	preregID, _ := strconv.Atoi(c.Param("prereg_id"))
	checkin, err := vc.CheckIns.Arrive(id.OrganizationID, &id.UserID, uint(preregID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Preregistered visitor checked in", checkin)
}

// CancelPreregistration marks a pending preregistration cancelled.
func (vc *VisitorController) CancelPreregistration(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	preregID, _ := strconv.Atoi(c.Param("prereg_id"))
	if err := vc.CheckIns.CancelPreregistration(id.OrganizationID, &id.UserID, uint(preregID)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Preregistration cancelled", nil)
}
