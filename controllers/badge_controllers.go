package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

type BadgeController struct {
	DB     *gorm.DB
	Badges *services.BadgeService
}

func NewBadgeController(db *gorm.DB, badges *services.BadgeService) *BadgeController {
	return &BadgeController{DB: db, Badges: badges}
}

// GetBadgeForCheckIn returns the badge generated for a check-in, if any.
func (bc *BadgeController) GetBadgeForCheckIn(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	checkinID, _ := strconv.Atoi(c.Param("checkin_id"))
	var badge models.Badge
	err := bc.DB.
		Joins("JOIN check_ins ON check_ins.id = badges.check_in_id").
		Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("badges.check_in_id = ? AND visitors.organization_id = ?", checkinID, id.OrganizationID).
		First(&badge).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("badge not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Badge retrieved", badge)
}

// PrintBadge records a print of the badge and returns its render data.
func (bc *BadgeController) PrintBadge(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	badgeID, err := strconv.Atoi(c.Param("badge_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid badge id"))
		return
	}

	badge, err := bc.Badges.MarkPrinted(id.OrganizationID, uint(badgeID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Badge marked printed", badge)
}
