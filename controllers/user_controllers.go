package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

type UserController struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
	Audit         *services.AuditLogger
}

func NewUserController(db *gorm.DB, notifications *services.NotificationService, audit *services.AuditLogger) *UserController {
	return &UserController{DB: db, Notifications: notifications, Audit: audit}
}

// Register creates a new organization with its first (admin) user, then
// seeds the default email and badge templates.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		OrganizationName string `json:"organization_name" binding:"required"`
		Username         string `json:"username" binding:"required"`
		Email            string `json:"email" binding:"required,email"`
		Password         string `json:"password" binding:"required,min=8"`
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now().UTC()
	org := models.Organization{
		Name:                     req.OrganizationName,
		ContactEmail:             req.Email,
		SubscriptionPlan:         "free",
		SubscriptionStatus:       "active",
		EnablePhotoCapture:       true,
		EnableBadgePrinting:      true,
		EnableAutoCheckout:       true,
		EnableEmailNotifications: true,
		AutoCheckoutDelayHours:   8,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	tx := uc.DB.Begin()
	if err := tx.Create(&org).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// New organizations start with the stock badge layout.
	if layout, err := json.Marshal(services.DefaultBadgeLayout(org.Name)); err == nil {
		if err := tx.Model(&org).Update("badge_template", string(layout)).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	user := models.User{
		Username:       req.Username,
		Email:          req.Email,
		Password:       string(hashed),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		IsAdmin:        true, // first user administers the organization
		IsActive:       true,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, errors.New("username or email already in use"))
		return
	}

	if err := services.SeedDefaultEmailTemplates(tx, org.ID); err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	uc.Audit.Record(org.ID, &user.ID, "organization_registered", map[string]interface{}{
		"organization": org.Name,
	})
	utils.InfoLogger.Printf("New organization registered: %s (admin=%s)", org.Name, user.Email)

	utils.RespondJSON(c, http.StatusCreated, "Organization registered", gin.H{
		"organization_id": org.ID,
		"user_id":         user.ID,
	})
}

// Login verifies credentials and returns a JWT.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if !user.IsActive {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("account is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.OrganizationID, user.IsAdmin)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now().UTC()
	uc.DB.Model(&user).Update("last_login", now)
	uc.Audit.Record(user.OrganizationID, &user.ID, "user_login", nil)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":    token,
		"is_admin": user.IsAdmin,
	})
}

// GetProfile returns the authenticated user.
func (uc *UserController) GetProfile(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var user models.User
	err := uc.DB.Where("id = ? AND organization_id = ?", id.UserID, id.OrganizationID).
		First(&user).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile changes name and, when both fields are given, the password.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	id, ok := requestIdentity(c)
	if !ok {
		return
	}

	var input struct {
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	err := uc.DB.Where("id = ? AND organization_id = ?", id.UserID, id.OrganizationID).
		First(&user).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}
	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("current password is incorrect"))
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		updates["password"] = string(hashed)
	}

	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated", nil)
}

// ForgotPassword issues a reset token and emails it. The response is the
// same whether or not the email exists.
func (uc *UserController) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&user).Error; err == nil {
		token, err := utils.GeneratePasswordResetToken(user.ID, time.Hour)
		if err == nil {
			baseURL := os.Getenv("APP_URL")
			if baseURL == "" {
				baseURL = "http://localhost:8080"
			}
			resetURL := baseURL + "/reset-password?token=" + token
			if err := uc.Notifications.SendPasswordReset(&user, resetURL); err != nil {
				utils.ErrorLogger.Printf("forgot-password: %v", err)
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "If the email exists, reset instructions were sent", nil)
}

// ResetPassword consumes a reset token and sets the new password.
func (uc *UserController) ResetPassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, err := utils.VerifyPasswordResetToken(input.Token)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = uc.DB.Model(&user).Updates(map[string]interface{}{
		"password":   string(hashed),
		"updated_at": time.Now().UTC(),
	}).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	uc.Audit.Record(user.OrganizationID, &user.ID, "password_reset", nil)
	utils.RespondJSON(c, http.StatusOK, "Password has been reset", nil)
}
