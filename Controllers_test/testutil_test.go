package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

func setupTestDB(name string) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
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
		panic(err)
	}
	return db
}

func seedOrg(db *gorm.DB, name, plan string) models.Organization {
	now := time.Now().UTC()
	org := models.Organization{
		Name:                     name,
		SubscriptionPlan:         plan,
		SubscriptionStatus:       "active",
		EnablePhotoCapture:       true,
		EnableBadgePrinting:      true,
		EnableAutoCheckout:       true,
		EnableEmailNotifications: true,
		AutoCheckoutDelayHours:   8,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	db.Create(&org)
	return org
}

func seedAdmin(db *gorm.DB, orgID uint, username string) models.User {
	now := time.Now().UTC()
	user := models.User{
		Username:       username,
		Email:          username + "@test.local",
		Password:       "not-used-in-these-tests",
		IsAdmin:        true,
		IsActive:       true,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	db.Create(&user)
	return user
}

func seedHost(db *gorm.DB, orgID uint, first, last string) models.Staff {
	now := time.Now().UTC()
	staff := models.Staff{
		FirstName:      first,
		LastName:       last,
		Email:          first + "@test.local",
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	db.Create(&staff)
	return staff
}

// asIdentity stands in for the auth middleware, injecting a fixed caller.
func asIdentity(userID, orgID uint, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("organization_id", orgID)
		c.Set("is_admin", isAdmin)
		c.Next()
	}
}

func doJSON(router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		panic(err)
	}
	return resp
}

func buildServices(db *gorm.DB) (*services.CheckInService, *services.BadgeService, *services.AuditLogger) {
	audit := services.NewAuditLogger(db)
	notifications := services.NewNotificationService(db, nil, audit)
	badges := services.NewBadgeService(db, audit)
	checkins := services.NewCheckInService(db, notifications, badges, audit)
	return checkins, badges, audit
}
