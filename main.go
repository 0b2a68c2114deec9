package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/config"
	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/router"
	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	audit := services.NewAuditLogger(db)

	// The mailer and billing gateway degrade to nil when their credentials
	// are missing so local development works without external accounts.
	var mailer services.MailSender
	if m, err := services.NewResendMailer(); err != nil {
		utils.InfoLogger.Printf("Email delivery disabled: %v", err)
	} else {
		mailer = m
	}

	var gateway services.BillingGateway
	if g, err := services.NewStripeGateway(); err != nil {
		utils.InfoLogger.Printf("Billing disabled: %v", err)
	} else {
		gateway = g
	}

	notifications := services.NewNotificationService(db, mailer, audit)
	badges := services.NewBadgeService(db, audit)
	checkins := services.NewCheckInService(db, notifications, badges, audit)
	reports := services.NewReportService(db)
	subscriptions := services.NewSubscriptionService(db, gateway, audit)

	// Background sweep that closes forgotten check-ins.
	checkins.StartAutoCheckoutSweep(5 * time.Minute)
	defer checkins.Stop()

	r := router.SetupRouter(router.Deps{
		DB:            db,
		Notifications: notifications,
		Badges:        badges,
		CheckIns:      checkins,
		Reports:       reports,
		Subscriptions: subscriptions,
		Gateway:       gateway,
		Audit:         audit,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
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
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
