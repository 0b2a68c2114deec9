package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/controllers"
	"github.com/yeremiapane/visitor-app/middlewares"
	"github.com/yeremiapane/visitor-app/services"
)

// Deps carries the shared services the controllers are built from.
type Deps struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
	Badges        *services.BadgeService
	CheckIns      *services.CheckInService
	Reports       *services.ReportService
	Subscriptions *services.SubscriptionService
	Gateway       services.BillingGateway
	Audit         *services.AuditLogger
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())
	// Global middleware must be registered before routes; gin snapshots
	// each route's handler chain when the route is added.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(deps.DB, deps.Notifications, deps.Audit)
	staffCtrl := controllers.NewStaffController(deps.DB, deps.Audit)
	visitorCtrl := controllers.NewVisitorController(deps.DB, deps.CheckIns)
	badgeCtrl := controllers.NewBadgeController(deps.DB, deps.Badges)
	reportCtrl := controllers.NewReportController(deps.DB, deps.Reports)
	subscriptionCtrl := controllers.NewSubscriptionController(deps.DB, deps.Subscriptions, deps.Gateway)
	settingsCtrl := controllers.NewSettingsController(deps.DB, deps.Audit)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/plans", subscriptionCtrl.GetPlans)

	// Payment processor callbacks authenticate with a signed payload, not
	// a session token.
	r.POST("/billing/webhook", subscriptionCtrl.HandleWebhook)

	// Rate limiter for credential endpoints
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
		public.POST("/forgot-password", userCtrl.ForgotPassword)
		public.POST("/reset-password", userCtrl.ResetPassword)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	// PROFILE
	auth.GET("/profile", userCtrl.GetProfile)
	auth.PATCH("/profile", userCtrl.UpdateProfile)

	// STAFF
	auth.GET("/staff", staffCtrl.GetAllStaff)
	auth.POST("/staff", staffCtrl.CreateStaff)
	auth.GET("/staff/:staff_id", staffCtrl.GetStaffByID)
	auth.PATCH("/staff/:staff_id", staffCtrl.UpdateStaff)
	auth.DELETE("/staff/:staff_id", staffCtrl.DeleteStaff)

	// CHECK-INS
	auth.POST("/check-ins", visitorCtrl.CheckIn)
	auth.GET("/check-ins", visitorCtrl.GetAllCheckIns)
	auth.POST("/check-ins/:checkin_id/check-out", visitorCtrl.CheckOut)
	auth.GET("/check-ins/:checkin_id/badge", badgeCtrl.GetBadgeForCheckIn)

	// VISITOR DIRECTORY
	auth.GET("/visitors", visitorCtrl.GetAllVisitors)
	auth.GET("/visitors/:visitor_id", visitorCtrl.GetVisitorByID)
	auth.PATCH("/visitors/:visitor_id", visitorCtrl.UpdateVisitor)

	// PREREGISTRATION
	auth.POST("/preregistrations", visitorCtrl.Preregister)
	auth.GET("/preregistrations", visitorCtrl.GetAllPreregistrations)
	auth.POST("/preregistrations/:prereg_id/arrive", visitorCtrl.Arrive)
	auth.POST("/preregistrations/:prereg_id/cancel", visitorCtrl.CancelPreregistration)

	// BADGES
	auth.POST("/badges/:badge_id/print", badgeCtrl.PrintBadge)

	// REPORTS
	auth.GET("/reports/check-ins", reportCtrl.GetCheckInReport)
	auth.GET("/reports/daily", reportCtrl.GetDailyStats)

	// SUBSCRIPTION
	auth.GET("/subscription", subscriptionCtrl.GetCurrentSubscription)
	auth.POST("/subscription/checkout", subscriptionCtrl.CreateCheckout)
	auth.POST("/subscription/cancel", subscriptionCtrl.CancelSubscription)
	auth.GET("/subscription/history", subscriptionCtrl.GetSubscriptionHistory)

	// SETTINGS
	auth.GET("/organization", settingsCtrl.GetOrganization)
	auth.PATCH("/organization", settingsCtrl.UpdateOrganization)
	auth.GET("/badge-template", settingsCtrl.GetBadgeTemplate)
	auth.PUT("/badge-template", settingsCtrl.UpdateBadgeTemplate)
	auth.GET("/email-templates", settingsCtrl.GetAllEmailTemplates)
	auth.PATCH("/email-templates/:template_id", settingsCtrl.UpdateEmailTemplate)
	auth.GET("/documents", settingsCtrl.GetAllDocuments)
	auth.POST("/documents", settingsCtrl.CreateDocument)
	auth.DELETE("/documents/:document_id", settingsCtrl.DeleteDocument)
	auth.GET("/audit-logs", settingsCtrl.GetAuditLogs)

	return r
}
