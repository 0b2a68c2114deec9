package services

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/utils"
)

func newTestDB(name string) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
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

func seedOrganization(db *gorm.DB, name, plan string) models.Organization {
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

func seedStaff(db *gorm.DB, orgID uint, first, last, email string) models.Staff {
	now := time.Now().UTC()
	staff := models.Staff{
		FirstName:      first,
		LastName:       last,
		Email:          email,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	db.Create(&staff)
	return staff
}

// fakeMailer records messages instead of sending them.
type fakeMailer struct {
	mu       sync.Mutex
	messages []MailMessage
	fail     bool
}

func (m *fakeMailer) Send(msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("transport down")
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *fakeMailer) sent() []MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MailMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// fakeGateway is an in-memory billing processor.
type fakeGateway struct {
	customers     int
	checkouts     int
	cancelled     []string
	subscriptions map[string]*BillingSubscription
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{subscriptions: make(map[string]*BillingSubscription)}
}

func (g *fakeGateway) CreateCustomer(email, name string, organizationID uint) (string, error) {
	g.customers++
	return fmt.Sprintf("cus_fake_%d", g.customers), nil
}

func (g *fakeGateway) CreateCheckoutSession(customerID, priceID, planID, billingCycle string, organizationID uint, successURL, cancelURL string) (string, error) {
	g.checkouts++
	return fmt.Sprintf("https://checkout.example.com/%d", g.checkouts), nil
}

func (g *fakeGateway) GetSubscription(subscriptionID string) (*BillingSubscription, error) {
	sub, ok := g.subscriptions[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("no such subscription %s", subscriptionID)
	}
	return sub, nil
}

func (g *fakeGateway) ActiveSubscription(customerID string) (*BillingSubscription, error) {
	for _, sub := range g.subscriptions {
		if sub.CustomerID == customerID && sub.Status == "active" {
			return sub, nil
		}
	}
	return nil, nil
}

func (g *fakeGateway) CancelSubscription(subscriptionID string) error {
	g.cancelled = append(g.cancelled, subscriptionID)
	if sub, ok := g.subscriptions[subscriptionID]; ok {
		sub.Status = "canceled"
	}
	return nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*BillingEvent, error) {
	return nil, fmt.Errorf("not implemented in fake")
}
