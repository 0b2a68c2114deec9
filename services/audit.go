package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/utils"
)

// AuditLogger appends rows to the audit trail. Failures are logged and
// swallowed; auditing must never abort the operation that triggered it.
type AuditLogger struct {
	db *gorm.DB
}

func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

// Record writes one audit entry. eventData is marshalled to JSON; userID
// may be nil for system-initiated events such as the auto-checkout sweep.
func (a *AuditLogger) Record(organizationID uint, userID *uint, eventType string, eventData map[string]interface{}) {
	var payload string
	if eventData != nil {
		raw, err := json.Marshal(eventData)
		if err != nil {
			utils.ErrorLogger.Printf("audit: failed to marshal event data for %s: %v", eventType, err)
		} else {
			payload = string(raw)
		}
	}

	entry := models.Log{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		UserID:         userID,
		EventType:      eventType,
		EventData:      payload,
		CreatedAt:      time.Now().UTC(),
	}
	if err := a.db.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("audit: failed to record %s: %v", eventType, err)
	}
}
