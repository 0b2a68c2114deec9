package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
)

type builtinTemplate struct {
	Name    string
	Subject string
	Body    string
}

// defaultTemplate returns the built-in template for a notification type.
// Used both as the runtime fallback and to seed new organizations.
func defaultTemplate(templateType string) builtinTemplate {
	switch templateType {
	case models.TemplateCheckOut:
		return builtinTemplate{
			Name:    "Check-out Notification",
			Subject: "Visitor Check-out: {{visitor_name}} has departed",
			Body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Visitor Check-out Notification</h2>
  <p>Hello,</p>
  <p>Your visitor has checked out:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Name:</strong> {{visitor_name}}</p>
    <p><strong>Company:</strong> {{visitor_company}}</p>
    <p><strong>Purpose:</strong> {{visitor_purpose}}</p>
    <p><strong>Check-in Time:</strong> {{check_in_time}}</p>
    <p><strong>Check-out Time:</strong> {{check_out_time}}</p>
    <p><strong>Duration:</strong> {{duration}}</p>
  </div>
  <p>Thank you,<br>{{organization_name}} Visitor Management System</p>
</div>`,
		}
	case models.TemplatePreregister:
		return builtinTemplate{
			Name:    "Preregistration Confirmation",
			Subject: "Visitor Preregistration: {{visitor_name}} on {{expected_arrival}}",
			Body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Visitor Preregistration Confirmation</h2>
  <p>Hello,</p>
  <p>A visitor has been preregistered to meet you:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Name:</strong> {{visitor_name}}</p>
    <p><strong>Company:</strong> {{visitor_company}}</p>
    <p><strong>Purpose:</strong> {{visitor_purpose}}</p>
    <p><strong>Expected Arrival:</strong> {{expected_arrival}}</p>
  </div>
  <p>You will be notified when the visitor checks in.</p>
  <p>Thank you,<br>{{organization_name}} Visitor Management System</p>
</div>`,
		}
	default: // check_in
		return builtinTemplate{
			Name:    "Check-in Notification",
			Subject: "Visitor Check-in: {{visitor_name}} has arrived",
			Body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Visitor Check-in Notification</h2>
  <p>Hello,</p>
  <p>A visitor has checked in to see you:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Name:</strong> {{visitor_name}}</p>
    <p><strong>Company:</strong> {{visitor_company}}</p>
    <p><strong>Purpose:</strong> {{visitor_purpose}}</p>
    <p><strong>Check-in Time:</strong> {{check_in_time}}</p>
  </div>
  <p>Please greet your visitor at the reception area.</p>
  <p>Thank you,<br>{{organization_name}} Visitor Management System</p>
</div>`,
		}
	}
}

// SeedDefaultEmailTemplates creates the three stock templates for a new
// organization.
func SeedDefaultEmailTemplates(db *gorm.DB, organizationID uint) error {
	now := time.Now().UTC()
	for _, typ := range []string{models.TemplateCheckIn, models.TemplateCheckOut, models.TemplatePreregister} {
		def := defaultTemplate(typ)
		tpl := models.EmailTemplate{
			Name:           def.Name,
			Subject:        def.Subject,
			Body:           def.Body,
			TemplateType:   typ,
			OrganizationID: organizationID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := db.Create(&tpl).Error; err != nil {
			return err
		}
	}
	return nil
}
