package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/utils"
)

const notifyTimeLayout = "2006-01-02 15:04"

// NotificationService renders per-tenant email templates and hands them to
// the mail transport. Delivery is best-effort: failures are logged and
// audited, never returned to the business operation that triggered them.
type NotificationService struct {
	db     *gorm.DB
	mailer MailSender
	audit  *AuditLogger
}

func NewNotificationService(db *gorm.DB, mailer MailSender, audit *AuditLogger) *NotificationService {
	return &NotificationService{db: db, mailer: mailer, audit: audit}
}

// SubstitutePlaceholders replaces every {{name}} token present in ctx with
// its value. Tokens not in ctx are left verbatim. This is plain textual
// substitution, not template evaluation.
func SubstitutePlaceholders(s string, ctx map[string]string) string {
	for key, value := range ctx {
		s = strings.ReplaceAll(s, "{{"+key+"}}", value)
	}
	return s
}

// FormatVisitDuration renders the stay length as "<H> hours, <M> minutes",
// flooring to whole minutes.
func FormatVisitDuration(checkIn, checkOut time.Time) string {
	deltaSeconds := int(checkOut.Sub(checkIn).Seconds())
	if deltaSeconds < 0 {
		deltaSeconds = 0
	}
	hours := deltaSeconds / 3600
	minutes := (deltaSeconds % 3600) / 60
	return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
}

// checkInContext builds the token set shared by email and badge rendering.
// Every known token is present; absent values map to the empty string so
// their placeholders disappear from the output.
func checkInContext(checkin *models.CheckIn, org *models.Organization) map[string]string {
	ctx := map[string]string{
		"visitor_name":      checkin.Visitor.FullName(),
		"visitor_email":     checkin.Visitor.Email,
		"visitor_company":   checkin.Visitor.Company,
		"visitor_purpose":   checkin.Purpose,
		"check_in_time":     checkin.CheckInTime.Format(notifyTimeLayout),
		"check_in_date":     checkin.CheckInTime.Format("2006-01-02"),
		"check_out_time":    "",
		"duration":          "",
		"host_name":         "",
		"organization_name": org.Name,
	}
	if checkin.Host != nil {
		ctx["host_name"] = checkin.Host.FullName()
	}
	if checkin.CheckOutTime != nil {
		ctx["check_out_time"] = checkin.CheckOutTime.Format(notifyTimeLayout)
		ctx["duration"] = FormatVisitDuration(checkin.CheckInTime, *checkin.CheckOutTime)
	}
	return ctx
}

// resolveTemplate returns the organization's template for templateType, or
// the built-in default when none is configured.
func (ns *NotificationService) resolveTemplate(organizationID uint, templateType string) (subject, body string) {
	var tpl models.EmailTemplate
	err := ns.db.Where("organization_id = ? AND template_type = ?", organizationID, templateType).
		First(&tpl).Error
	if err == nil {
		return tpl.Subject, tpl.Body
	}
	def := defaultTemplate(templateType)
	return def.Subject, def.Body
}

// NotifyCheckIn emails the host that their visitor has arrived. checkin
// must have Visitor and Host preloaded.
func (ns *NotificationService) NotifyCheckIn(checkin *models.CheckIn, org *models.Organization) {
	ns.notify(checkin, org, models.TemplateCheckIn)
}

// NotifyCheckOut emails the host that their visitor has departed.
func (ns *NotificationService) NotifyCheckOut(checkin *models.CheckIn, org *models.Organization) {
	ns.notify(checkin, org, models.TemplateCheckOut)
}

func (ns *NotificationService) notify(checkin *models.CheckIn, org *models.Organization, templateType string) {
	if !org.EnableEmailNotifications {
		return
	}
	if checkin.Host == nil || checkin.Host.Email == "" {
		return
	}

	subject, body := ns.resolveTemplate(org.ID, templateType)
	ctx := checkInContext(checkin, org)
	subject = SubstitutePlaceholders(subject, ctx)
	body = SubstitutePlaceholders(body, ctx)

	ns.deliver(org.ID, templateType, subject, body, []string{checkin.Host.Email})
}

// NotifyPreregistration emails the host about an upcoming visit.
func (ns *NotificationService) NotifyPreregistration(prereg *models.PreregisteredVisitor, org *models.Organization) {
	if !org.EnableEmailNotifications {
		return
	}
	if prereg.Host.Email == "" {
		return
	}

	subject, body := ns.resolveTemplate(org.ID, models.TemplatePreregister)
	ctx := map[string]string{
		"visitor_name":      prereg.FirstName + " " + prereg.LastName,
		"visitor_email":     prereg.Email,
		"visitor_company":   prereg.Company,
		"visitor_purpose":   prereg.Purpose,
		"expected_arrival":  prereg.ExpectedArrival.Format(notifyTimeLayout),
		"host_name":         prereg.Host.FullName(),
		"organization_name": org.Name,
	}
	subject = SubstitutePlaceholders(subject, ctx)
	body = SubstitutePlaceholders(body, ctx)

	ns.deliver(org.ID, models.TemplatePreregister, subject, body, []string{prereg.Host.Email})
}

// SendPasswordReset emails a reset link to the user. Returns the transport
// error so the auth flow can decide how loudly to fail.
func (ns *NotificationService) SendPasswordReset(user *models.User, resetURL string) error {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>To reset your password, visit the link below:</p><p><a href=\"%s\">%s</a></p>"+
			"<p>If you did not request a password reset, ignore this email.</p>",
		user.FirstName, resetURL, resetURL)

	if ns.mailer == nil {
		return fmt.Errorf("%w: no mail transport configured", ErrExternalService)
	}

	err := ns.mailer.Send(MailMessage{
		Subject:  "Reset Your Password",
		To:       []string{user.Email},
		TextBody: "To reset your password, visit: " + resetURL,
		HTMLBody: body,
	})
	ns.audit.Record(user.OrganizationID, &user.ID, "email_sent", map[string]interface{}{
		"to":      []string{user.Email},
		"subject": "Reset Your Password",
		"ok":      err == nil,
	})
	if err != nil {
		utils.ErrorLogger.Printf("notification: password reset email to %s failed: %v", user.Email, err)
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return nil
}

// deliver sends and audits one message. Transport errors are swallowed.
func (ns *NotificationService) deliver(organizationID uint, templateType, subject, body string, recipients []string) {
	if ns.mailer == nil {
		utils.InfoLogger.Printf("notification: %s email to %v skipped, no mail transport configured", templateType, recipients)
		return
	}

	err := ns.mailer.Send(MailMessage{
		Subject:  subject,
		To:       recipients,
		TextBody: body,
		HTMLBody: body,
	})
	ns.audit.Record(organizationID, nil, "email_sent", map[string]interface{}{
		"to":       recipients,
		"subject":  subject,
		"template": templateType,
		"ok":       err == nil,
	})
	if err != nil {
		utils.ErrorLogger.Printf("notification: %s email to %v failed: %v", templateType, recipients, err)
	}
}
