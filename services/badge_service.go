package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
	"github.com/yeremiapane/visitor-app/utils"
)

// BadgeElement is one positioned field in a badge layout. Text elements may
// carry {{token}} placeholders.
type BadgeElement struct {
	Type       string `json:"type"`
	X          string `json:"x"`
	Y          string `json:"y"`
	Align      string `json:"align,omitempty"`
	Text       string `json:"text,omitempty"`
	Src        string `json:"src,omitempty"`
	FontSize   string `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
}

// BadgeLayout is the JSON document stored in Organization.BadgeTemplate and,
// after substitution, in Badge.TemplateData.
type BadgeLayout struct {
	Layout   string         `json:"layout"`
	Width    string         `json:"width"`
	Height   string         `json:"height"`
	Elements []BadgeElement `json:"elements"`
}

// DefaultBadgeLayout is the stock layout used when an organization has no
// template configured.
func DefaultBadgeLayout(organizationName string) BadgeLayout {
	return BadgeLayout{
		Layout: "portrait",
		Width:  "3.5in",
		Height: "2in",
		Elements: []BadgeElement{
			{Type: "text", X: "50%", Y: "15%", Align: "center", Text: organizationName, FontSize: "16pt", FontWeight: "bold"},
			{Type: "text", X: "50%", Y: "25%", Align: "center", Text: "VISITOR", FontSize: "14pt"},
			{Type: "text", X: "50%", Y: "40%", Align: "center", Text: "{{visitor_name}}", FontSize: "18pt", FontWeight: "bold"},
			{Type: "text", X: "50%", Y: "50%", Align: "center", Text: "{{visitor_company}}", FontSize: "12pt"},
			{Type: "text", X: "50%", Y: "60%", Align: "center", Text: "Visiting: {{host_name}}", FontSize: "12pt"},
			{Type: "text", X: "50%", Y: "70%", Align: "center", Text: "{{check_in_date}}", FontSize: "12pt"},
			{Type: "text", X: "50%", Y: "85%", Align: "center", Text: "Please return badge upon departure", FontSize: "10pt"},
		},
	}
}

// BadgeService renders printable badge layouts for check-ins.
type BadgeService struct {
	db    *gorm.DB
	audit *AuditLogger
}

func NewBadgeService(db *gorm.DB, audit *AuditLogger) *BadgeService {
	return &BadgeService{db: db, audit: audit}
}

// Generate renders the organization's badge layout for a check-in and
// persists the substituted result. checkin must have Visitor and Host
// preloaded. A malformed stored template degrades to an empty layout
// rather than failing the check-in.
func (bs *BadgeService) Generate(checkin *models.CheckIn, org *models.Organization) (*models.Badge, error) {
	if !org.EnableBadgePrinting {
		return nil, nil
	}

	layout := bs.resolveLayout(org)

	ctx := checkInContext(checkin, org)
	ctx["check_in_time"] = checkin.CheckInTime.Format("15:04")
	ctx["photo"] = checkin.Visitor.Photo
	if ctx["host_name"] == "" {
		ctx["host_name"] = "N/A"
	}

	for i, el := range layout.Elements {
		if el.Type == "text" && el.Text != "" {
			layout.Elements[i].Text = SubstitutePlaceholders(el.Text, ctx)
		}
	}

	rendered, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal badge layout: %w", err)
	}

	badge := models.Badge{
		CheckInID:    checkin.ID,
		Reference:    uuid.NewString(),
		TemplateData: string(rendered),
		CreatedAt:    time.Now().UTC(),
	}
	if err := bs.db.Create(&badge).Error; err != nil {
		return nil, err
	}

	bs.audit.Record(org.ID, nil, "badge_generated", map[string]interface{}{
		"check_in_id": checkin.ID,
		"badge_id":    badge.ID,
	})
	return &badge, nil
}

func (bs *BadgeService) resolveLayout(org *models.Organization) BadgeLayout {
	if org.BadgeTemplate == "" {
		return DefaultBadgeLayout(org.Name)
	}

	var layout BadgeLayout
	if err := json.Unmarshal([]byte(org.BadgeTemplate), &layout); err != nil {
		utils.ErrorLogger.Printf("badge: malformed template for organization %d: %v", org.ID, err)
		return BadgeLayout{Layout: "portrait", Width: "3.5in", Height: "2in", Elements: []BadgeElement{}}
	}
	return layout
}

// MarkPrinted stamps printed_at on a badge owned by the organization and
// flags its check-in. Reprints are allowed; only the first print changes
// printed_at.
func (bs *BadgeService) MarkPrinted(organizationID, badgeID uint) (*models.Badge, error) {
	var badge models.Badge
	err := bs.db.Joins("JOIN check_ins ON check_ins.id = badges.check_in_id").
		Joins("JOIN visitors ON visitors.id = check_ins.visitor_id").
		Where("badges.id = ? AND visitors.organization_id = ?", badgeID, organizationID).
		First(&badge).Error
	if err != nil {
		return nil, ErrNotFound
	}

	if badge.PrintedAt == nil {
		now := time.Now().UTC()
		badge.PrintedAt = &now
		if err := bs.db.Save(&badge).Error; err != nil {
			return nil, err
		}
	}

	if err := bs.db.Model(&models.CheckIn{}).
		Where("id = ?", badge.CheckInID).
		Update("badge_printed", true).Error; err != nil {
		return nil, err
	}

	bs.audit.Record(organizationID, nil, "badge_printed", map[string]interface{}{
		"badge_id": badge.ID,
	})
	return &badge, nil
}
