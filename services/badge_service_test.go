package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/visitor-app/models"
)

func seedCheckInForBadge(db *gorm.DB, orgID uint, host *models.Staff) *models.CheckIn {
	now := time.Now().UTC()
	visitor := models.Visitor{
		FirstName: "Jane", LastName: "Doe", Company: "Globex",
		OrganizationID: orgID, CreatedAt: now, UpdatedAt: now,
	}
	db.Create(&visitor)
	checkin := models.CheckIn{
		VisitorID: visitor.ID, CheckInTime: now, CreatedAt: now, UpdatedAt: now,
	}
	if host != nil {
		checkin.StaffID = &host.ID
	}
	db.Create(&checkin)
	checkin.Visitor = visitor
	checkin.Host = host
	return &checkin
}

func TestGenerateBadgeSubstitutesTokens(t *testing.T) {
	db := newTestDB("badge_generate")
	bs := NewBadgeService(db, NewAuditLogger(db))
	org := seedOrganization(db, "Badge Org", "basic")
	host := seedStaff(db, org.ID, "Harry", "Host", "harry@badge.test")

	checkin := seedCheckInForBadge(db, org.ID, &host)

	badge, err := bs.Generate(checkin, &org)
	assert.NoError(t, err)
	if assert.NotNil(t, badge) {
		assert.NotEmpty(t, badge.Reference)
		assert.Nil(t, badge.PrintedAt)
		assert.Contains(t, badge.TemplateData, "Jane Doe")
		assert.Contains(t, badge.TemplateData, "Globex")
		assert.Contains(t, badge.TemplateData, "Visiting: Harry Host")
		assert.NotContains(t, badge.TemplateData, "{{visitor_name}}")
	}
}

func TestGenerateBadgeHostFallback(t *testing.T) {
	db := newTestDB("badge_no_host")
	bs := NewBadgeService(db, NewAuditLogger(db))
	org := seedOrganization(db, "Badge Org NH", "basic")

	checkin := seedCheckInForBadge(db, org.ID, nil)

	badge, err := bs.Generate(checkin, &org)
	assert.NoError(t, err)
	if assert.NotNil(t, badge) {
		assert.Contains(t, badge.TemplateData, "Visiting: N/A")
	}
}

func TestGenerateBadgeDisabled(t *testing.T) {
	db := newTestDB("badge_disabled")
	bs := NewBadgeService(db, NewAuditLogger(db))
	org := seedOrganization(db, "No Badge Org", "basic")
	org.EnableBadgePrinting = false

	checkin := seedCheckInForBadge(db, org.ID, nil)

	badge, err := bs.Generate(checkin, &org)
	assert.NoError(t, err)
	assert.Nil(t, badge)
}

func TestGenerateBadgeMalformedTemplateDegrades(t *testing.T) {
	db := newTestDB("badge_malformed")
	bs := NewBadgeService(db, NewAuditLogger(db))
	org := seedOrganization(db, "Broken Template Org", "basic")
	org.BadgeTemplate = "{not json"

	checkin := seedCheckInForBadge(db, org.ID, nil)

	badge, err := bs.Generate(checkin, &org)
	assert.NoError(t, err)
	if assert.NotNil(t, badge) {
		assert.Contains(t, badge.TemplateData, `"elements":[]`)
	}
}

func TestMarkPrintedOnlyFirstPrintStamps(t *testing.T) {
	db := newTestDB("badge_print")
	bs := NewBadgeService(db, NewAuditLogger(db))
	org := seedOrganization(db, "Print Org", "basic")

	checkin := seedCheckInForBadge(db, org.ID, nil)
	badge, err := bs.Generate(checkin, &org)
	assert.NoError(t, err)

	printed, err := bs.MarkPrinted(org.ID, badge.ID)
	assert.NoError(t, err)
	assert.NotNil(t, printed.PrintedAt)
	firstStamp := *printed.PrintedAt

	var ci models.CheckIn
	db.First(&ci, checkin.ID)
	assert.True(t, ci.BadgePrinted)

	// A reprint keeps the original timestamp.
	reprinted, err := bs.MarkPrinted(org.ID, badge.ID)
	assert.NoError(t, err)
	assert.Equal(t, firstStamp, *reprinted.PrintedAt)
}

func TestMarkPrintedTenantScoped(t *testing.T) {
	db := newTestDB("badge_tenant")
	bs := NewBadgeService(db, NewAuditLogger(db))
	org := seedOrganization(db, "Badge Org A", "basic")
	other := seedOrganization(db, "Badge Org B", "basic")

	checkin := seedCheckInForBadge(db, org.ID, nil)
	badge, err := bs.Generate(checkin, &org)
	assert.NoError(t, err)

	_, err = bs.MarkPrinted(other.ID, badge.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
