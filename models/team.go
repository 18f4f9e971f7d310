package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Team statuses. Admin review can move a team between all three in any
// direction; none of them is terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ID verification statuses, set by the out-of-band OCR/review flow.
const (
	VerificationPending     = "pending"
	VerificationVerified    = "verified"
	VerificationRejected    = "rejected"
	VerificationNotRequired = "not-required"
)

// Team represents one registered hackathon team. The (TeamLeadEmail,
// TeamLeadPhone) pair doubles as the team's login credential.
type Team struct {
	gorm.Model

	// Public identifier in the form NH-<year>-<4 digits>. Generated, never
	// user supplied.
	TeamID string `gorm:"uniqueIndex;not null" json:"team_id"`

	TeamName        string `gorm:"not null" json:"team_name"`
	InstitutionName string `json:"institution_name"`
	NumberOfMembers string `json:"number_of_members"`

	TeamLeadName  string `gorm:"not null" json:"team_lead_name"`
	TeamLeadEmail string `gorm:"uniqueIndex;not null" json:"team_lead_email"`
	TeamLeadPhone string `gorm:"uniqueIndex;not null" json:"team_lead_phone"`

	ProblemStatementID string `json:"problem_statement_id"`
	ProjectTitle       string `json:"project_title"`
	ProjectDescription string `gorm:"type:text" json:"project_description"`
	TechStack          string `json:"tech_stack"`

	Status string `gorm:"default:'pending'" json:"status"` // pending, approved, rejected

	// Relations
	Members      []TeamMember    `gorm:"foreignKey:TeamRef" json:"members,omitempty"`
	Verification *IDVerification `gorm:"foreignKey:TeamRef" json:"id_verification,omitempty"`
}

// TeamMember is one row of a team's member list. Position 0 conventionally
// mirrors the team lead's own entry.
type TeamMember struct {
	gorm.Model
	TeamRef  uint   `gorm:"not null;index" json:"-"`
	Position int    `gorm:"not null" json:"position"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"index" json:"email"`
	Role     string `json:"role"`
}

// IDVerification holds the ID-card review state for a team. A missing row
// means the team has not been through verification at all.
type IDVerification struct {
	gorm.Model
	TeamRef uint `gorm:"uniqueIndex;not null" json:"-"`

	Status     string  `gorm:"default:'pending'" json:"status"` // pending, verified, rejected, not-required
	Confidence float64 `gorm:"default:0" json:"confidence"`

	// Best-effort OCR output. Keys with empty values are stripped before
	// persistence; an empty map is stored as NULL.
	ExtractedData ExtractedData `gorm:"type:jsonb" json:"extracted_data,omitempty"`

	IDCardPath      string     `json:"id_card_path,omitempty"`
	UploadedAt      *time.Time `json:"uploaded_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	VerifiedBy      string     `json:"verified_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// ExtractedData is the OCR key/value payload stored as a JSON column.
type ExtractedData map[string]string

func (e ExtractedData) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}
	return json.Marshal(e)
}

func (e *ExtractedData) Scan(value interface{}) error {
	if value == nil {
		*e = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ExtractedData: %T", value)
	}
	return json.Unmarshal(raw, e)
}

// MemberEmails returns the non-empty member emails in list order.
func (t *Team) MemberEmails() []string {
	emails := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Email != "" {
			emails = append(emails, m.Email)
		}
	}
	return emails
}
