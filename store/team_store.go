package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"numrenohacks/models"
)

// Allocation retries before giving up. The NH-<year>-NNNN space only has
// 10,000 slots, so an unbounded retry loop could spin forever once the
// event fills up.
const maxIDAttempts = 50

var (
	// ErrIDSpaceExhausted is returned when no free team ID could be found
	// within maxIDAttempts draws.
	ErrIDSpaceExhausted = errors.New("could not allocate a free team ID")

	// ErrNotFound is returned for lookups of teams that do not exist.
	ErrNotFound = errors.New("team not found")

	// ErrInvalidCredentials covers both "no such team" and transient read
	// failures during login. Callers cannot tell the two apart from this
	// value alone; the login flow deliberately reports them identically.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DuplicateError rejects a registration whose emails or phone collide with
// an existing team. Reason is the user-facing message.
type DuplicateError struct {
	Reason string
}

func (e *DuplicateError) Error() string { return e.Reason }

// MemberInput is one member row of a registration submission.
type MemberInput struct {
	Name  string
	Email string
	Role  string
}

// VerificationInput carries the optional ID-card data collected during the
// registration wizard.
type VerificationInput struct {
	Status        string
	Confidence    float64
	ExtractedData map[string]string
	IDCardPath    string
	UploadedAt    *time.Time
}

// Registration is the assembled wizard payload handed to Register.
type Registration struct {
	TeamName           string
	InstitutionName    string
	NumberOfMembers    string
	TeamLeadName       string
	TeamLeadEmail      string
	TeamLeadPhone      string
	ProblemStatementID string
	ProjectTitle       string
	ProjectDescription string
	TechStack          string
	Members            []MemberInput
	Verification       *VerificationInput
}

// TeamStore owns the team collection: uniqueness checks, team ID
// allocation, registration writes, status updates and credential lookups.
// It is stateless between calls; every operation is a fresh set of queries.
type TeamStore struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamStore(db *gorm.DB, logger *log.Logger) *TeamStore {
	return &TeamStore{DB: db, Logger: logger}
}

// CheckDuplicate decides whether a candidate registration collides with an
// existing team. Rules run in a fixed order and the first hit wins:
// lead email as lead, lead phone, any submitted email as another team's
// lead, any submitted email as another team's member. It only compares
// against other records; repeats inside the submission itself are the
// caller's business.
func (s *TeamStore) CheckDuplicate(leadEmail, leadPhone string, memberEmails []string) error {
	var count int64
	if err := s.DB.Model(&models.Team{}).
		Where("team_lead_email = ?", leadEmail).
		Count(&count).Error; err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	if count > 0 {
		return &DuplicateError{Reason: "This email is already registered as a team lead. Please use a different email."}
	}

	if err := s.DB.Model(&models.Team{}).
		Where("team_lead_phone = ?", leadPhone).
		Count(&count).Error; err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	if count > 0 {
		return &DuplicateError{Reason: "This phone number is already registered. Please use a different number."}
	}

	allEmails := collectEmails(leadEmail, memberEmails)
	if len(allEmails) == 0 {
		return nil
	}

	var lead models.Team
	err := s.DB.Where("team_lead_email IN ?", allEmails).First(&lead).Error
	if err == nil {
		return &DuplicateError{Reason: fmt.Sprintf("Email %s is already registered in another team.", lead.TeamLeadEmail)}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("duplicate check failed: %w", err)
	}

	var member models.TeamMember
	err = s.DB.Where("email IN ?", allEmails).First(&member).Error
	if err == nil {
		return &DuplicateError{Reason: fmt.Sprintf("Email %s is already registered as a team member.", member.Email)}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("duplicate check failed: %w", err)
	}

	return nil
}

// AllocateTeamID draws random NH-<year>-NNNN identifiers until one is free.
// The returned ID is not reserved; the unique index on teams.team_id is the
// final arbiter when the registration row is inserted.
func (s *TeamStore) AllocateTeamID() (string, error) {
	year := time.Now().Year()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("failed to draw team ID: %w", err)
		}
		teamID := fmt.Sprintf("NH-%d-%04d", year, n.Int64())

		var count int64
		if err := s.DB.Model(&models.Team{}).
			Where("team_id = ?", teamID).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("team ID lookup failed: %w", err)
		}
		if count == 0 {
			return teamID, nil
		}
	}

	return "", ErrIDSpaceExhausted
}

// Register runs the full registration protocol: duplicate check, ID
// allocation, record assembly and a single transactional insert. The unique
// indexes on team_id, team_lead_email and team_lead_phone close the
// check-then-insert race for those fields: a racer that loses gets a
// DuplicateError back instead of a second row.
func (s *TeamStore) Register(reg Registration) (string, error) {
	memberEmails := make([]string, 0, len(reg.Members))
	for _, m := range reg.Members {
		memberEmails = append(memberEmails, m.Email)
	}

	if err := s.CheckDuplicate(reg.TeamLeadEmail, reg.TeamLeadPhone, memberEmails); err != nil {
		return "", err
	}

	teamID, err := s.AllocateTeamID()
	if err != nil {
		return "", err
	}

	team := models.Team{
		TeamID:             teamID,
		TeamName:           reg.TeamName,
		InstitutionName:    reg.InstitutionName,
		NumberOfMembers:    reg.NumberOfMembers,
		TeamLeadName:       reg.TeamLeadName,
		TeamLeadEmail:      reg.TeamLeadEmail,
		TeamLeadPhone:      reg.TeamLeadPhone,
		ProblemStatementID: reg.ProblemStatementID,
		ProjectTitle:       reg.ProjectTitle,
		ProjectDescription: reg.ProjectDescription,
		TechStack:          reg.TechStack,
		Status:             models.StatusPending,
	}
	for i, m := range reg.Members {
		team.Members = append(team.Members, models.TeamMember{
			Position: i,
			Name:     m.Name,
			Email:    m.Email,
			Role:     m.Role,
		})
	}
	team.Verification = buildVerification(reg.Verification)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&team).Error
	})
	if err != nil {
		if dup := duplicateFromWriteError(err); dup != nil {
			return "", dup
		}
		return "", fmt.Errorf("failed to register team: %w", err)
	}

	return teamID, nil
}

// FindByCredentials looks a team up by its lead's email and phone, the
// password-free login key. Both not-found and read failures surface as
// ErrInvalidCredentials.
func (s *TeamStore) FindByCredentials(email, phone string) (*models.Team, error) {
	var team models.Team
	err := s.preloaded().
		Where("team_lead_email = ? AND team_lead_phone = ?", email, phone).
		First(&team).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Logger.Printf("credential lookup failed: %v", err)
		}
		return nil, ErrInvalidCredentials
	}
	return &team, nil
}

// UpdateStatus sets a team's review status unconditionally and refreshes
// its updated timestamp. Setting the current status again is a valid no-op
// transition; there is no state machine here.
func (s *TeamStore) UpdateStatus(id uint, status string) (*models.Team, error) {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}

	var team models.Team
	if err := s.DB.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	if err := s.DB.Model(&team).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update team status: %w", err)
	}

	return s.GetByID(id)
}

// GetByID fetches one team with its members and verification state.
func (s *TeamStore) GetByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := s.preloaded().First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return &team, nil
}

// GetByTeamID fetches one team by its public NH-... identifier.
func (s *TeamStore) GetByTeamID(teamID string) (*models.Team, error) {
	var team models.Team
	if err := s.preloaded().Where("team_id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return &team, nil
}

// GetAll returns every registered team, newest first, for the admin console.
func (s *TeamStore) GetAll() ([]models.Team, error) {
	var teams []models.Team
	if err := s.preloaded().Order("created_at DESC").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	return teams, nil
}

// CountByStatus returns how many teams sit in each review status.
func (s *TeamStore) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := s.DB.Model(&models.Team{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}

	counts := map[string]int64{
		models.StatusPending:  0,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// AttachIDCard records an uploaded ID card and its best-effort OCR output
// against a team, creating or refreshing the verification row.
func (s *TeamStore) AttachIDCard(id uint, path string, confidence float64, extracted map[string]string) error {
	var team models.Team
	if err := s.DB.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load team: %w", err)
	}

	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var verification models.IDVerification
		err := tx.Where("team_ref = ?", team.ID).First(&verification).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load verification: %w", err)
		}

		verification.TeamRef = team.ID
		verification.Status = models.VerificationPending
		verification.Confidence = confidence
		verification.ExtractedData = normalizeExtracted(extracted)
		verification.IDCardPath = path
		verification.UploadedAt = &now
		verification.VerifiedAt = nil
		verification.VerifiedBy = ""
		verification.RejectionReason = ""

		if err := tx.Save(&verification).Error; err != nil {
			return fmt.Errorf("failed to save verification: %w", err)
		}
		// Touch the team so its updated timestamp reflects the upload.
		return tx.Model(&team).Update("updated_at", now).Error
	})
}

// UpdateVerification records an admin's verify/reject decision on a team's
// ID card.
func (s *TeamStore) UpdateVerification(id uint, status, verifiedBy, rejectionReason string) error {
	switch status {
	case models.VerificationVerified, models.VerificationRejected:
	default:
		return fmt.Errorf("unknown verification status %q", status)
	}

	var verification models.IDVerification
	if err := s.DB.Where("team_ref = ?", id).First(&verification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load verification: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           status,
		"verified_at":      now,
		"verified_by":      verifiedBy,
		"rejection_reason": rejectionReason,
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&verification).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update verification: %w", err)
		}
		return tx.Model(&models.Team{}).Where("id = ?", id).
			Update("updated_at", now).Error
	})
}

func (s *TeamStore) preloaded() *gorm.DB {
	return s.DB.
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Verification")
}

func buildVerification(in *VerificationInput) *models.IDVerification {
	if in == nil {
		return nil
	}
	status := in.Status
	if status == "" {
		status = models.VerificationPending
	}
	return &models.IDVerification{
		Status:        status,
		Confidence:    in.Confidence,
		ExtractedData: normalizeExtracted(in.ExtractedData),
		IDCardPath:    in.IDCardPath,
		UploadedAt:    in.UploadedAt,
	}
}

// normalizeExtracted drops keys whose values are empty so the persisted
// document never carries explicitly-absent fields. An all-empty map
// normalizes to nil, which is stored as NULL.
func normalizeExtracted(raw map[string]string) models.ExtractedData {
	if len(raw) == 0 {
		return nil
	}
	cleaned := models.ExtractedData{}
	for k, v := range raw {
		if strings.TrimSpace(v) != "" {
			cleaned[k] = v
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func collectEmails(leadEmail string, memberEmails []string) []string {
	seen := make(map[string]struct{}, len(memberEmails)+1)
	out := make([]string, 0, len(memberEmails)+1)
	for _, e := range append([]string{leadEmail}, memberEmails...) {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// duplicateFromWriteError maps a unique-index violation raised by the
// insert itself back to the matching rejection reason. This is the path a
// registration takes when it loses the race against a concurrent submit.
func duplicateFromWriteError(err error) *DuplicateError {
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "team_lead_email"):
		return &DuplicateError{Reason: "This email is already registered as a team lead. Please use a different email."}
	case strings.Contains(msg, "team_lead_phone"):
		return &DuplicateError{Reason: "This phone number is already registered. Please use a different number."}
	case strings.Contains(msg, "team_id"):
		return &DuplicateError{Reason: "Team ID collision, please retry your registration."}
	}
	return &DuplicateError{Reason: "This registration conflicts with an existing team."}
}
