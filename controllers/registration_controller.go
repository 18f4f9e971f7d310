package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"numrenohacks/config"
	"numrenohacks/store"
	"numrenohacks/utils"
)

type MemberPayload struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty"`
	Role  string `json:"role" validate:"max=50"`
}

type RegisterRequest struct {
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`

	TeamName        string `json:"teamName" validate:"required,min=2,max=100"`
	InstitutionName string `json:"institutionName" validate:"required,max=200"`
	NumberOfMembers string `json:"numberOfMembers" validate:"required"`

	TeamLeadName  string `json:"teamLeadName" validate:"required,max=100"`
	TeamLeadEmail string `json:"teamLeadEmail" validate:"required,email"`
	TeamLeadPhone string `json:"teamLeadPhone" validate:"required,min=7,max=20"`

	ProblemStatementID string `json:"problemStatementId" validate:"required"`
	ProjectTitle       string `json:"projectTitle" validate:"required,max=200"`
	ProjectDescription string `json:"projectDescription" validate:"required,min=50"`
	TechStack          string `json:"techStack" validate:"required"`

	Members []MemberPayload `json:"members" validate:"required,min=1,dive"`

	IDVerification *IDVerificationPayload `json:"idVerification"`
}

// IDVerificationPayload carries the optional OCR output collected by the
// wizard's ID-card step. All fields are best-effort.
type IDVerificationPayload struct {
	Status        string            `json:"status"`
	Confidence    float64           `json:"confidence"`
	ExtractedData map[string]string `json:"extractedData"`
	IDCardPath    string            `json:"idCardPath"`
}

type RegistrationController struct {
	Store  *store.TeamStore
	Logger *log.Logger
}

func NewRegistrationController(db *gorm.DB, logger *log.Logger) *RegistrationController {
	return &RegistrationController{
		Store:  store.NewTeamStore(db, logger),
		Logger: logger,
	}
}

// Register handles the wizard's final submit: CAPTCHA gate first, then the
// registration store, then a best-effort confirmation email.
func (rc *RegistrationController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	for _, m := range req.Members {
		if m.Email == "" {
			continue
		}
		if err := utils.ValidateEmailFormat(m.Email); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
	}

	// The CAPTCHA gate runs before anything touches the store.
	if config.AppConfig.RecaptchaSecretKey != "" {
		result, err := utils.VerifyRecaptcha(req.RecaptchaToken, c.IP())
		if err != nil {
			utils.LogError("recaptcha_verify", err, map[string]interface{}{
				"ip": c.IP(),
			})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "reCAPTCHA verification failed. Please try again.",
			})
		}
		if !result.Success {
			rc.Logger.Printf("reCAPTCHA verification failed: %v", result.ErrorCodes)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "reCAPTCHA verification failed. Please try again.",
			})
		}
		if !result.Passed(config.AppConfig.RecaptchaMinScore) {
			rc.Logger.Printf("reCAPTCHA score too low: %.2f (minimum: %.2f)",
				result.Score, config.AppConfig.RecaptchaMinScore)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Security verification failed. Please try again later.",
			})
		}
	}

	reg := store.Registration{
		TeamName:           req.TeamName,
		InstitutionName:    req.InstitutionName,
		NumberOfMembers:    req.NumberOfMembers,
		TeamLeadName:       req.TeamLeadName,
		TeamLeadEmail:      req.TeamLeadEmail,
		TeamLeadPhone:      req.TeamLeadPhone,
		ProblemStatementID: req.ProblemStatementID,
		ProjectTitle:       req.ProjectTitle,
		ProjectDescription: req.ProjectDescription,
		TechStack:          req.TechStack,
	}
	for _, m := range req.Members {
		reg.Members = append(reg.Members, store.MemberInput{
			Name:  m.Name,
			Email: m.Email,
			Role:  m.Role,
		})
	}
	if req.IDVerification != nil {
		reg.Verification = &store.VerificationInput{
			Status:        req.IDVerification.Status,
			Confidence:    req.IDVerification.Confidence,
			ExtractedData: req.IDVerification.ExtractedData,
			IDCardPath:    req.IDVerification.IDCardPath,
		}
	}

	teamID, err := rc.Store.Register(reg)
	if err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": dup.Reason,
			})
		}
		utils.LogError("team_register", err, map[string]interface{}{
			"team_name": req.TeamName,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to register team. Please try again.",
		})
	}

	rc.Logger.Printf("Team registered: %s (%s)", req.TeamName, teamID)

	// Confirmation email is fire-and-forget. A delivery failure never
	// converts into a registration failure.
	go func(email, name, id, lead string) {
		if err := utils.SendConfirmationEmail(email, name, id, lead); err != nil {
			utils.LogError("confirmation_email", err, map[string]interface{}{
				"team_id": id,
			})
		}
	}(req.TeamLeadEmail, req.TeamName, teamID, req.TeamLeadName)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Team registered successfully!",
		"teamId":  teamID,
	})
}
