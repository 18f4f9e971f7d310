package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"numrenohacks/store"
	"numrenohacks/utils"
)

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type VerificationUpdateRequest struct {
	Status          string `json:"status" validate:"required,oneof=verified rejected"`
	VerifiedBy      string `json:"verifiedBy"`
	RejectionReason string `json:"rejectionReason"`
}

type AdminController struct {
	Store  *store.TeamStore
	Logger *log.Logger
}

func NewAdminController(db *gorm.DB, logger *log.Logger) *AdminController {
	return &AdminController{
		Store:  store.NewTeamStore(db, logger),
		Logger: logger,
	}
}

// GetTeams lists every registration for the review console.
func (ac *AdminController) GetTeams(c *fiber.Ctx) error {
	teams, err := ac.Store.GetAll()
	if err != nil {
		utils.LogError("admin_list_teams", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch teams.",
		})
	}
	return c.JSON(utils.SuccessResponse(teams))
}

// GetStats returns per-status registration counts for the console header.
func (ac *AdminController) GetStats(c *fiber.Ctx) error {
	counts, err := ac.Store.CountByStatus()
	if err != nil {
		utils.LogError("admin_stats", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch stats.",
		})
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"total":    total,
		"byStatus": counts,
	}))
}

// UpdateStatus moves a team between review states. Any transition is
// allowed, including back to pending. The notification email is
// fire-and-forget: its failure never rolls the status change back.
func (ac *AdminController) UpdateStatus(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var req StatusUpdateRequest
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

	team, err := ac.Store.UpdateStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Team not found.",
			})
		}
		utils.LogError("admin_update_status", err, map[string]interface{}{
			"team_doc_id": id,
			"status":      req.Status,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update team status.",
		})
	}

	ac.Logger.Printf("Team %s status set to %s", team.TeamID, req.Status)

	go func(email, name, teamID, lead, status string) {
		if err := utils.SendStatusEmail(email, name, teamID, lead, status); err != nil {
			utils.LogError("status_email", err, map[string]interface{}{
				"team_id": teamID,
				"status":  status,
			})
		}
	}(team.TeamLeadEmail, team.TeamName, team.TeamID, team.TeamLeadName, req.Status)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Team " + req.Status + " successfully!",
		"team":    team,
	})
}

// UpdateVerification records an ID-card verify/reject decision.
func (ac *AdminController) UpdateVerification(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))

	var req VerificationUpdateRequest
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

	verifiedBy := req.VerifiedBy
	if verifiedBy == "" {
		verifiedBy = "Admin"
	}

	if err := ac.Store.UpdateVerification(id, req.Status, verifiedBy, req.RejectionReason); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "No ID verification on record for this team.",
			})
		}
		utils.LogError("admin_update_verification", err, map[string]interface{}{
			"team_doc_id": id,
			"status":      req.Status,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update ID verification status.",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "ID verification " + req.Status + " successfully!",
	})
}
