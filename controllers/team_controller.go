package controller

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"numrenohacks/config"
	"numrenohacks/store"
	"numrenohacks/utils"
)

type TeamController struct {
	Store  *store.TeamStore
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		Store:  store.NewTeamStore(db, logger),
		Logger: logger,
	}
}

// GetMyTeam returns the dashboard record for the session's team.
func (tc *TeamController) GetMyTeam(c *fiber.Ctx) error {
	teamDocID := c.Locals("teamDocID").(uint)

	team, err := tc.Store.GetByID(teamDocID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Team not found.",
			})
		}
		utils.LogError("team_fetch", err, map[string]interface{}{
			"team_doc_id": teamDocID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch team.",
		})
	}

	return c.JSON(utils.SuccessResponse(team))
}

// UploadIDCard stores an uploaded ID-card image under the uploads dir and
// records it, along with the OCR boundary's best-effort output, against the
// session's team.
func (tc *TeamController) UploadIDCard(c *fiber.Ctx) error {
	teamDocID := c.Locals("teamDocID").(uint)

	file, err := c.FormFile("idCard")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "ID card file is required",
		})
	}

	confidence, _ := strconv.ParseFloat(c.FormValue("confidence"), 64)
	extracted := map[string]string{
		"name":        c.FormValue("extractedName"),
		"idNumber":    c.FormValue("extractedIdNumber"),
		"institution": c.FormValue("extractedInstitution"),
		"fullText":    c.FormValue("extractedFullText"),
	}

	if err := os.MkdirAll(config.AppConfig.UploadDir, 0o755); err != nil {
		utils.LogError("id_card_upload", err, map[string]interface{}{
			"team_doc_id": teamDocID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store ID card",
		})
	}

	filename := fmt.Sprintf("%d-%d%s", teamDocID, time.Now().UnixNano(), filepath.Ext(file.Filename))
	path := filepath.Join(config.AppConfig.UploadDir, filename)
	if err := c.SaveFile(file, path); err != nil {
		utils.LogError("id_card_upload", err, map[string]interface{}{
			"team_doc_id": teamDocID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store ID card",
		})
	}

	if err := tc.Store.AttachIDCard(teamDocID, path, confidence, extracted); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to record ID card upload",
		})
	}

	tc.Logger.Printf("ID card uploaded for team %d: %s", teamDocID, filename)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ID card uploaded. Verification is pending.",
	})
}
