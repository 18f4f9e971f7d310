package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"numrenohacks/models"
)

// CleanupWorker deletes ID-card images whose verification decision is old
// enough that the file no longer needs to be kept. Team records themselves
// are never deleted; only the stored file and its path go away.
type CleanupWorker struct {
	DB            *gorm.DB
	Logger        *log.Logger
	UploadDir     string
	RetentionDays int
	Interval      time.Duration
}

func NewCleanupWorker(db *gorm.DB, logger *log.Logger, uploadDir string, retentionDays int) *CleanupWorker {
	return &CleanupWorker{
		DB:            db,
		Logger:        logger,
		UploadDir:     uploadDir,
		RetentionDays: retentionDays,
		Interval:      time.Hour,
	}
}

func (cw *CleanupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	cw.Logger.Println("ID card cleanup worker started")

	ticker := time.NewTicker(cw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Logger.Println("Cleanup worker shutting down...")
			return
		case <-ticker.C:
			if _, err := cw.RunOnce(); err != nil {
				cw.Logger.Printf("Cleanup sweep failed: %v", err)
			}
		}
	}
}

// RunOnce performs a single retention sweep and returns how many files it
// deleted.
func (cw *CleanupWorker) RunOnce() (int, error) {
	cutoff := time.Now().AddDate(0, 0, -cw.RetentionDays)

	var verifications []models.IDVerification
	if err := cw.DB.
		Where("status IN ?", []string{models.VerificationVerified, models.VerificationRejected}).
		Where("verified_at IS NOT NULL AND verified_at < ?", cutoff).
		Where("id_card_path <> ''").
		Find(&verifications).Error; err != nil {
		return 0, fmt.Errorf("failed to list expired ID cards: %w", err)
	}

	deleted := 0
	for _, v := range verifications {
		filename := filepath.Base(v.IDCardPath)
		path := filepath.Join(cw.UploadDir, filename)

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			cw.Logger.Printf("Failed to delete %s: %v", filename, err)
			continue
		}

		if err := cw.DB.Model(&v).Update("id_card_path", "").Error; err != nil {
			cw.Logger.Printf("Failed to clear path for verification %d: %v", v.ID, err)
			continue
		}

		deleted++
		cw.Logger.Printf("Deleted expired ID card: %s (verified: %s)",
			filename, v.VerifiedAt.Format("2006-01-02"))
	}

	if deleted > 0 || len(verifications) > 0 {
		cw.Logger.Printf("Cleanup complete: %d deleted, %d candidates", deleted, len(verifications))
	}
	return deleted, nil
}
