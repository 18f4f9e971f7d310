package worker

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"numrenohacks/models"
)

func newWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Team{}, &models.IDVerification{}))
	return db
}

func seedVerification(t *testing.T, db *gorm.DB, teamRef uint, status, path string, verifiedAt *time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.IDVerification{
		TeamRef:    teamRef,
		Status:     status,
		IDCardPath: path,
		VerifiedAt: verifiedAt,
	}).Error)
}

func TestRunOnceDeletesExpiredCards(t *testing.T) {
	db := newWorkerTestDB(t)
	dir := t.TempDir()

	old := time.Now().AddDate(0, 0, -10)
	recent := time.Now().AddDate(0, 0, -2)

	// Verified 10 days ago, past the 7-day window: swept.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-old.jpg"), []byte("jpg"), 0644))
	seedVerification(t, db, 1, models.VerificationVerified, "1-old.jpg", &old)

	// Rejected 10 days ago: swept too.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2-old.jpg"), []byte("jpg"), 0644))
	seedVerification(t, db, 2, models.VerificationRejected, "2-old.jpg", &old)

	// Decision is recent: kept.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3-new.jpg"), []byte("jpg"), 0644))
	seedVerification(t, db, 3, models.VerificationVerified, "3-new.jpg", &recent)

	// Still pending: kept regardless of upload age.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "4-pending.jpg"), []byte("jpg"), 0644))
	seedVerification(t, db, 4, models.VerificationPending, "4-pending.jpg", nil)

	w := NewCleanupWorker(db, log.New(io.Discard, "", 0), dir, 7)
	deleted, err := w.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	assert.NoFileExists(t, filepath.Join(dir, "1-old.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "2-old.jpg"))
	assert.FileExists(t, filepath.Join(dir, "3-new.jpg"))
	assert.FileExists(t, filepath.Join(dir, "4-pending.jpg"))

	// The swept rows keep their decision but lose the file path.
	var v models.IDVerification
	require.NoError(t, db.Where("team_ref = ?", 1).First(&v).Error)
	assert.Equal(t, models.VerificationVerified, v.Status)
	assert.Empty(t, v.IDCardPath)

	v = models.IDVerification{}
	require.NoError(t, db.Where("team_ref = ?", 3).First(&v).Error)
	assert.Equal(t, "3-new.jpg", v.IDCardPath)
}

func TestRunOnceMissingFileStillClearsPath(t *testing.T) {
	db := newWorkerTestDB(t)
	dir := t.TempDir()

	old := time.Now().AddDate(0, 0, -30)
	seedVerification(t, db, 1, models.VerificationVerified, "1-gone.jpg", &old)

	w := NewCleanupWorker(db, log.New(io.Discard, "", 0), dir, 7)
	deleted, err := w.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	var v models.IDVerification
	require.NoError(t, db.Where("team_ref = ?", 1).First(&v).Error)
	assert.Empty(t, v.IDCardPath)
}

func TestRunOnceIsIdempotent(t *testing.T) {
	db := newWorkerTestDB(t)
	dir := t.TempDir()

	old := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-old.jpg"), []byte("jpg"), 0644))
	seedVerification(t, db, 1, models.VerificationVerified, "1-old.jpg", &old)

	w := NewCleanupWorker(db, log.New(io.Discard, "", 0), dir, 7)
	deleted, err := w.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	// A second sweep finds nothing: the path was cleared.
	deleted, err = w.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
