package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/jobs"
)

func setupJobService(t *testing.T) (jobs.Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}))
	return jobs.NewService(jobs.NewRepository(db)), db
}

func TestSweepRemovesOldFinishedJobs(t *testing.T) {
	jobService, db := setupJobService(t)
	ctx := context.Background()

	old, err := jobService.EnqueueJob(ctx, models.JobTypeVideoAnalysis, models.JobPayload{"video_id": 1})
	require.NoError(t, err)
	claimed, err := jobService.ClaimNextJob(ctx, "w1", []models.JobType{models.JobTypeVideoAnalysis})
	require.NoError(t, err)
	require.Equal(t, old.ID, claimed.ID)
	require.NoError(t, jobService.CompleteJob(ctx, claimed.ID, nil))

	// Age the completed job past the retention window
	require.NoError(t, db.Model(&models.Job{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -10)).Error)

	// A fresh pending job must survive the sweep
	fresh, err := jobService.EnqueueJob(ctx, models.JobTypeVideoAnalysis, models.JobPayload{"video_id": 2})
	require.NoError(t, err)

	svc := NewService(jobService, 7, time.Hour)
	svc.sweep(ctx)

	var ids []uint
	require.NoError(t, db.Model(&models.Job{}).Pluck("id", &ids).Error)
	assert.Equal(t, []uint{fresh.ID}, ids)
}

func TestStartAndStop(t *testing.T) {
	jobService, _ := setupJobService(t)

	svc := NewService(jobService, 7, time.Hour)
	svc.Start(context.Background())
	svc.Stop()
}
