package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/mediahost"
)

// CleanupProcessor destroys orphaned media assets at the media host. Jobs of
// this type are enqueued when an inline destroy fails during deletion, so the
// asset is not left behind forever.
type CleanupProcessor struct {
	jobService jobs.Service
	mediaHost  mediahost.Service
}

// NewCleanupProcessor creates a new media cleanup processor
func NewCleanupProcessor(jobService jobs.Service, mediaHost mediahost.Service) *CleanupProcessor {
	return &CleanupProcessor{
		jobService: jobService,
		mediaHost:  mediaHost,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *CleanupProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeMediaCleanup
}

// ProcessJob destroys the asset named in the job payload
func (p *CleanupProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	assetID, ok := job.GetPayloadString("asset_id")
	if !ok || assetID == "" {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload is missing a valid asset_id", "", nil)
	}

	if err := p.mediaHost.Destroy(ctx, assetID); err != nil {
		return models.NewSystemError("DESTROY_FAILED", fmt.Sprintf("destroying asset %s failed", assetID), err.Error(), err)
	}

	log.Printf("[DEBUG] Destroyed orphaned asset %s", assetID)

	return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{"asset_id": assetID})
}
