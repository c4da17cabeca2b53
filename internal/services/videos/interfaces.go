package videos

import (
	"context"

	"github.com/speakwise/speech-api/internal/models"
)

// VideoService defines the business logic interface for video lifecycle operations.
// All status changes go through the transition table; an illegal transition
// returns ErrInvalidTransition and writes nothing.
type VideoService interface {
	// Create persists a new video record with status uploading
	Create(ctx context.Context, video *models.Video) error

	// Lookups
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Video, error)
	GetByAssetID(ctx context.Context, assetID string) (*models.Video, error)
	// GetForOwner returns ErrVideoNotFound when the record exists but
	// belongs to a different user, so ownership is never leaked.
	GetForOwner(ctx context.Context, uuid, ownerID string) (*models.Video, error)

	// Lifecycle transitions
	MarkProcessing(ctx context.Context, video *models.Video, assetID string) error
	MarkProcessed(ctx context.Context, video *models.Video, playbackURL string) error
	MarkAnalyzing(ctx context.Context, video *models.Video) error
	// CompleteAnalysis creates the analysis result and advances the video to
	// analyzed in a single transaction, so no partial state is observable.
	CompleteAnalysis(ctx context.Context, video *models.Video, result *models.AnalysisResult) error
	MarkFailed(ctx context.Context, video *models.Video, message string) error
}

// Repository defines the interface for video persistence
type Repository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Video, error)
	GetByAssetID(ctx context.Context, assetID string) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	// CompleteAnalysis atomically creates the result row and updates the video
	CompleteAnalysis(ctx context.Context, video *models.Video, result *models.AnalysisResult) error
}
