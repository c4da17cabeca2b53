package analyses

import (
	"context"

	"github.com/speakwise/speech-api/internal/models"
)

// AnalysisService defines the interface for analysis result operations
type AnalysisService interface {
	// GetByVideoID retrieves the analysis result for a video, nil when absent
	GetByVideoID(ctx context.Context, videoID uint) (*models.AnalysisResult, error)

	// GetByIDForOwner retrieves a result by ID, ErrAnalysisNotFound when absent,
	// ErrNotOwner when it belongs to someone else
	GetByIDForOwner(ctx context.Context, id uint, ownerID string) (*models.AnalysisResult, error)

	// ListByOwner returns all of a user's analysis results, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]models.AnalysisResult, error)

	// Delete removes an analysis result
	Delete(ctx context.Context, id uint) error

	// DeleteWithVideo removes the result and its video record atomically,
	// so no analyzed video survives without its result row
	DeleteWithVideo(ctx context.Context, id, videoID uint) error
}

// Repository defines the interface for analysis result persistence
type Repository interface {
	GetByID(ctx context.Context, id uint) (*models.AnalysisResult, error)
	GetByVideoID(ctx context.Context, videoID uint) (*models.AnalysisResult, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.AnalysisResult, error)
	Delete(ctx context.Context, id uint) error
	DeleteWithVideo(ctx context.Context, id, videoID uint) error
}
