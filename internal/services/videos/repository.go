package videos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/speakwise/speech-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrVideoNotFound = errors.New("video not found")
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new video repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create creates a new video record
func (r *repository) Create(ctx context.Context, video *models.Video) error {
	if video == nil {
		return errors.New("video cannot be nil")
	}
	return r.db.WithContext(ctx).Create(video).Error
}

// GetByID retrieves a video by its database ID
func (r *repository) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("getting video: %w", err)
	}
	return &video, nil
}

// GetByUUID retrieves a video by its public UUID
func (r *repository) GetByUUID(ctx context.Context, uuid string) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).Preload("Analysis").Where("uuid = ?", uuid).First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("getting video by uuid: %w", err)
	}
	return &video, nil
}

// GetByAssetID retrieves a video by its media host asset identifier
func (r *repository) GetByAssetID(ctx context.Context, assetID string) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("getting video by asset id: %w", err)
	}
	return &video, nil
}

// Update saves the full video record
func (r *repository) Update(ctx context.Context, video *models.Video) error {
	if video == nil {
		return errors.New("video cannot be nil")
	}
	return r.db.WithContext(ctx).Save(video).Error
}

// CompleteAnalysis creates the analysis result and updates the video record
// in one transaction. Either both rows land or neither does.
func (r *repository) CompleteAnalysis(ctx context.Context, video *models.Video, result *models.AnalysisResult) error {
	if video == nil || result == nil {
		return errors.New("video and result cannot be nil")
	}

	// The caller's struct is only touched once the transaction commits, so
	// a rollback leaves it in step with the persisted row and the recovery
	// transition to failed stays legal.
	var updated models.Video
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("creating analysis result: %w", err)
		}

		now := time.Now().UTC()
		updated = *video
		updated.Status = models.VideoStatusAnalyzed
		updated.AnalysisID = &result.ID
		updated.AnalyzedAt = &now
		updated.Error = ""

		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("updating video: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	*video = updated
	return nil
}
