package analyses

import (
	"context"
	"errors"
	"fmt"

	"github.com/speakwise/speech-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrNotOwner         = errors.New("analysis belongs to a different user")
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new analysis repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetByID retrieves an analysis result by ID
func (r *repository) GetByID(ctx context.Context, id uint) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := r.db.WithContext(ctx).First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return &result, nil
}

// GetByVideoID retrieves the analysis result for a video, nil when absent
func (r *repository) GetByVideoID(ctx context.Context, videoID uint) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := r.db.WithContext(ctx).Where("video_id = ?", videoID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting analysis by video id: %w", err)
	}
	return &result, nil
}

// ListByOwner returns all results for a user, newest first
func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]models.AnalysisResult, error) {
	var results []models.AnalysisResult
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return results, nil
}

// Delete removes an analysis result
func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.AnalysisResult{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

// DeleteWithVideo removes the result and its video record in one transaction.
// Either both rows go or neither does.
func (r *repository) DeleteWithVideo(ctx context.Context, id, videoID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.AnalysisResult{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting analysis: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAnalysisNotFound
		}

		if videoID != 0 {
			if err := tx.Delete(&models.Video{}, videoID).Error; err != nil {
				return fmt.Errorf("deleting video: %w", err)
			}
		}

		return nil
	})
}
