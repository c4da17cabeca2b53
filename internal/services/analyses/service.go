package analyses

import (
	"context"

	"github.com/speakwise/speech-api/internal/models"
)

// Service implements the AnalysisService interface
type Service struct {
	repo Repository
}

// NewService creates a new analysis service
func NewService(repo Repository) AnalysisService {
	return &Service{repo: repo}
}

// GetByVideoID retrieves the analysis result for a video
func (s *Service) GetByVideoID(ctx context.Context, videoID uint) (*models.AnalysisResult, error) {
	return s.repo.GetByVideoID(ctx, videoID)
}

// GetByIDForOwner retrieves a result and enforces ownership
func (s *Service) GetByIDForOwner(ctx context.Context, id uint, ownerID string) (*models.AnalysisResult, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return result, nil
}

// ListByOwner returns all of a user's analysis results, newest first
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]models.AnalysisResult, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes an analysis result
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// DeleteWithVideo removes the result and its video record atomically
func (s *Service) DeleteWithVideo(ctx context.Context, id, videoID uint) error {
	return s.repo.DeleteWithVideo(ctx, id, videoID)
}
