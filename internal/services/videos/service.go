package videos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/speakwise/speech-api/internal/metrics"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/events"
)

// ErrInvalidTransition is returned when a status change violates the
// lifecycle transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

type service struct {
	repo      Repository
	publisher events.Publisher
}

// NewService creates a new video service
func NewService(repo Repository, publisher events.Publisher) VideoService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &service{repo: repo, publisher: publisher}
}

func (s *service) Create(ctx context.Context, video *models.Video) error {
	if video == nil {
		return errors.New("video cannot be nil")
	}
	if video.OwnerID == "" {
		return errors.New("video owner is required")
	}

	video.Status = models.VideoStatusUploading
	if err := s.repo.Create(ctx, video); err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByUUID(ctx context.Context, uuid string) (*models.Video, error) {
	return s.repo.GetByUUID(ctx, uuid)
}

func (s *service) GetByAssetID(ctx context.Context, assetID string) (*models.Video, error) {
	return s.repo.GetByAssetID(ctx, assetID)
}

func (s *service) GetForOwner(ctx context.Context, uuid, ownerID string) (*models.Video, error) {
	video, err := s.repo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	// A foreign record looks identical to a missing one from the outside
	if video.OwnerID != ownerID {
		return nil, ErrVideoNotFound
	}
	return video, nil
}

func (s *service) MarkProcessing(ctx context.Context, video *models.Video, assetID string) error {
	return s.transition(ctx, video, models.VideoStatusProcessing, func(v *models.Video) {
		v.AssetID = assetID
	})
}

func (s *service) MarkProcessed(ctx context.Context, video *models.Video, playbackURL string) error {
	return s.transition(ctx, video, models.VideoStatusProcessed, func(v *models.Video) {
		now := time.Now().UTC()
		v.PlaybackURL = playbackURL
		v.ProcessedAt = &now
	})
}

func (s *service) MarkAnalyzing(ctx context.Context, video *models.Video) error {
	return s.transition(ctx, video, models.VideoStatusAnalyzing, nil)
}

func (s *service) CompleteAnalysis(ctx context.Context, video *models.Video, result *models.AnalysisResult) error {
	if video == nil || result == nil {
		return errors.New("video and result cannot be nil")
	}

	from := video.Status
	if !from.CanTransition(models.VideoStatusAnalyzed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.VideoStatusAnalyzed)
	}

	result.VideoID = video.ID
	result.OwnerID = video.OwnerID

	if err := s.repo.CompleteAnalysis(ctx, video, result); err != nil {
		return err
	}

	s.recordTransition(ctx, video, from, models.VideoStatusAnalyzed)
	return nil
}

func (s *service) MarkFailed(ctx context.Context, video *models.Video, message string) error {
	return s.transition(ctx, video, models.VideoStatusFailed, func(v *models.Video) {
		v.Error = message
	})
}

// transition validates the status change against the transition table,
// applies the mutation and persists the record.
func (s *service) transition(ctx context.Context, video *models.Video, next models.VideoStatus, mutate func(*models.Video)) error {
	if video == nil {
		return errors.New("video cannot be nil")
	}

	from := video.Status
	if !from.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}

	video.Status = next
	if mutate != nil {
		mutate(video)
	}

	if err := s.repo.Update(ctx, video); err != nil {
		video.Status = from
		return fmt.Errorf("updating video status: %w", err)
	}

	s.recordTransition(ctx, video, from, next)
	return nil
}

func (s *service) recordTransition(ctx context.Context, video *models.Video, from, to models.VideoStatus) {
	metrics.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()

	if err := s.publisher.PublishStatusChange(ctx, video.UUID, from, to); err != nil {
		log.Printf("[ERROR] Publishing status change for video %s: %v", video.UUID, err)
	}
}
