package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoStatus represents the lifecycle state of an uploaded video
type VideoStatus string

const (
	VideoStatusUploading  VideoStatus = "uploading"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusProcessed  VideoStatus = "processed"
	VideoStatusAnalyzing  VideoStatus = "analyzing"
	VideoStatusAnalyzed   VideoStatus = "analyzed"
	VideoStatusFailed     VideoStatus = "failed"
)

// videoTransitions is the allowed-transition table. The happy path is
// uploading → processing → processed → analyzing → analyzed; failed is
// reachable from every non-terminal state. Terminal states have no entries.
var videoTransitions = map[VideoStatus][]VideoStatus{
	VideoStatusUploading:  {VideoStatusProcessing, VideoStatusFailed},
	VideoStatusProcessing: {VideoStatusProcessed, VideoStatusFailed},
	VideoStatusProcessed:  {VideoStatusAnalyzing, VideoStatusFailed},
	VideoStatusAnalyzing:  {VideoStatusAnalyzed, VideoStatusFailed},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s VideoStatus) CanTransition(next VideoStatus) bool {
	for _, allowed := range videoTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transition leaves this status
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusAnalyzed || s == VideoStatusFailed
}

// Valid returns true if s is one of the known statuses
func (s VideoStatus) Valid() bool {
	switch s {
	case VideoStatusUploading, VideoStatusProcessing, VideoStatusProcessed,
		VideoStatusAnalyzing, VideoStatusAnalyzed, VideoStatusFailed:
		return true
	}
	return false
}

// Video represents one uploaded video and its pipeline lifecycle
type Video struct {
	gorm.Model
	UUID        string `json:"uuid" gorm:"uniqueIndex"`
	OwnerID     string `json:"owner_id" gorm:"not null;index"`
	DisplayName string `json:"display_name"`

	// Upload metadata
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size" gorm:"default:0"`

	// External media host linkage
	AssetID     string `json:"asset_id" gorm:"index"`
	PlaybackURL string `json:"playback_url"`

	// Lifecycle
	Status      VideoStatus `json:"status" gorm:"not null;default:uploading;index"`
	ProcessedAt *time.Time  `json:"processed_at"`
	AnalyzedAt  *time.Time  `json:"analyzed_at"`
	Error       string      `json:"error,omitempty"`

	// Result linkage, set when status reaches analyzed
	AnalysisID *uint           `json:"analysis_id"`
	Analysis   *AnalysisResult `json:"analysis,omitempty" gorm:"foreignKey:AnalysisID"`
}

// BeforeCreate generates a UUID before creating a new video record
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == "" {
		v.UUID = uuid.New().String()
	}
	if v.Status == "" {
		v.Status = VideoStatusUploading
	}
	// Placeholder until the media host hands back a real asset id
	if v.AssetID == "" {
		v.AssetID = "pending-" + v.UUID
	}
	return nil
}

// TableName returns the table name for the Video model
func (Video) TableName() string {
	return "videos"
}
