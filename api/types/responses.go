package types

import (
	"time"

	"github.com/speakwise/speech-api/internal/models"
)

// UploadResponse is returned by the upload endpoint on successful handoff
type UploadResponse struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

// GrammarIssueResponse is one grammar finding in an analysis payload
type GrammarIssueResponse struct {
	Message     string   `json:"message"`
	Snippet     string   `json:"snippet"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AnalysisResponse is the client-facing view of an analysis result
type AnalysisResponse struct {
	ID              uint                   `json:"id"`
	VideoID         string                 `json:"video_id"`
	Transcript      string                 `json:"transcript"`
	OverallScore    int                    `json:"overall_score"`
	GrammarScore    int                    `json:"grammar_score"`
	GrammarIssues   []GrammarIssueResponse `json:"grammar_issues"`
	FillerWords     []string               `json:"filler_words"`
	SpeakingRate    float64                `json:"speaking_rate"`
	Sentiment       string                 `json:"sentiment"`
	FluencyFeedback string                 `json:"fluency_feedback"`
	Improvements    []string               `json:"improvements"`
	CreatedAt       time.Time              `json:"created_at"`
}

// StatusResponse is returned by the status polling endpoint
type StatusResponse struct {
	VideoID     string            `json:"video_id"`
	DisplayName string            `json:"display_name"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
	AnalyzedAt  *time.Time        `json:"analyzed_at,omitempty"`
	Analysis    *AnalysisResponse `json:"analysis,omitempty"`
}

// ErrorResponse is the generic error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToAnalysisResponse converts an analysis model to its response form
func ToAnalysisResponse(result *models.AnalysisResult, videoUUID string) *AnalysisResponse {
	if result == nil {
		return nil
	}

	issues := make([]GrammarIssueResponse, 0, len(result.GrammarIssues))
	for _, issue := range result.GrammarIssues {
		issues = append(issues, GrammarIssueResponse{
			Message:     issue.Message,
			Snippet:     issue.Snippet,
			Suggestions: issue.Suggestions,
		})
	}

	return &AnalysisResponse{
		ID:              result.ID,
		VideoID:         videoUUID,
		Transcript:      result.Transcript,
		OverallScore:    result.OverallScore,
		GrammarScore:    result.GrammarScore,
		GrammarIssues:   issues,
		FillerWords:     result.FillerWords,
		SpeakingRate:    result.SpeakingRate,
		Sentiment:       result.Sentiment,
		FluencyFeedback: result.FluencyFeedback,
		Improvements:    result.Improvements,
		CreatedAt:       result.CreatedAt,
	}
}

// ToStatusResponse converts a video model to its status response form
func ToStatusResponse(video *models.Video) *StatusResponse {
	resp := &StatusResponse{
		VideoID:     video.UUID,
		DisplayName: video.DisplayName,
		Status:      string(video.Status),
		ProcessedAt: video.ProcessedAt,
		AnalyzedAt:  video.AnalyzedAt,
	}
	if video.Status == models.VideoStatusFailed {
		resp.Error = video.Error
	}
	if video.Status == models.VideoStatusAnalyzed && video.Analysis != nil {
		resp.Analysis = ToAnalysisResponse(video.Analysis, video.UUID)
	}
	return resp
}
