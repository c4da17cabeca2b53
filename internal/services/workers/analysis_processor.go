package workers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/speakwise/speech-api/internal/metrics"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/language"
	"github.com/speakwise/speech-api/internal/services/transcribe"
	"github.com/speakwise/speech-api/internal/services/videos"
)

// AnalysisProcessor processes video analysis jobs: transcription followed by
// concurrent grammar and holistic speech analysis, then one atomic result write.
type AnalysisProcessor struct {
	jobService   jobs.Service
	videoService videos.VideoService
	transcriber  transcribe.Transcriber
	analyzer     language.Analyzer
}

// NewAnalysisProcessor creates a new analysis processor
func NewAnalysisProcessor(
	jobService jobs.Service,
	videoService videos.VideoService,
	transcriber transcribe.Transcriber,
	analyzer language.Analyzer,
) *AnalysisProcessor {
	return &AnalysisProcessor{
		jobService:   jobService,
		videoService: videoService,
		transcriber:  transcriber,
		analyzer:     analyzer,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *AnalysisProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeVideoAnalysis
}

// ProcessJob processes a video analysis job
func (p *AnalysisProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	log.Printf("[DEBUG] Processing video analysis job %d", job.ID)

	started := time.Now()

	videoID, ok := job.GetPayloadUint("video_id")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload is missing a valid video_id", "", nil)
	}

	video, err := p.videoService.GetByID(ctx, videoID)
	if err != nil {
		return models.NewNotFoundError("VIDEO_NOT_FOUND", fmt.Sprintf("video %d not found", videoID), err.Error(), err)
	}

	if err := p.jobService.UpdateProgress(ctx, job.ID, 5); err != nil {
		log.Printf("Failed to update job progress: %v", err)
	}

	if err := p.videoService.MarkAnalyzing(ctx, video); err != nil {
		return models.NewSystemError("INVALID_STATE", fmt.Sprintf("video %d cannot enter analysis", videoID), err.Error(), err)
	}

	result, procErr := p.analyze(ctx, job, video)
	if procErr != nil {
		p.failVideo(ctx, video, procErr)
		return procErr
	}

	if err := p.videoService.CompleteAnalysis(ctx, video, result); err != nil {
		persistErr := models.NewSystemError("PERSIST_FAILED", fmt.Sprintf("storing analysis for video %d failed", videoID), err.Error(), err)
		p.failVideo(ctx, video, persistErr)
		return persistErr
	}

	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())

	jobResult := models.JobResult{
		"video_id":          videoID,
		"overall_score":     result.OverallScore,
		"grammar_score":     result.GrammarScore,
		"transcript_length": len(result.Transcript),
	}
	if err := p.jobService.CompleteJob(ctx, job.ID, jobResult); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("[DEBUG] Video %d analyzed (overall score %d)", videoID, result.OverallScore)
	return nil
}

// analyze runs the transcription and the two concurrent language analyses
func (p *AnalysisProcessor) analyze(ctx context.Context, job *models.Job, video *models.Video) (*models.AnalysisResult, error) {
	if video.PlaybackURL == "" {
		return nil, models.NewSystemError("NO_PLAYBACK_URL", fmt.Sprintf("video %d has no playback URL", video.ID), "", nil)
	}

	transcript, err := p.transcriber.TranscribeURL(ctx, video.PlaybackURL)
	if err != nil {
		return nil, models.NewTranscriptionError("TRANSCRIBE_FAILED", fmt.Sprintf("transcribing video %d failed", video.ID), err.Error(), err)
	}

	if err := p.jobService.UpdateProgress(ctx, job.ID, 50); err != nil {
		log.Printf("Failed to update job progress: %v", err)
	}

	// Grammar and holistic analysis run concurrently against the transcript
	var (
		wg         sync.WaitGroup
		grammar    *language.GrammarResult
		grammarErr error
		speech     *language.SpeechResult
		speechErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		grammar, grammarErr = p.analyzer.GrammarCheck(ctx, transcript)
	}()
	go func() {
		defer wg.Done()
		speech, speechErr = p.analyzer.AnalyzeSpeech(ctx, transcript)
	}()
	wg.Wait()

	// Grammar failures degrade to neutral defaults; only transport-level
	// errors reach this branch and they are treated the same way.
	if grammarErr != nil {
		log.Printf("[DEBUG] Grammar check failed for video %d, substituting defaults: %v", video.ID, grammarErr)
		grammar = &language.GrammarResult{Score: 80, Issues: models.GrammarIssueList{}}
	}

	// The holistic analysis is the backbone of the result and fails hard
	if speechErr != nil {
		return nil, models.NewAnalysisError("SPEECH_ANALYSIS_FAILED", fmt.Sprintf("analyzing video %d failed", video.ID), speechErr.Error(), speechErr)
	}

	if err := p.jobService.UpdateProgress(ctx, job.ID, 85); err != nil {
		log.Printf("Failed to update job progress: %v", err)
	}

	return &models.AnalysisResult{
		VideoID:         video.ID,
		OwnerID:         video.OwnerID,
		Transcript:      transcript,
		OverallScore:    speech.OverallScore,
		GrammarScore:    grammar.Score,
		GrammarIssues:   grammar.Issues,
		FillerWords:     models.StringList(speech.FillerWords),
		SpeakingRate:    speech.SpeakingRate,
		Sentiment:       speech.Sentiment,
		FluencyFeedback: speech.FluencyFeedback,
		Improvements:    models.StringList(speech.Improvements),
	}, nil
}

// failVideo marks the video failed with the error's message, best effort
func (p *AnalysisProcessor) failVideo(ctx context.Context, video *models.Video, procErr error) {
	message := procErr.Error()
	if structured, ok := procErr.(*models.StructuredJobError); ok {
		message = structured.Message
	}
	if err := p.videoService.MarkFailed(ctx, video, message); err != nil {
		log.Printf("[ERROR] Failed to mark video %d as failed: %v", video.ID, err)
	}
}
