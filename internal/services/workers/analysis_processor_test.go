package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/language"
	"github.com/speakwise/speech-api/internal/services/videos"
)

// fakeTranscriber returns a fixed transcript or error
type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) TranscribeURL(ctx context.Context, mediaURL string) (string, error) {
	return f.transcript, f.err
}

// fakeAnalyzer returns fixed grammar and speech results
type fakeAnalyzer struct {
	grammar    *language.GrammarResult
	grammarErr error
	speech     *language.SpeechResult
	speechErr  error
}

func (f *fakeAnalyzer) GrammarCheck(ctx context.Context, transcript string) (*language.GrammarResult, error) {
	return f.grammar, f.grammarErr
}

func (f *fakeAnalyzer) AnalyzeSpeech(ctx context.Context, transcript string) (*language.SpeechResult, error) {
	return f.speech, f.speechErr
}

func setupPipeline(t *testing.T) (jobs.Service, videos.VideoService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.AutoMigrate(&models.Video{}, &models.AnalysisResult{}, &models.Job{}))

	return jobs.NewService(jobs.NewRepository(db)), videos.NewService(videos.NewRepository(db), nil), db
}

// processedVideo creates a video that has finished transcoding
func processedVideo(t *testing.T, svc videos.VideoService) *models.Video {
	ctx := context.Background()
	video := &models.Video{
		OwnerID:      "user-1",
		OriginalName: "talk.mp4",
		DisplayName:  "My Talk",
		ContentType:  "video/mp4",
	}
	require.NoError(t, svc.Create(ctx, video))
	require.NoError(t, svc.MarkProcessing(ctx, video, "asset-123"))
	require.NoError(t, svc.MarkProcessed(ctx, video, "https://host/talk.mp4"))
	return video
}

func claimedAnalysisJob(t *testing.T, jobService jobs.Service, videoID uint) *models.Job {
	ctx := context.Background()
	_, err := jobService.EnqueueJob(ctx, models.JobTypeVideoAnalysis, models.JobPayload{"video_id": videoID})
	require.NoError(t, err)

	job, err := jobService.ClaimNextJob(ctx, "test-worker", []models.JobType{models.JobTypeVideoAnalysis})
	require.NoError(t, err)
	return job
}

func happyAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		grammar: &language.GrammarResult{
			Score: 95,
			Issues: models.GrammarIssueList{
				{Message: "Run-on sentence", Snippet: "and and", Suggestions: []string{"split it"}},
			},
		},
		speech: &language.SpeechResult{
			OverallScore:    88,
			FillerWords:     []string{"um"},
			SpeakingRate:    142,
			Sentiment:       "confident",
			FluencyFeedback: "Good pacing.",
			Improvements:    []string{"slow down"},
		},
	}
}

func TestAnalysisProcessor_CanProcess(t *testing.T) {
	processor := &AnalysisProcessor{}

	assert.True(t, processor.CanProcess(models.JobTypeVideoAnalysis))
	assert.False(t, processor.CanProcess(models.JobTypeMediaCleanup))
	assert.False(t, processor.CanProcess("unknown_type"))
}

func TestAnalysisProcessor_HappyPath(t *testing.T) {
	jobService, videoService, db := setupPipeline(t)
	ctx := context.Background()

	video := processedVideo(t, videoService)
	job := claimedAnalysisJob(t, jobService, video.ID)

	processor := NewAnalysisProcessor(jobService, videoService,
		&fakeTranscriber{transcript: "Hello world"}, happyAnalyzer())

	require.NoError(t, processor.ProcessJob(ctx, job))

	updated, err := videoService.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusAnalyzed, updated.Status)
	require.NotNil(t, updated.AnalysisID)
	assert.NotNil(t, updated.AnalyzedAt)

	var result models.AnalysisResult
	require.NoError(t, db.First(&result, *updated.AnalysisID).Error)
	assert.Equal(t, video.ID, result.VideoID)
	assert.Equal(t, "user-1", result.OwnerID)
	assert.Equal(t, "Hello world", result.Transcript)
	assert.Equal(t, 88, result.OverallScore)
	assert.Equal(t, 95, result.GrammarScore)
	assert.Equal(t, models.StringList{"um"}, result.FillerWords)
	assert.Equal(t, models.StringList{"slow down"}, result.Improvements)

	status, err := jobService.GetJobStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, status)
}

func TestAnalysisProcessor_TranscriptionFailureFailsVideo(t *testing.T) {
	jobService, videoService, db := setupPipeline(t)
	ctx := context.Background()

	video := processedVideo(t, videoService)
	job := claimedAnalysisJob(t, jobService, video.ID)

	processor := NewAnalysisProcessor(jobService, videoService,
		&fakeTranscriber{err: errors.New("stt unavailable")}, happyAnalyzer())

	err := processor.ProcessJob(ctx, job)
	require.Error(t, err)

	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypeTranscription, structured.Type)

	updated, getErr := videoService.GetByID(ctx, video.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.VideoStatusFailed, updated.Status)
	assert.NotEmpty(t, updated.Error)

	// No partial result row
	var count int64
	require.NoError(t, db.Model(&models.AnalysisResult{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalysisProcessor_SpeechAnalysisFailureFailsVideo(t *testing.T) {
	jobService, videoService, db := setupPipeline(t)
	ctx := context.Background()

	video := processedVideo(t, videoService)
	job := claimedAnalysisJob(t, jobService, video.ID)

	analyzer := happyAnalyzer()
	analyzer.speech = nil
	analyzer.speechErr = errors.New("no overall score")

	processor := NewAnalysisProcessor(jobService, videoService,
		&fakeTranscriber{transcript: "Hello"}, analyzer)

	err := processor.ProcessJob(ctx, job)
	require.Error(t, err)

	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypeAnalysis, structured.Type)

	updated, getErr := videoService.GetByID(ctx, video.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.VideoStatusFailed, updated.Status)

	var count int64
	require.NoError(t, db.Model(&models.AnalysisResult{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalysisProcessor_GrammarFailureDegrades(t *testing.T) {
	jobService, videoService, db := setupPipeline(t)
	ctx := context.Background()

	video := processedVideo(t, videoService)
	job := claimedAnalysisJob(t, jobService, video.ID)

	analyzer := happyAnalyzer()
	analyzer.grammar = nil
	analyzer.grammarErr = errors.New("grammar model unreachable")

	processor := NewAnalysisProcessor(jobService, videoService,
		&fakeTranscriber{transcript: "Hello"}, analyzer)

	require.NoError(t, processor.ProcessJob(ctx, job))

	updated, err := videoService.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusAnalyzed, updated.Status)

	var result models.AnalysisResult
	require.NoError(t, db.First(&result, *updated.AnalysisID).Error)
	assert.Equal(t, 80, result.GrammarScore)
	assert.Empty(t, result.GrammarIssues)
}

func TestAnalysisProcessor_MissingVideo(t *testing.T) {
	jobService, videoService, _ := setupPipeline(t)
	ctx := context.Background()

	job := claimedAnalysisJob(t, jobService, 9999)

	processor := NewAnalysisProcessor(jobService, videoService,
		&fakeTranscriber{transcript: "Hello"}, happyAnalyzer())

	err := processor.ProcessJob(ctx, job)
	require.Error(t, err)

	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypeNotFound, structured.Type)
}
