package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/internal/models"
	analysesService "github.com/speakwise/speech-api/internal/services/analyses"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/mediahost"
	"github.com/speakwise/speech-api/internal/services/videos"
)

// destroyRecorder fakes the media host and records destroy calls
type destroyRecorder struct {
	destroyErr error
	destroyed  []string
}

func (f *destroyRecorder) Upload(ctx context.Context, publicID, filename string, payload io.Reader) (*mediahost.UploadResult, error) {
	return nil, errors.New("not implemented")
}

func (f *destroyRecorder) Destroy(ctx context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return f.destroyErr
}

func (f *destroyRecorder) VerifyNotification(body []byte, timestamp, signature string) error {
	return nil
}

type fixture struct {
	router       *gin.Engine
	db           *gorm.DB
	videoService videos.VideoService
	jobService   jobs.Service
	host         *destroyRecorder
}

func setup(t *testing.T, asUser string) *fixture {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Video{}, &models.AnalysisResult{}, &models.Job{}))

	host := &destroyRecorder{}
	videoService := videos.NewService(videos.NewRepository(db), nil)
	jobService := jobs.NewService(jobs.NewRepository(db))

	deps := &types.Dependencies{
		VideoService:    videoService,
		AnalysisService: analysesService.NewService(analysesService.NewRepository(db)),
		JobService:      jobService,
		MediaHost:       host,
	}

	router := gin.New()
	group := router.Group("/api/v1/analyses")
	group.Use(func(c *gin.Context) {
		c.Set("user_id", asUser)
		c.Next()
	})
	RegisterRoutes(group, deps)

	return &fixture{router: router, db: db, videoService: videoService, jobService: jobService, host: host}
}

// analyzedVideo creates a video that has completed the whole pipeline
func analyzedVideo(t *testing.T, f *fixture, owner, transcript string) (*models.Video, *models.AnalysisResult) {
	ctx := context.Background()

	video := &models.Video{OwnerID: owner}
	require.NoError(t, f.videoService.Create(ctx, video))
	require.NoError(t, f.videoService.MarkProcessing(ctx, video, "speakwise/"+video.UUID))
	require.NoError(t, f.videoService.MarkProcessed(ctx, video, "https://host/"+video.UUID+".mp4"))
	require.NoError(t, f.videoService.MarkAnalyzing(ctx, video))

	result := &models.AnalysisResult{
		VideoID:      video.ID,
		OwnerID:      owner,
		Transcript:   transcript,
		OverallScore: 80,
		Improvements: models.StringList{},
		FillerWords:  models.StringList{},
	}
	require.NoError(t, f.videoService.CompleteAnalysis(ctx, video, result))
	return video, result
}

func TestList_NewestFirst(t *testing.T) {
	f := setup(t, "user-1")

	_, first := analyzedVideo(t, f, "user-1", "first talk")
	_, second := analyzedVideo(t, f, "user-1", "second talk")

	// Force distinct creation order
	require.NoError(t, f.db.Model(first).Update("created_at", "2026-01-01 10:00:00").Error)
	require.NoError(t, f.db.Model(second).Update("created_at", "2026-01-02 10:00:00").Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var payload []types.AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload, 2)
	assert.Equal(t, "second talk", payload[0].Transcript)
	assert.Equal(t, "first talk", payload[1].Transcript)
}

func TestList_OnlyOwn(t *testing.T) {
	f := setup(t, "user-1")

	analyzedVideo(t, f, "user-1", "mine")
	analyzedVideo(t, f, "user-2", "theirs")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var payload []types.AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "mine", payload[0].Transcript)
}

func TestList_Empty(t *testing.T) {
	f := setup(t, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func deleteAnalysis(f *fixture, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/analyses/"+id, nil)
	f.router.ServeHTTP(w, req)
	return w
}

func TestDelete_Success(t *testing.T) {
	f := setup(t, "user-1")
	video, result := analyzedVideo(t, f, "user-1", "talk")

	w := deleteAnalysis(f, itoa(result.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	// Result, video, and hosted asset are all gone
	var count int64
	require.NoError(t, f.db.Model(&models.AnalysisResult{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.Video{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, []string{video.AssetID}, f.host.destroyed)
}

func TestDelete_NonOwner(t *testing.T) {
	f := setup(t, "user-1")
	_, result := analyzedVideo(t, f, "user-2", "their talk")

	w := deleteAnalysis(f, itoa(result.ID))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, f.db.Model(&models.AnalysisResult{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Empty(t, f.host.destroyed)
}

func TestDelete_NotFound(t *testing.T) {
	f := setup(t, "user-1")

	w := deleteAnalysis(f, "9999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete_InvalidID(t *testing.T) {
	f := setup(t, "user-1")

	w := deleteAnalysis(f, "not-a-number")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete_DestroyFailureStillDeletes(t *testing.T) {
	f := setup(t, "user-1")
	f.host.destroyErr = errors.New("host down")

	video, result := analyzedVideo(t, f, "user-1", "talk")

	w := deleteAnalysis(f, itoa(result.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, f.db.Model(&models.AnalysisResult{}).Count(&count).Error)
	assert.Zero(t, count)

	// A cleanup job now owns the orphaned asset
	var job models.Job
	require.NoError(t, f.db.Where("type = ?", models.JobTypeMediaCleanup).First(&job).Error)
	assetID, ok := job.GetPayloadString("asset_id")
	require.True(t, ok)
	assert.Equal(t, video.AssetID, assetID)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
