package pipeline_test

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apiauth "github.com/speakwise/speech-api/api/auth"
	"github.com/speakwise/speech-api/api/status"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/api/upload"
	"github.com/speakwise/speech-api/api/webhooks"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/analyses"
	"github.com/speakwise/speech-api/internal/services/auth"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/language"
	"github.com/speakwise/speech-api/internal/services/mediahost"
	"github.com/speakwise/speech-api/internal/services/transcribe"
	"github.com/speakwise/speech-api/internal/services/videos"
	"github.com/speakwise/speech-api/internal/services/workers"
)

const (
	jwtSecret     = "integration-secret"
	webhookSecret = "integration-webhook-secret"
)

// PipelineSuite wires the real services against fake external endpoints
// and drives a video through the whole lifecycle over HTTP.
type PipelineSuite struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	token  string

	jobService   jobs.Service
	videoService videos.VideoService
	processor    *workers.AnalysisProcessor

	mediaServer *httptest.Server
	fileServer  *httptest.Server
	aiServer    *httptest.Server
}

func setupPipelineSuite(t *testing.T) *PipelineSuite {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Video{}, &models.AnalysisResult{}, &models.Job{}))

	// Fake media file host serving the transcoded asset
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		fmt.Fprint(w, "fake mp4 bytes")
	}))

	// Fake Cloudinary-style upload API. It echoes the public id back so
	// the webhook can later reference the same asset.
	mediaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/video/upload"):
			require.NoError(t, r.ParseMultipartForm(32<<20))
			publicID := r.FormValue("public_id")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"public_id":%q,"asset_id":"asset-1","secure_url":"%s/original.mp4","bytes":14}`, publicID, fileServer.URL)
		case strings.HasSuffix(r.URL.Path, "/video/destroy"):
			fmt.Fprint(w, `{"result":"ok"}`)
		default:
			http.NotFound(w, r)
		}
	}))

	// Fake OpenAI-style API for both transcription and chat completions
	aiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/audio/transcriptions":
			fmt.Fprint(w, `{"text":"um hello everyone thank you for coming"}`)
		case "/chat/completions":
			body, _ := io.ReadAll(r.Body)
			var content string
			if strings.Contains(string(body), "grammar checker") {
				content = `{"score": 92, "issues": []}`
			} else {
				content = `{"overallScore": 85, "fillerWords": ["um"], "speakingRate": 130, "sentiment": "positive", "fluencyFeedback": "Clear delivery", "areasForImprovement": ["Cut filler words"]}`
			}
			fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
		default:
			http.NotFound(w, r)
		}
	}))

	mediaClient := mediahost.NewClient(mediahost.Config{
		CloudName:     "demo",
		APIKey:        "key",
		APISecret:     webhookSecret,
		BaseURL:       mediaServer.URL,
		WebhookMaxAge: 2 * time.Hour,
	})

	videoService := videos.NewService(videos.NewRepository(db), nil)
	jobService := jobs.NewService(jobs.NewRepository(db))
	analysisService := analyses.NewService(analyses.NewRepository(db))

	processor := workers.NewAnalysisProcessor(
		jobService,
		videoService,
		transcribe.NewClient(transcribe.Config{BaseURL: aiServer.URL, APIKey: "ai-key"}),
		language.NewClient(language.Config{BaseURL: aiServer.URL, APIKey: "ai-key"}),
	)

	deps := &types.Dependencies{
		VideoService:    videoService,
		AnalysisService: analysisService,
		JobService:      jobService,
		MediaHost:       mediaClient,
		AuthService:     auth.NewService(jwtSecret),
	}

	authHandler := apiauth.NewHandler(deps.AuthService)

	router := gin.New()
	uploadGroup := router.Group("/api/v1/upload")
	uploadGroup.Use(authHandler.Middleware())
	upload.RegisterRoutes(uploadGroup, deps)

	webhookGroup := router.Group("/api/v1/webhooks")
	webhooks.RegisterRoutes(webhookGroup, deps)

	statusGroup := router.Group("/api/v1/status")
	statusGroup.Use(authHandler.Middleware())
	status.RegisterRoutes(statusGroup, deps)

	suite := &PipelineSuite{
		t:            t,
		router:       router,
		db:           db,
		token:        mintToken(t, "speaker-1"),
		jobService:   jobService,
		videoService: videoService,
		processor:    processor,
		mediaServer:  mediaServer,
		fileServer:   fileServer,
		aiServer:     aiServer,
	}
	t.Cleanup(func() {
		mediaServer.Close()
		fileServer.Close()
		aiServer.Close()
	})
	return suite
}

func mintToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

// uploadVideo posts a small multipart upload and returns the video's public id
func (s *PipelineSuite) uploadVideo() string {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", "talk.mp4")
	require.NoError(s.t, err)
	_, err = part.Write([]byte("fake upload bytes"))
	require.NoError(s.t, err)
	require.NoError(s.t, writer.WriteField("video_name", "Team standup"))
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(s.t, http.StatusAccepted, w.Code, w.Body.String())

	var resp types.UploadResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(s.t, "processing", resp.Status)
	return resp.VideoID
}

// sendWebhook delivers a signed transcode notification for the video
func (s *PipelineSuite) sendWebhook(videoUUID string) {
	payload := fmt.Sprintf(`{"notification_type":"eager","public_id":"speakwise/%s.mp4","secure_url":"%s/original.mp4","eager":[{"secure_url":"%s/transcoded.mp4"}]}`,
		videoUUID, s.fileServer.URL, s.fileServer.URL)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	sum := sha1.Sum([]byte(payload + timestamp + webhookSecret))
	signature := hex.EncodeToString(sum[:])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/cloudinary", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cld-Timestamp", timestamp)
	req.Header.Set("X-Cld-Signature", signature)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
}

// runWorker claims the pending analysis job and processes it inline
func (s *PipelineSuite) runWorker() {
	ctx := context.Background()
	job, err := s.jobService.ClaimNextJob(ctx, "integration-worker", []models.JobType{models.JobTypeVideoAnalysis})
	require.NoError(s.t, err)
	require.NoError(s.t, s.processor.ProcessJob(ctx, job))
}

// pollStatus fetches the status endpoint for the video
func (s *PipelineSuite) pollStatus(videoUUID string) (int, types.StatusResponse) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/"+videoUUID, nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp types.StatusResponse
	if w.Code == http.StatusOK {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestFullPipeline(t *testing.T) {
	s := setupPipelineSuite(t)

	videoID := s.uploadVideo()

	// Immediately after upload the client sees processing
	code, st := s.pollStatus(videoID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processing", st.Status)
	assert.Nil(t, st.Analysis)

	s.sendWebhook(videoID)

	code, st = s.pollStatus(videoID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processed", st.Status)

	s.runWorker()

	code, st = s.pollStatus(videoID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "analyzed", st.Status)
	require.NotNil(t, st.Analysis)
	assert.Equal(t, 85, st.Analysis.OverallScore)
	assert.Equal(t, 92, st.Analysis.GrammarScore)
	assert.Equal(t, []string{"um"}, st.Analysis.FillerWords)
	assert.Contains(t, st.Analysis.Transcript, "hello everyone")
	assert.NotNil(t, st.AnalyzedAt)
}

func TestPipeline_TamperedWebhookIsRejected(t *testing.T) {
	s := setupPipelineSuite(t)

	videoID := s.uploadVideo()

	payload := fmt.Sprintf(`{"public_id":"speakwise/%s.mp4","eager":[{"secure_url":"%s/a.mp4"}]}`, videoID, s.fileServer.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/cloudinary", strings.NewReader(payload))
	req.Header.Set("X-Cld-Timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("X-Cld-Signature", "deadbeef")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The video is untouched and no job was enqueued
	_, st := s.pollStatus(videoID)
	assert.Equal(t, "processing", st.Status)

	var jobCount int64
	require.NoError(t, s.db.Model(&models.Job{}).Count(&jobCount).Error)
	assert.Zero(t, jobCount)
}

func TestPipeline_UnauthenticatedStatusPoll(t *testing.T) {
	s := setupPipelineSuite(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/some-uuid", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
