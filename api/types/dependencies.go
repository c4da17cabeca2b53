package types

import (
	"github.com/speakwise/speech-api/internal/database"
	"github.com/speakwise/speech-api/internal/services/analyses"
	"github.com/speakwise/speech-api/internal/services/auth"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/mediahost"
	"github.com/speakwise/speech-api/internal/services/videos"
	"github.com/speakwise/speech-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB              *database.DB
	VideoService    videos.VideoService
	AnalysisService analyses.AnalysisService
	JobService      jobs.Service
	WorkerPool      *workers.WorkerPool
	MediaHost       mediahost.Service
	AuthService     *auth.Service
}
