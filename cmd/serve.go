package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/speakwise/speech-api/api"
	"github.com/speakwise/speech-api/api/types"
	"github.com/speakwise/speech-api/internal/database"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/internal/services/analyses"
	"github.com/speakwise/speech-api/internal/services/auth"
	"github.com/speakwise/speech-api/internal/services/cleanup"
	"github.com/speakwise/speech-api/internal/services/events"
	"github.com/speakwise/speech-api/internal/services/jobs"
	"github.com/speakwise/speech-api/internal/services/language"
	"github.com/speakwise/speech-api/internal/services/mediahost"
	"github.com/speakwise/speech-api/internal/services/transcribe"
	"github.com/speakwise/speech-api/internal/services/videos"
	"github.com/speakwise/speech-api/internal/services/workers"
	"github.com/speakwise/speech-api/pkg/config"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the SpeakWise API server with the configured settings.

The server accepts video uploads, receives transcoding webhooks from the
media host, and runs the background analysis workers.

Example:
  speech-api serve
  speech-api serve --port 9090
  speech-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	// Database
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Video{}, &models.AnalysisResult{}, &models.Job{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// External service clients
	mediaClient := mediahost.NewClient(mediahost.Config{
		CloudName:       cfg.MediaHost.CloudName,
		APIKey:          cfg.MediaHost.APIKey,
		APISecret:       cfg.MediaHost.APISecret,
		BaseURL:         cfg.MediaHost.BaseURL,
		NotificationURL: cfg.MediaHost.NotificationURL,
		Timeout:         cfg.MediaHost.Timeout,
		WebhookMaxAge:   cfg.MediaHost.WebhookMaxAge,
	})
	transcriber := transcribe.NewClient(transcribe.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.TranscriptionModel,
		Timeout: cfg.AI.Timeout,
	})
	languageClient := language.NewClient(language.Config{
		BaseURL:         cfg.AI.BaseURL,
		APIKey:          cfg.AI.APIKey,
		Model:           cfg.AI.ChatModel,
		Timeout:         cfg.AI.Timeout,
		GrammarMaxChars: cfg.AI.GrammarMaxChars,
	})

	// Status change events (best effort, disabled unless configured)
	publisher, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		log.Printf("[ERROR] AMQP publisher unavailable, continuing without events: %v", err)
		publisher = events.NewNopPublisher()
	}
	defer publisher.Close()

	// Services
	videoService := videos.NewService(videos.NewRepository(db.DB), publisher)
	analysisService := analyses.NewService(analyses.NewRepository(db.DB))
	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	authService := auth.NewService(cfg.Auth.JWTSecret)

	// Background workers
	pool := workers.NewWorkerPool(jobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewAnalysisProcessor(
		jobService,
		videoService,
		transcriber,
		languageClient,
	))
	pool.RegisterProcessor(workers.NewCleanupProcessor(jobService, mediaClient))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}
	defer pool.Stop()

	// Job retention sweeps
	retention := cleanup.NewService(jobService, cfg.Processing.JobRetentionDays, cfg.Processing.RetentionInterval)
	retention.Start(ctx)
	defer retention.Stop()

	// HTTP server
	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDatabase(db)
	server.SetDependencies(&types.Dependencies{
		DB:              db,
		VideoService:    videoService,
		AnalysisService: analysisService,
		JobService:      jobService,
		WorkerPool:      pool,
		MediaHost:       mediaClient,
		AuthService:     authService,
	})

	if err := server.Initialize(); err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	log.Printf("Starting SpeakWise API server on %s:%d", serverHost, serverPort)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-stop:
		log.Println("Shutting down server...")
	case err := <-serverErr:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		log.Println("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		return err
	}

	log.Println("Server gracefully stopped")
	return nil
}
