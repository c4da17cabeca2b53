package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/speakwise/speech-api/pkg/download"
)

// Transcriber converts a hosted media asset into a transcript
type Transcriber interface {
	TranscribeURL(ctx context.Context, mediaURL string) (string, error)
}

// Config holds configuration for the transcription client
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-style audio transcription endpoint
type Client struct {
	httpClient *http.Client
	downloader *download.Downloader
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a new transcription client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	downloadOpts := download.DefaultOptions()
	downloadOpts.Timeout = cfg.Timeout

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		downloader: download.NewDownloader(downloadOpts),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

// transcriptionResponse is the JSON body of a transcription result
type transcriptionResponse struct {
	Text string `json:"text"`
}

// TranscribeURL fetches the media at mediaURL and sends it for transcription
func (c *Client) TranscribeURL(ctx context.Context, mediaURL string) (string, error) {
	media, err := c.downloader.Fetch(ctx, mediaURL)
	if err != nil {
		return "", fmt.Errorf("fetching media: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}

	part, err := writer.CreateFormFile("file", fileNameFromURL(mediaURL))
	if err != nil {
		return "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(media.Data); err != nil {
		return "", fmt.Errorf("writing media bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[ERROR] Transcription API returned status %d: %s", resp.StatusCode, respBody)
		return "", fmt.Errorf("transcription API returned status %d", resp.StatusCode)
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("transcription API returned an empty transcript")
	}

	log.Printf("[DEBUG] Transcribed %d media bytes into %d transcript chars", len(media.Data), len(result.Text))

	return result.Text, nil
}

// fileNameFromURL extracts a plausible filename for the multipart part
func fileNameFromURL(mediaURL string) string {
	trimmed := strings.TrimRight(mediaURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		name := trimmed[idx+1:]
		if qIdx := strings.Index(name, "?"); qIdx > 0 {
			name = name[:qIdx]
		}
		if name != "" {
			return name
		}
	}
	return "media.mp4"
}
