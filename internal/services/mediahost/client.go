package mediahost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Service is the interface handlers use to talk to the media host
type Service interface {
	Upload(ctx context.Context, publicID, filename string, payload io.Reader) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
	VerifyNotification(body []byte, timestamp, signature string) error
}

// UploadResult holds the fields we care about from an upload response
type UploadResult struct {
	PublicID  string `json:"public_id"`
	AssetID   string `json:"asset_id"`
	SecureURL string `json:"secure_url"`
	Bytes     int64  `json:"bytes"`
}

// Config holds configuration for the media host client
type Config struct {
	CloudName       string
	APIKey          string
	APISecret       string
	BaseURL         string
	NotificationURL string
	Timeout         time.Duration
	WebhookMaxAge   time.Duration
}

// Client handles communication with the Cloudinary-style media host
type Client struct {
	httpClient      *http.Client
	baseURL         string
	cloudName       string
	apiKey          string
	apiSecret       string
	notificationURL string
	webhookMaxAge   time.Duration
}

// NewClient creates a new media host client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com/v1_1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		cloudName:       cfg.CloudName,
		apiKey:          cfg.APIKey,
		apiSecret:       cfg.APISecret,
		notificationURL: cfg.NotificationURL,
		webhookMaxAge:   cfg.WebhookMaxAge,
	}
}

// Upload sends a video payload to the media host, requesting an eager MP4
// transcode and a completion callback to the configured notification URL.
func (c *Client) Upload(ctx context.Context, publicID, filename string, payload io.Reader) (*UploadResult, error) {
	params := map[string]string{
		"public_id":              publicID,
		"eager":                  "f_mp4",
		"eager_async":            "true",
		"timestamp":              strconv.FormatInt(time.Now().Unix(), 10),
		"eager_notification_url": c.notificationURL,
		"notification_url":       c.notificationURL,
	}
	params["signature"] = signParams(params, c.apiSecret)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", key, err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("writing api key: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, payload); err != nil {
		return nil, fmt.Errorf("copying payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/%s/video/upload", c.baseURL, c.cloudName)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[ERROR] Media host upload returned status %d: %s", resp.StatusCode, respBody)
		return nil, fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.PublicID == "" {
		return nil, fmt.Errorf("media host response missing public_id")
	}

	log.Printf("[DEBUG] Uploaded asset %s to media host", result.PublicID)

	return &result, nil
}

// Destroy removes an asset from the media host
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	params["signature"] = signParams(params, c.apiSecret)

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", c.apiKey)

	destroyURL := fmt.Sprintf("%s/%s/video/destroy", c.baseURL, c.cloudName)

	req, err := http.NewRequestWithContext(ctx, "POST", destroyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	log.Printf("[DEBUG] Destroyed asset %s at media host", publicID)

	return nil
}

// VerifyNotification checks a webhook signature and timestamp freshness
func (c *Client) VerifyNotification(body []byte, timestamp, signature string) error {
	return verifyNotificationSignature(body, timestamp, signature, c.apiSecret, c.webhookMaxAge)
}

// signParams computes the upload API signature: SHA-1 hex over the sorted
// key=value pairs joined with & plus the API secret.
func signParams(params map[string]string, apiSecret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	return sha1Hex(strings.Join(pairs, "&") + apiSecret)
}
