package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Options configures the download behavior
type Options struct {
	MaxSize   int64         // Maximum payload size in bytes (0 = no limit)
	Timeout   time.Duration // Download timeout
	UserAgent string        // User agent string
}

// DefaultOptions returns default download options
func DefaultOptions() Options {
	return Options{
		MaxSize:   500 * 1024 * 1024,
		Timeout:   5 * time.Minute,
		UserAgent: "SpeakWiseAPI/1.0",
	}
}

// Result contains a fetched payload and its response metadata
type Result struct {
	Data          []byte
	ContentType   string
	ContentLength int64
}

// Downloader fetches remote media payloads into memory
type Downloader struct {
	client  *http.Client
	options Options
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options Options) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true, // Don't compress media
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// Fetch downloads a URL into memory, enforcing the configured size limit
func (d *Downloader) Fetch(ctx context.Context, url string) (*Result, error) {
	log.Printf("[DEBUG] Fetching media from %s", url)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.options.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	if d.options.MaxSize > 0 && resp.ContentLength > d.options.MaxSize {
		return nil, fmt.Errorf("payload too large: %d bytes (limit %d)", resp.ContentLength, d.options.MaxSize)
	}

	reader := io.Reader(resp.Body)
	if d.options.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, d.options.MaxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if d.options.MaxSize > 0 && int64(len(data)) > d.options.MaxSize {
		return nil, fmt.Errorf("payload too large: exceeds %d byte limit", d.options.MaxSize)
	}

	log.Printf("[DEBUG] Fetched %d bytes (%s)", len(data), resp.Header.Get("Content-Type"))

	return &Result{
		Data:          data,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: int64(len(data)),
	}, nil
}
