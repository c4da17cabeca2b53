package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewDownloader(t *testing.T) {
	options := DefaultOptions()
	downloader := NewDownloader(options)

	if downloader == nil {
		t.Fatal("NewDownloader returned nil")
	}

	if downloader.client == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if downloader.options.Timeout != options.Timeout {
		t.Errorf("Expected timeout %v, got %v", options.Timeout, downloader.options.Timeout)
	}
}

func TestDefaultOptions(t *testing.T) {
	options := DefaultOptions()

	if options.MaxSize != int64(500*1024*1024) {
		t.Errorf("Expected MaxSize %v, got %v", int64(500*1024*1024), options.MaxSize)
	}

	if options.Timeout != 5*time.Minute {
		t.Errorf("Expected Timeout %v, got %v", 5*time.Minute, options.Timeout)
	}

	if options.UserAgent == "" {
		t.Error("Expected User-Agent to be set")
	}
}

func TestFetch(t *testing.T) {
	payload := strings.Repeat("a", 2048)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	downloader := NewDownloader(DefaultOptions())

	result, err := downloader.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if string(result.Data) != payload {
		t.Errorf("Expected %d bytes back, got %d", len(payload), len(result.Data))
	}

	if result.ContentType != "video/mp4" {
		t.Errorf("Expected content type video/mp4, got %s", result.ContentType)
	}
}

func TestFetch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	downloader := NewDownloader(DefaultOptions())

	if _, err := downloader.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestFetch_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("b", 512)))
	}))
	defer server.Close()

	options := DefaultOptions()
	options.MaxSize = 128
	downloader := NewDownloader(options)

	if _, err := downloader.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for payload over the size limit")
	}
}
