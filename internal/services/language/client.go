package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/speakwise/speech-api/internal/models"
)

// Analyzer runs language-model analyses against a transcript
type Analyzer interface {
	GrammarCheck(ctx context.Context, transcript string) (*GrammarResult, error)
	AnalyzeSpeech(ctx context.Context, transcript string) (*SpeechResult, error)
}

// GrammarResult is the outcome of a grammar check
type GrammarResult struct {
	Score  int
	Issues models.GrammarIssueList
}

// SpeechResult is the outcome of the holistic speech analysis
type SpeechResult struct {
	OverallScore    int
	FillerWords     []string
	SpeakingRate    float64
	Sentiment       string
	FluencyFeedback string
	Improvements    []string
}

// Config holds configuration for the language model client
type Config struct {
	BaseURL         string
	APIKey          string
	Model           string
	Timeout         time.Duration
	GrammarMaxChars int
}

// Client calls an OpenAI-style chat completions endpoint
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	model           string
	grammarMaxChars int
}

// NewClient creates a new language model client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.GrammarMaxChars == 0 {
		cfg.GrammarMaxChars = 5000
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		model:           cfg.Model,
		grammarMaxChars: cfg.GrammarMaxChars,
	}
}

const grammarPrompt = `You are a grammar checker. Analyze the following spoken-language transcript for grammar and syntax problems. Respond with a JSON object only, no prose: {"score": <0-100 integer>, "issues": [{"message": "...", "snippet": "...", "suggestions": ["..."]}]}. Transcript:`

const speechPrompt = `You are a public speaking coach. Analyze the following speech transcript. Respond with a JSON object only, no prose: {"overallScore": <0-100 integer>, "fillerWords": ["..."], "speakingRate": <words per minute number>, "sentiment": "...", "fluencyFeedback": "...", "areasForImprovement": ["..."]}. Transcript:`

// Neutral defaults used when the model's grammar output is unusable
const (
	defaultGrammarScore = 80
)

// grammarPayload mirrors the JSON the model is instructed to return
type grammarPayload struct {
	Score  *int `json:"score"`
	Issues []struct {
		Message     string   `json:"message"`
		Snippet     string   `json:"snippet"`
		Suggestions []string `json:"suggestions"`
	} `json:"issues"`
}

// speechPayload mirrors the JSON the model is instructed to return
type speechPayload struct {
	OverallScore    *int     `json:"overallScore"`
	FillerWords     []string `json:"fillerWords"`
	SpeakingRate    float64  `json:"speakingRate"`
	Sentiment       string   `json:"sentiment"`
	FluencyFeedback string   `json:"fluencyFeedback"`
	Improvements    []string `json:"areasForImprovement"`
}

// GrammarCheck runs a grammar analysis over a bounded slice of the
// transcript. Malformed or missing model output degrades to neutral
// defaults rather than an error.
func (c *Client) GrammarCheck(ctx context.Context, transcript string) (*GrammarResult, error) {
	input := transcript
	if len(input) > c.grammarMaxChars {
		input = input[:c.grammarMaxChars]
	}

	content, err := c.complete(ctx, grammarPrompt, input)
	if err != nil {
		return nil, fmt.Errorf("grammar completion: %w", err)
	}

	var payload grammarPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil || payload.Score == nil {
		log.Printf("[DEBUG] Unusable grammar output, substituting neutral defaults: %v", err)
		return &GrammarResult{Score: defaultGrammarScore, Issues: models.GrammarIssueList{}}, nil
	}

	issues := make(models.GrammarIssueList, 0, len(payload.Issues))
	for _, issue := range payload.Issues {
		issues = append(issues, models.GrammarIssue{
			Message:     issue.Message,
			Snippet:     issue.Snippet,
			Suggestions: issue.Suggestions,
		})
	}

	return &GrammarResult{Score: clampScore(*payload.Score), Issues: issues}, nil
}

// AnalyzeSpeech runs the holistic speech analysis. A response missing the
// overall score or the improvement list is a hard error.
func (c *Client) AnalyzeSpeech(ctx context.Context, transcript string) (*SpeechResult, error) {
	content, err := c.complete(ctx, speechPrompt, transcript)
	if err != nil {
		return nil, fmt.Errorf("speech completion: %w", err)
	}

	var payload speechPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("unparseable speech analysis output: %w", err)
	}

	if payload.OverallScore == nil {
		return nil, fmt.Errorf("speech analysis output missing overall score")
	}
	if payload.Improvements == nil {
		return nil, fmt.Errorf("speech analysis output missing improvement list")
	}

	fillerWords := payload.FillerWords
	if fillerWords == nil {
		fillerWords = []string{}
	}

	return &SpeechResult{
		OverallScore:    clampScore(*payload.OverallScore),
		FillerWords:     fillerWords,
		SpeakingRate:    payload.SpeakingRate,
		Sentiment:       payload.Sentiment,
		FluencyFeedback: payload.FluencyFeedback,
		Improvements:    payload.Improvements,
	}, nil
}

// chat completion request/response shapes
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one chat completion request and returns the message content
func (c *Client) complete(ctx context.Context, prompt, input string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt + "\n\n" + input},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[ERROR] Language API returned status %d: %s", resp.StatusCode, respBody)
		return "", fmt.Errorf("language API returned status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("language API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// extractJSON strips any prose or markdown fencing around a JSON object
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// clampScore bounds a model-reported score to [0, 100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
