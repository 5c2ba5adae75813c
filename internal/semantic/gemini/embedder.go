package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hn-matcher/internal/logger"
	"github.com/spigell/hn-matcher/internal/utils"
)

const (
	provider = "gemini"

	defaultModel         = "text-embedding-004"
	defaultTaskType      = "SEMANTIC_SIMILARITY"
	defaultMaxRetries    = 3
	defaultMaxRetryDelay = 10 * time.Second
	defaultMaxLogLength  = 200
	// maxInputRunes keeps requests under the model input limit.
	maxInputRunes = 8000

	baseBackoff = time.Second
)

// waitFor is replaced in tests.
var waitFor = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Options tune the embedder. Zero values select defaults.
type Options struct {
	Model         string
	TaskType      string
	MaxRetries    int
	MaxRetryDelay time.Duration
	MaxLogLength  int
}

// Embedder produces text embeddings with the Gemini API.
type Embedder struct {
	client        contentEmbedder
	model         string
	taskType      string
	maxRetries    int
	maxRetryDelay time.Duration
	maxLogLen     int
	logger        *zap.Logger
}

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, apiKey string, opts Options, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, opts, log), nil
}

func newEmbedder(client contentEmbedder, opts Options, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	taskType := strings.TrimSpace(opts.TaskType)
	if taskType == "" {
		taskType = defaultTaskType
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxRetryDelay <= 0 {
		opts.MaxRetryDelay = defaultMaxRetryDelay
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	return &Embedder{
		client:        client,
		model:         model,
		taskType:      taskType,
		maxRetries:    opts.MaxRetries,
		maxRetryDelay: opts.MaxRetryDelay,
		maxLogLen:     opts.MaxLogLength,
		logger:        logger.WithCommonFields(log, provider, model),
	}
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Embed returns the embedding of text. Temporary API errors are retried.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.client == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}
	if utf8.RuneCountInString(text) > maxInputRunes {
		text = string([]rune(text)[:maxInputRunes])
	}

	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}

	e.logger.Debug("gemini embed content request",
		zap.Int("text_length", utf8.RuneCountInString(text)),
		zap.String("text_preview", utils.Preview(text, e.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		resp, err := e.client.EmbedContent(ctx, e.model, genai.Text(text), cfg)
		if err == nil {
			return firstVector(resp)
		}
		lastErr = err

		delay, retry := e.retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Info("retrying gemini embed content",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := waitFor(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

// retryDelay decides whether err is worth another attempt and how long to wait.
// Quota errors asking for a longer pause than maxRetryDelay are not retried.
func (e *Embedder) retryDelay(err error, attempt int) (time.Duration, bool) {
	apiErr, ok := asAPIError(err)
	if !ok {
		return 0, false
	}

	backoff := baseBackoff << (attempt - 1)
	switch {
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	case apiErr.Code == http.StatusTooManyRequests:
		requested, found := requestedDelay(apiErr)
		if !found {
			return backoff, true
		}
		if requested > e.maxRetryDelay {
			return 0, false
		}
		return requested, true
	}
	return 0, false
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

// requestedDelay reads the delay from RetryInfo details or from the message.
func requestedDelay(apiErr genai.APIError) (time.Duration, bool) {
	for _, detail := range apiErr.Details {
		typ, _ := detail["@type"].(string)
		if !strings.HasSuffix(typ, "RetryInfo") {
			continue
		}
		if raw, ok := detail["retryDelay"].(string); ok {
			if d, err := time.ParseDuration(raw); err == nil {
				return d, true
			}
		}
	}

	if m := retryAfterPattern.FindStringSubmatch(apiErr.Message); m != nil {
		seconds, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return time.Duration(seconds * float64(time.Second)), true
		}
	}
	return 0, false
}

func firstVector(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, errors.New("gemini api returned empty response")
	}
	for _, embedding := range resp.Embeddings {
		if embedding != nil && len(embedding.Values) > 0 {
			return embedding.Values, nil
		}
	}
	return nil, errors.New("gemini api returned no embedding values")
}
