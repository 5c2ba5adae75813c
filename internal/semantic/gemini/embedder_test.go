package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeEmbedResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

type embedCallRecord struct {
	model  string
	text   string
	config *genai.EmbedContentConfig
}

type fakeEmbedClient struct {
	mu    sync.Mutex
	calls []embedCallRecord
	queue []fakeEmbedResponse
}

func (f *fakeEmbedClient) enqueue(resp *genai.EmbedContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeEmbedResponse{resp: resp, err: err})
}

func (f *fakeEmbedClient) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var text string
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		text = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, embedCallRecord{model: model, text: text, config: config})

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func vectorResponse(values ...float32) *genai.EmbedContentResponse {
	return &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: values}},
	}
}

func stubWait(t *testing.T) *[]time.Duration {
	t.Helper()
	original := waitFor
	var waits []time.Duration
	waitFor = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	t.Cleanup(func() { waitFor = original })
	return &waits
}

func TestEmbedderReturnsVector(t *testing.T) {
	client := &fakeEmbedClient{}
	client.enqueue(vectorResponse(0.1, 0.2), nil)

	e := newEmbedder(client, Options{Model: "embed-test"}, zap.NewNop())

	got, err := e.Embed(context.Background(), "  Location: Berlin\n")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", got)
	}

	if len(client.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.calls))
	}
	call := client.calls[0]
	if call.model != "embed-test" || call.text != "Location: Berlin" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if call.config == nil || call.config.TaskType != defaultTaskType {
		t.Fatalf("expected task type %s, got %+v", defaultTaskType, call.config)
	}
}

func TestEmbedderRetriesOnTemporaryError(t *testing.T) {
	waits := stubWait(t)

	client := &fakeEmbedClient{}
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	client.enqueue(nil, tempErr)
	client.enqueue(vectorResponse(1), nil)

	e := newEmbedder(client, Options{MaxRetries: 2}, zap.NewNop())

	if _, err := e.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(client.calls))
	}
	if len(*waits) != 1 || (*waits)[0] != baseBackoff {
		t.Fatalf("unexpected waits: %v", *waits)
	}
}

func TestEmbedderStopsAfterRetriesExhausted(t *testing.T) {
	stubWait(t)

	client := &fakeEmbedClient{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	client.enqueue(nil, tempErr)
	client.enqueue(nil, tempErr)

	e := newEmbedder(client, Options{MaxRetries: 2}, zap.NewNop())

	_, err := e.Embed(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(client.calls))
	}
}

func TestEmbedderDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	stubWait(t)

	client := &fakeEmbedClient{}
	client.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	e := newEmbedder(client, Options{MaxRetries: 3}, zap.NewNop())

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(client.calls))
	}
}

func TestEmbedderHonoursShortRetryInfo(t *testing.T) {
	waits := stubWait(t)

	client := &fakeEmbedClient{}
	client.enqueue(nil, genai.APIError{
		Code:   http.StatusTooManyRequests,
		Status: "RESOURCE_EXHAUSTED",
		Details: []map[string]any{{
			"@type":      "type.googleapis.com/google.rpc.RetryInfo",
			"retryDelay": "4s",
		}},
	})
	client.enqueue(vectorResponse(1), nil)

	e := newEmbedder(client, Options{}, zap.NewNop())

	if _, err := e.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 4*time.Second {
		t.Fatalf("unexpected waits: %v", *waits)
	}
}

func TestEmbedderDoesNotRetryClientErrors(t *testing.T) {
	stubWait(t)

	tests := []struct {
		name string
		err  error
	}{
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
		{name: "plain error", err: fmt.Errorf("dial: %w", errors.New("refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeEmbedClient{}
			client.enqueue(nil, tt.err)

			e := newEmbedder(client, Options{MaxRetries: 3}, zap.NewNop())
			if _, err := e.Embed(context.Background(), "text"); err == nil {
				t.Fatal("expected error")
			}
			if len(client.calls) != 1 {
				t.Fatalf("expected single call, got %d", len(client.calls))
			}
		})
	}
}

func TestEmbedderRejectsEmptyInput(t *testing.T) {
	client := &fakeEmbedClient{}
	e := newEmbedder(client, Options{}, zap.NewNop())

	if _, err := e.Embed(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty text")
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(client.calls))
	}
}

func TestEmbedderEmptyResponse(t *testing.T) {
	client := &fakeEmbedClient{}
	client.enqueue(&genai.EmbedContentResponse{}, nil)

	e := newEmbedder(client, Options{}, zap.NewNop())
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for response without values")
	}
}

func TestNewEmbedderRequiresKey(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), "  ", Options{}, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
