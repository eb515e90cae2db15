package adapter

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-3.5-turbo-0125",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "A graph is a set of nodes and edges."}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 7, "completion_tokens": 11, "total_tokens": 18}
}`

type fakeServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeServer(t *testing.T, handler http.HandlerFunc) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestClient(url string, timeout time.Duration, attempts int) *QueryClient {
	return NewQueryClient(Config{
		APIKey:      "test-key",
		BaseURL:     url + "/v1",
		Model:       "gpt-3.5-turbo",
		Timeout:     timeout,
		MaxAttempts: attempts,
	})
}

func TestQueryClient_Ask(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, completionBody)
	})

	client := newTestClient(srv.URL, time.Second, 1)
	answer, err := client.Ask(context.Background(), "  What is a graph?  ")
	require.NoError(t, err)

	assert.Equal(t, &Answer{
		Question: "What is a graph?",
		Answer:   "A graph is a set of nodes and edges.",
		Model:    "gpt-3.5-turbo-0125",
		Usage:    Usage{PromptTokens: 7, CompletionTokens: 11, TotalTokens: 18},
	}, answer)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	assert.Equal(t, 2000, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "What is a graph?", got.Messages[0].Content)
}

func TestQueryClient_AskEmptyQuestion(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, completionBody)
	})

	client := newTestClient(srv.URL, time.Second, 1)
	_, err := client.Ask(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	assert.Equal(t, "Question cannot be empty", apperrors.MessageOf(err))
	assert.Zero(t, srv.hits.Load())
}

func TestQueryClient_AskUpstreamFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantHits int32
	}{
		{"server error is retried", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, 2},
		{"client error is not retried", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, 1},
		{"empty choices", http.StatusOK, `{"id":"x","model":"gpt-3.5-turbo","choices":[]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			client := newTestClient(srv.URL, time.Second, 2)
			answer, err := client.Ask(context.Background(), "hello")
			assert.Nil(t, answer)
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream), "got %v", err)
			assert.Equal(t, tt.wantHits, srv.hits.Load())
		})
	}
}

func TestQueryClient_AskTimeout(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			writeJSON(w, http.StatusOK, completionBody)
		}
	})

	client := newTestClient(srv.URL, 50*time.Millisecond, 1)
	start := time.Now()
	_, err := client.Ask(context.Background(), "slow question")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var timeoutErr *apperrors.ErrUpstreamTimeout
	require.True(t, stderrors.As(err, &timeoutErr), "got %v", err)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestQueryClient_BreakerOpens(t *testing.T) {
	srv := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{"error":{"message":"down","type":"server_error"}}`)
	})

	client := newTestClient(srv.URL, time.Second, 1)
	for i := 0; i < 5; i++ {
		_, err := client.Ask(context.Background(), "ping")
		require.Error(t, err)
	}
	require.Equal(t, int32(5), srv.hits.Load())

	_, err := client.Ask(context.Background(), "ping")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, gobreaker.ErrOpenState), "got %v", err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream))
	assert.Equal(t, int32(5), srv.hits.Load(), "open breaker short-circuits the call")
}
