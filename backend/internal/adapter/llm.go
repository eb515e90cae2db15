package adapter

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
	"github.com/gpad1234/light-octo/backend/pkg/logger"
)

const (
	serviceName = "openai"

	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
	defaultMaxAttempts = 2
)

// Config configures a QueryClient
type Config struct {
	APIKey  string
	BaseURL string // empty means the public OpenAI endpoint
	Model   string
	Timeout time.Duration

	// MaxAttempts bounds retries of transient failures within Timeout
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Usage is the token accounting reported by the API
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Answer is the reply to a single free-text question
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
}

// QueryClient forwards free-text questions to a chat completion API
type QueryClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewQueryClient creates a new client. Callers decide whether the feature is
// enabled; a client is only built when an API key is configured.
func NewQueryClient(cfg Config) *QueryClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}

	log := logger.Get()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Caller mistakes and cancellations say nothing about upstream health
			return err == nil || stderrors.Is(err, context.Canceled) || isClientError(err)
		},
	})

	return &QueryClient{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		cfg:     cfg,
		breaker: breaker,
		logger:  log,
	}
}

// Ask sends question as a single user message and returns the first choice
func (c *QueryClient) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewInvalidInput("Question cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: question,
			},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, req)
	})
	if err != nil {
		return nil, c.upstreamError(ctx, err)
	}
	resp := result.(openai.ChatCompletionResponse)

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewUpstreamFailed(serviceName, "no choices in LLM response", nil)
	}

	answer := &Answer{
		Question: question,
		Answer:   resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	c.logger.Debug("LLM response generated",
		zap.String("model", answer.Model),
		zap.Int("total_tokens", answer.Usage.TotalTokens),
	)
	return answer, nil
}

// complete retries transient failures with a linear backoff until the
// attempts or the context run out.
func (c *QueryClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.cfg.RetryBackoff
			c.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return resp, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}

		c.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", req.Model),
		)

		if ctx.Err() != nil || isClientError(err) {
			break
		}
	}
	return resp, err
}

func (c *QueryClient) upstreamError(ctx context.Context, err error) error {
	switch {
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.NewUpstreamFailed(serviceName, "LLM service temporarily unavailable", err)
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewUpstreamTimeout(serviceName, c.timeout, err)
	default:
		return apperrors.NewUpstreamFailed(serviceName, "LLM request failed", err)
	}
}

// isClientError reports 4xx responses other than rate limiting, which
// retrying cannot fix.
func isClientError(err error) bool {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
			apiErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 400 && reqErr.HTTPStatusCode < 500 &&
			reqErr.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}
