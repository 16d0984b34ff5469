package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/riskibarqy/tournament-scoring/internal/platform/resilience"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	analyzePath         = "/functions/v1/analyze-screenshot"
	maxResponseBytes    = 1 << 20
	defaultTimeout      = 45 * time.Second
	defaultRetryBackoff = time.Second
)

var errAnalyzerTransient = crerr.New("analyzer transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	// BaseURL is the functions host, e.g. https://project.functions.example.
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client calls the analyze-screenshot function, which reads placement and
// kill count from a match result image.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       singleflight.Group
}

type analyzeRequest struct {
	ImageURL string `json:"imageUrl"`
}

type analyzeResponse struct {
	Placement *int   `json:"placement"`
	Kills     *int   `json:"kills"`
	Error     string `json:"error,omitempty"`
}

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, crerr.Newf("invalid analyzer base url %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("analyzer circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		endpoint:     base.String() + analyzePath,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger.Named("analyzer"),
		breaker:      breaker,
	}, nil
}

// Analyze returns the extracted values. A nil field means the function ran
// but could not read that value from the image.
func (c *Client) Analyze(ctx context.Context, imageURL string) (usecase.AnalysisResult, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return usecase.AnalysisResult{}, crerr.New("image url is required")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("analyzer.image_url", imageURL))
	}

	out, err, shared := c.flight.Do(imageURL, func() (any, error) {
		var result usecase.AnalysisResult
		callErr := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var reqErr error
			result, reqErr = c.executeRequest(ctx, imageURL)
			return reqErr
		}, isTransient)
		return result, callErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "analyzer circuit breaker rejected request", "state", c.breaker.State())
			return usecase.AnalysisResult{}, fmt.Errorf("%w: image analyzer is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return usecase.AnalysisResult{}, err
	}

	result := out.(usecase.AnalysisResult)
	c.logger.DebugContext(ctx, "screenshot analyzed",
		"image_url", imageURL,
		"placement", derefOrNil(result.Placement),
		"kills", derefOrNil(result.Kills),
		"shared", shared,
	)
	return result, nil
}

func (c *Client) executeRequest(ctx context.Context, imageURL string) (usecase.AnalysisResult, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(analyzeRequest{ImageURL: imageURL}); err != nil {
		return usecase.AnalysisResult{}, crerr.Wrap(err, "encode analyze request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf.B))
		if err != nil {
			return usecase.AnalysisResult{}, crerr.Wrap(err, "build analyze request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("apikey", c.apiKey)
		}

		result, err := c.send(req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return usecase.AnalysisResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "analyze screenshot failed", "image_url", imageURL, "error", lastErr)
	return usecase.AnalysisResult{}, lastErr
}

func (c *Client) send(req *http.Request) (usecase.AnalysisResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return usecase.AnalysisResult{}, crerr.Mark(crerr.Wrap(err, "send analyze request"), errAnalyzerTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return usecase.AnalysisResult{}, crerr.Mark(crerr.Wrap(err, "read analyze response"), errAnalyzerTransient)
	}

	if resp.StatusCode/100 != 2 {
		statusErr := crerr.Newf("analyzer status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		if isRetryableStatus(resp.StatusCode) {
			return usecase.AnalysisResult{}, crerr.Mark(statusErr, errAnalyzerTransient)
		}
		return usecase.AnalysisResult{}, statusErr
	}

	var payload analyzeResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.AnalysisResult{}, crerr.Wrapf(err, "decode analyze response body=%s", abbreviateBody(raw))
	}
	if payload.Error != "" && payload.Placement == nil && payload.Kills == nil {
		c.logger.Info("analyzer could not read screenshot", "reason", payload.Error)
	}

	return usecase.AnalysisResult{Placement: payload.Placement, Kills: payload.Kills}, nil
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errAnalyzerTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func derefOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
