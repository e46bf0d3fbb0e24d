package oracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"brainarcade/internal/config"
	"brainarcade/internal/metrics"
	"brainarcade/internal/model"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Client calls the prediction service over HTTP behind a circuit breaker.
type Client struct {
	config config.OracleConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker[float64]
	logger zerolog.Logger
}

type predictRequest struct {
	UserID  string             `json:"userId"`
	Profile model.UserProfile  `json:"profile"`
	Context *model.PlayContext `json:"context,omitempty"`
}

type predictResponse struct {
	Value *float64 `json:"value"`
}

// NewClient creates an oracle client. It does not check connectivity.
func NewClient(cfg config.OracleConfig, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "oracle").Logger()
	c := &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	c.cb = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "prediction-oracle",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.OracleBreakerState.Set(stateValue(to))
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("oracle circuit breaker state change")
		},
	})
	return c
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (c *Client) PredictChurn(ctx context.Context, profile model.UserProfile) (float64, error) {
	return c.call(ctx, "churn", predictRequest{UserID: profile.UserID, Profile: profile})
}

func (c *Client) OptimizeDifficulty(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, error) {
	return c.call(ctx, "difficulty", predictRequest{UserID: profile.UserID, Profile: profile, Context: &pc})
}

func (c *Client) ForecastEngagement(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, error) {
	return c.call(ctx, "engagement", predictRequest{UserID: profile.UserID, Profile: profile, Context: &pc})
}

func (c *Client) call(ctx context.Context, name string, body predictRequest) (float64, error) {
	return c.cb.Execute(func() (float64, error) {
		return c.post(ctx, name, body)
	})
}

// post makes one request to the prediction service
func (c *Client) post(ctx context.Context, name string, body predictRequest) (float64, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.OracleRequestDuration.WithLabelValues(name, status).Observe(time.Since(start).Seconds())
	}()

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint(name), bytes.NewReader(jsonBody))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("oracle %s: %w", name, err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, fmt.Errorf("oracle %s: read body: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("oracle %s: unexpected status %d", name, resp.StatusCode)
	}

	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("oracle %s: decode: %w", name, err)
	}
	if out.Value == nil || *out.Value < 0 || *out.Value > 1 {
		return 0, fmt.Errorf("oracle %s: %w", name, ErrInvalidEstimate)
	}
	return *out.Value, nil
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}
