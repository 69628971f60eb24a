package statsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prop-insights/internal/platform/logging"
	"github.com/riskibarqy/prop-insights/internal/platform/resilience"
	"github.com/riskibarqy/prop-insights/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.sportsfeed.io/v2"
	maxResponseBytes   = 6 << 20
	scheduleDateLayout = "20060102"
)

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)

// errTransient marks failures worth retrying: network errors, 5xx, 429.
var errTransient = crerr.New("statsfeed transient failure")

// IsTransient reports whether an error came from a retryable provider
// failure rather than a permanent one like a 404.
func IsTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Retry          resilience.RetryPolicy
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches schedules and boxscores from the stats provider. One client
// serves every league; league-specific URL quirks stay inside this package.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	retry          resilience.RetryPolicy
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry = resilience.DefaultRetryPolicy()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		retry:          retry,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type scheduleEnvelope struct {
	Events []scheduleEvent `json:"events"`
}

type scheduleEvent struct {
	ID       string `json:"id"`
	Season   string `json:"season"`
	StartsAt string `json:"starts_at"`
	Home     string `json:"home"`
	Away     string `json:"away"`
}

// FetchSchedule returns a league's slate for one date plus the verbatim
// response body for audit storage. An empty slate is not an error.
func (c *Client) FetchSchedule(ctx context.Context, leagueCode string, date time.Time) ([]usecase.ExternalGame, []byte, error) {
	leagueCode = strings.ToLower(strings.TrimSpace(leagueCode))
	if leagueCode == "" {
		return nil, nil, fmt.Errorf("league code is required")
	}
	if date.IsZero() {
		return nil, nil, fmt.Errorf("schedule date is required")
	}

	path := fmt.Sprintf("/%s/schedule", leagueCode)
	query := map[string]string{"date": date.UTC().Format(scheduleDateLayout)}

	var envelope scheduleEnvelope
	raw, err := c.doJSON(ctx, path, query, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch schedule league=%s date=%s: %w", leagueCode, query["date"], err)
	}

	out := make([]usecase.ExternalGame, 0, len(envelope.Events))
	for _, event := range envelope.Events {
		ref := strings.TrimSpace(event.ID)
		home := strings.ToUpper(strings.TrimSpace(event.Home))
		away := strings.ToUpper(strings.TrimSpace(event.Away))
		if ref == "" || home == "" || away == "" {
			continue
		}

		startsAt := date.UTC()
		if parsed, parseErr := time.Parse(time.RFC3339, strings.TrimSpace(event.StartsAt)); parseErr == nil {
			startsAt = parsed.UTC()
		}

		out = append(out, usecase.ExternalGame{
			ExternalRef: ref,
			HomeAbbr:    home,
			AwayAbbr:    away,
			Season:      strings.TrimSpace(event.Season),
			StartsAt:    startsAt,
		})
	}

	return out, raw, nil
}

// FetchBoxScore returns a game's raw statistical payload. The body is kept
// opaque here; per-league normalizers own the shape.
func (c *Client) FetchBoxScore(ctx context.Context, leagueCode, gameRef string) ([]byte, error) {
	leagueCode = strings.ToLower(strings.TrimSpace(leagueCode))
	gameRef = strings.TrimSpace(gameRef)
	if leagueCode == "" || gameRef == "" {
		return nil, fmt.Errorf("league code and game ref are required")
	}

	path := fmt.Sprintf("/%s/boxscore/%s", leagueCode, url.PathEscape(gameRef))
	raw, err := c.doRaw(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch boxscore league=%s game=%s: %w", leagueCode, gameRef, err)
	}
	return raw, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	raw, err := c.doRaw(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	return raw, nil
}

func (c *Client) doRaw(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "statsfeed circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: stats provider is temporarily unavailable", errTransient)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && IsTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var raw []byte
	err := c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: read response body: %v", errTransient, readErr)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			raw = body
			return nil
		case isRetryableStatus(resp.StatusCode):
			return fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(body))
		default:
			return fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(body))
		}
	}, IsTransient)
	if err != nil {
		c.logger.WarnContext(ctx, "statsfeed request failed", "url", redactAPIURL(fullURL), "error", err)
		return nil, err
	}

	return raw, nil
}

func isRetryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

func abbreviateBody(body []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "api_key=REDACTED")
}
