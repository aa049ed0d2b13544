package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
)

// Endpoint paths of the tournament API
const (
	pathMe          = "/auth/me"
	pathLogin       = "/auth/login"
	pathLeaderboard = "/courses/leaderboard"
	pathCourse      = "/courses/current"
	pathScores      = "/scores/"
)

func scorecardPath(teamID int) string  { return fmt.Sprintf("/courses/team/%d/scorecard", teamID) }
func teamScoresPath(teamID int) string { return fmt.Sprintf("/scores/team/%d", teamID) }

// APIError is a non-2xx answer from the tournament API
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsClientError reports a 4xx status
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsUnauthorized reports whether err is a rejected credential (401/403)
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether the API answered 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ClientOptions configures a ScoreboardClient
type ClientOptions struct {
	BaseURL          string
	Timeout          time.Duration
	RateLimit        int // requests per second, <= 0 disables limiting
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

// ScoreboardClient talks to the tournament REST API
type ScoreboardClient struct {
	httpClient  *http.Client
	baseURL     string
	logger      *logrus.Logger
	rateLimiter *rate.Limiter
	breaker     *CircuitBreakerService
}

// NewScoreboardClient creates a new tournament API client
func NewScoreboardClient(opts ClientOptions, logger *logrus.Logger) *ScoreboardClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	breakerTimeout := opts.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	return &ScoreboardClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		logger:      logger,
		rateLimiter: rate.NewLimiter(limit, 5),
		breaker:     NewCircuitBreakerService("tournament-api", opts.BreakerThreshold, breakerTimeout, logger),
	}
}

// BaseURL returns the resolved API base URL
func (c *ScoreboardClient) BaseURL() string {
	return c.baseURL
}

// BreakerState exposes the circuit breaker state for health reporting
func (c *ScoreboardClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts exposes the breaker's request counts for the current interval
func (c *ScoreboardClient) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}

// Me validates a bearer token and returns the team it belongs to
func (c *ScoreboardClient) Me(ctx context.Context, token string) (*models.Team, error) {
	var resp models.MeResponse
	if err := c.do(ctx, http.MethodGet, pathMe, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Team == nil {
		return nil, fmt.Errorf("%s: response has no team", pathMe)
	}
	return resp.Team, nil
}

// Login exchanges team credentials for an access token
func (c *ScoreboardClient) Login(ctx context.Context, teamName, password string) (*models.LoginResponse, error) {
	req := models.LoginRequest{TeamName: teamName, Password: password}

	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%s: response has no access token", pathLogin)
	}
	return &resp, nil
}

// Leaderboard fetches the current standings in ranking order
func (c *ScoreboardClient) Leaderboard(ctx context.Context) (*models.LeaderboardResponse, error) {
	var resp models.LeaderboardResponse
	if err := c.do(ctx, http.MethodGet, pathLeaderboard, "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Leaderboard == nil {
		resp.Leaderboard = []models.TeamScore{}
	}
	return &resp, nil
}

// CurrentCourse fetches the course reference data
func (c *ScoreboardClient) CurrentCourse(ctx context.Context) (*models.CourseInfo, error) {
	var course models.CourseInfo
	if err := c.do(ctx, http.MethodGet, pathCourse, "", nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// TeamScorecard fetches the 18-hole scorecard of any team
func (c *ScoreboardClient) TeamScorecard(ctx context.Context, teamID int) (*models.Scorecard, error) {
	var card models.Scorecard
	if err := c.do(ctx, http.MethodGet, scorecardPath(teamID), "", nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// SubmitScore records the acting team's score for one hole
func (c *ScoreboardClient) SubmitScore(ctx context.Context, token string, holeNumber, score int) error {
	req := models.SubmitScoreRequest{HoleNumber: holeNumber, Score: score}
	return c.do(ctx, http.MethodPost, pathScores, token, req, nil)
}

// TeamScores fetches the hole scores a team has entered so far
func (c *ScoreboardClient) TeamScores(ctx context.Context, token string, teamID int) ([]models.HoleScore, error) {
	var resp models.TeamScoresResponse
	if err := c.do(ctx, http.MethodGet, teamScoresPath(teamID), token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Scores == nil {
		resp.Scores = []models.HoleScore{}
	}
	return resp.Scores, nil
}

func (c *ScoreboardClient) do(ctx context.Context, method, path, token string, body, target interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.makeRequest(ctx, method, path, token, body, target)
	})
	return err
}

func (c *ScoreboardClient) makeRequest(ctx context.Context, method, path, token string, body, target interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	entry := c.logger.WithFields(logrus.Fields{
		"component":  "scoreboard_api",
		"method":     method,
		"path":       path,
		"request_id": requestID,
		"auth":       token != "",
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		entry.WithError(err).Warn("Tournament API request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	entry = entry.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"latency": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Detail:     readDetail(resp.Body),
		}
		entry.WithField("detail", apiErr.Detail).Warn("Tournament API returned an error status")
		return apiErr
	}

	entry.Debug("Tournament API request completed")

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

// readDetail extracts the API's {"detail": "..."} message, if any
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Detail == nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok {
		return s
	}
	encoded, _ := json.Marshal(payload.Detail)
	return string(encoded)
}
