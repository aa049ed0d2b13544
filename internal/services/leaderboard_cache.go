package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
	"github.com/stitts-dev/golf-scoreboard/internal/providers"
)

// LeaderboardErrorText is the only failure message consumers ever see
const LeaderboardErrorText = "Failed to load leaderboard"

// LeaderboardAPI is the part of the tournament API the cache needs
type LeaderboardAPI interface {
	Leaderboard(ctx context.Context) (*models.LeaderboardResponse, error)
	SubmitScore(ctx context.Context, token string, holeNumber, score int) error
}

// TokenSource supplies the bearer token attached to score writes
type TokenSource interface {
	Token() string
}

// LeaderboardSnapshot is one successful fetch, kept exactly in the order received
type LeaderboardSnapshot struct {
	CourseName string             `json:"course_name"`
	TotalPar   int                `json:"total_par"`
	Teams      []models.TeamScore `json:"leaderboard"`
	FetchedAt  time.Time          `json:"fetched_at"`
}

// LeaderboardStatus summarises the cache for health reporting
type LeaderboardStatus struct {
	Running     bool       `json:"running"`
	Interval    string     `json:"interval"`
	Loading     bool       `json:"loading"`
	Error       string     `json:"error,omitempty"`
	Teams       int        `json:"teams"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

// LeaderboardCache keeps an eventually fresh copy of the standings. Refreshes
// may overlap; each one takes a sequence number and a response older than the
// one already applied is dropped.
type LeaderboardCache struct {
	api      LeaderboardAPI
	tokens   TokenSource
	logger   *logrus.Logger
	interval time.Duration

	issued atomic.Uint64

	mu          sync.RWMutex
	snapshot    *LeaderboardSnapshot
	errMsg      string
	inFlight    int
	applied     uint64
	lastRefresh time.Time

	cronMu  sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
}

func NewLeaderboardCache(api LeaderboardAPI, tokens TokenSource, interval time.Duration, logger *logrus.Logger) *LeaderboardCache {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &LeaderboardCache{
		api:      api,
		tokens:   tokens,
		logger:   logger,
		interval: interval,
		cron:     cron.New(),
	}
}

// Refresh fetches the standings. On success the snapshot is replaced and the
// error cleared; on failure the previous snapshot stays and the error is set.
func (c *LeaderboardCache) Refresh(ctx context.Context) {
	seq := c.issued.Add(1)

	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	resp, err := c.api.Leaderboard(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	log := c.logger.WithFields(logrus.Fields{
		"component": "leaderboard_cache",
		"seq":       seq,
	})

	if seq < c.applied {
		log.WithField("applied", c.applied).Debug("Discarding stale leaderboard response")
		return
	}
	c.applied = seq

	if err != nil {
		c.errMsg = LeaderboardErrorText
		log.WithError(err).WithField("breaker_open", providers.IsOpen(err)).Warn("Leaderboard refresh failed")
		return
	}

	now := time.Now()
	c.snapshot = &LeaderboardSnapshot{
		CourseName: resp.CourseName,
		TotalPar:   resp.TotalPar,
		Teams:      resp.Leaderboard,
		FetchedAt:  now,
	}
	c.errMsg = ""
	c.lastRefresh = now
	log.WithField("teams", len(resp.Leaderboard)).Debug("Leaderboard refreshed")
}

// SubmitScore posts one hole score with the session token and, when the API
// accepts it, waits for one refresh before returning true. Invalid input is
// rejected without a network call.
func (c *LeaderboardCache) SubmitScore(ctx context.Context, holeNumber, score int) bool {
	log := c.logger.WithFields(logrus.Fields{
		"component": "leaderboard_cache",
		"hole":      holeNumber,
		"score":     score,
	})

	if err := ValidateHoleScore(holeNumber, score); err != nil {
		log.WithError(err).Debug("Rejected score entry")
		return false
	}

	token := c.tokens.Token()
	if token == "" {
		log.Warn("Score submitted without a session")
		return false
	}

	if err := c.api.SubmitScore(ctx, token, holeNumber, score); err != nil {
		log.WithError(err).WithField("breaker_open", providers.IsOpen(err)).Warn("Score submission failed")
		return false
	}

	log.Info("Score submitted")
	c.Refresh(ctx)
	return true
}

// Snapshot returns the latest standings, or nil before the first success
func (c *LeaderboardCache) Snapshot() *LeaderboardSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil
	}
	snap := *c.snapshot
	snap.Teams = make([]models.TeamScore, len(c.snapshot.Teams))
	copy(snap.Teams, c.snapshot.Teams)
	return &snap
}

// IsLoading reports whether any refresh is in flight
func (c *LeaderboardCache) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight > 0
}

// Err returns the generic error message of the last applied refresh, or ""
func (c *LeaderboardCache) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Start refreshes immediately and then on every interval until Stop
func (c *LeaderboardCache) Start() error {
	c.cronMu.Lock()
	defer c.cronMu.Unlock()

	if c.running {
		return fmt.Errorf("leaderboard cache is already running")
	}

	schedule := fmt.Sprintf("@every %s", c.interval.String())
	id, err := c.cron.AddFunc(schedule, c.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule leaderboard refresh: %w", err)
	}
	c.entryID = id

	c.cron.Start()
	c.running = true

	go c.tick()

	c.logger.WithFields(logrus.Fields{
		"component": "leaderboard_cache",
		"interval":  c.interval.String(),
	}).Info("Leaderboard polling started")
	return nil
}

// Stop cancels the timer and waits for a running tick to finish
func (c *LeaderboardCache) Stop() {
	c.cronMu.Lock()
	defer c.cronMu.Unlock()

	if !c.running {
		return
	}

	ctx := c.cron.Stop()
	<-ctx.Done()
	c.cron.Remove(c.entryID)

	c.running = false
	c.logger.WithField("component", "leaderboard_cache").Info("Leaderboard polling stopped")
}

func (c *LeaderboardCache) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), c.interval)
	defer cancel()
	c.Refresh(ctx)
}

// Status reports polling and freshness details
func (c *LeaderboardCache) Status() LeaderboardStatus {
	c.cronMu.Lock()
	status := LeaderboardStatus{
		Running:  c.running,
		Interval: c.interval.String(),
	}
	if c.running {
		if next := c.cron.Entry(c.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	c.cronMu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()
	status.Loading = c.inFlight > 0
	status.Error = c.errMsg
	if !c.lastRefresh.IsZero() {
		last := c.lastRefresh
		status.LastRefresh = &last
	}
	if c.snapshot != nil {
		status.Teams = len(c.snapshot.Teams)
	}
	return status
}
