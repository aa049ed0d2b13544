package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/api/middleware"
	"github.com/stitts-dev/golf-scoreboard/internal/models"
	"github.com/stitts-dev/golf-scoreboard/internal/providers"
	"github.com/stitts-dev/golf-scoreboard/internal/services"
	"github.com/stitts-dev/golf-scoreboard/pkg/utils"
)

const (
	ScorecardErrorText   = "Failed to load scorecard"
	SubmitScoreErrorText = "Failed to submit score"
)

// Leaderboard is the leaderboard cache as the views use it
type Leaderboard interface {
	Refresh(ctx context.Context)
	SubmitScore(ctx context.Context, holeNumber, score int) bool
	Snapshot() *services.LeaderboardSnapshot
	IsLoading() bool
	Err() string
}

// TournamentReader is the read side of the tournament API that views call
// directly, outside the cache
type TournamentReader interface {
	CurrentCourse(ctx context.Context) (*models.CourseInfo, error)
	TeamScorecard(ctx context.Context, teamID int) (*models.Scorecard, error)
	TeamScores(ctx context.Context, token string, teamID int) ([]models.HoleScore, error)
}

type LeaderboardHandler struct {
	cache           Leaderboard
	api             TournamentReader
	refreshInterval time.Duration
	logger          *logrus.Logger
}

func NewLeaderboardHandler(cache Leaderboard, api TournamentReader, refreshInterval time.Duration, logger *logrus.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		cache:           cache,
		api:             api,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// Show renders the standings; ?team=ID opens that team's scorecard
// GET /
func (h *LeaderboardHandler) Show(c *gin.Context) {
	snapshot := h.cache.Snapshot()

	data := gin.H{
		"Title":    "Leaderboard",
		"Team":     middleware.CurrentTeam(c),
		"Snapshot": snapshot,
		"Loading":  snapshot == nil && h.cache.IsLoading(),
		"Error":    h.cache.Err(),
	}

	if raw := c.Query("team"); raw != "" {
		data["ScorecardOpen"] = true
		card, err := h.scorecard(c.Request.Context(), raw)
		if err != nil {
			requestLog(c, h.logger).WithError(err).WithField("team", raw).Warn("Failed to load scorecard")
			data["ScorecardError"] = ScorecardErrorText
		} else {
			data["Scorecard"] = card
		}
	} else {
		data["AutoRefresh"] = int(h.refreshInterval.Seconds())
	}

	c.HTML(http.StatusOK, "leaderboard.html", data)
}

func (h *LeaderboardHandler) scorecard(ctx context.Context, raw string) (*models.Scorecard, error) {
	teamID, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return h.api.TeamScorecard(ctx, teamID)
}

// Refresh triggers a refresh and goes back to the standings
// POST /refresh
func (h *LeaderboardHandler) Refresh(c *gin.Context) {
	h.cache.Refresh(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

type leaderboardResponse struct {
	Snapshot *services.LeaderboardSnapshot `json:"snapshot"`
	Loading  bool                          `json:"loading"`
	Error    string                        `json:"error,omitempty"`
}

func (h *LeaderboardHandler) view() leaderboardResponse {
	return leaderboardResponse{
		Snapshot: h.cache.Snapshot(),
		Loading:  h.cache.IsLoading(),
		Error:    h.cache.Err(),
	}
}

// GetLeaderboard returns the cached standings
// GET /api/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	utils.SendSuccess(c, h.view())
}

// RefreshLeaderboard refreshes and returns the standings
// POST /api/leaderboard/refresh
func (h *LeaderboardHandler) RefreshLeaderboard(c *gin.Context) {
	h.cache.Refresh(c.Request.Context())
	utils.SendSuccess(c, h.view())
}

// GetScorecard returns one team's scorecard
// GET /api/teams/:id/scorecard
func (h *LeaderboardHandler) GetScorecard(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid team ID", err.Error())
		return
	}

	card, err := h.api.TeamScorecard(c.Request.Context(), teamID)
	if providers.IsNotFound(err) {
		utils.SendNotFound(c, "Team not found")
		return
	}
	if err != nil {
		requestLog(c, h.logger).WithError(err).WithField("team", teamID).Warn("Failed to load scorecard")
		utils.SendUpstreamError(c, ScorecardErrorText)
		return
	}
	utils.SendSuccess(c, card)
}
