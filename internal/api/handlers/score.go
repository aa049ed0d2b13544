package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/api/middleware"
	"github.com/stitts-dev/golf-scoreboard/internal/models"
	"github.com/stitts-dev/golf-scoreboard/internal/providers"
	"github.com/stitts-dev/golf-scoreboard/internal/services"
	"github.com/stitts-dev/golf-scoreboard/pkg/logger"
	"github.com/stitts-dev/golf-scoreboard/pkg/utils"
)

const (
	InvalidScoreText      = "Please enter a whole number of strokes, 1 or more"
	ScoresUnavailableText = "Failed to load your scores"
)

var errSessionEnded = errors.New("session ended")

type ScoreHandler struct {
	cache   Leaderboard
	session Session
	api     TournamentReader
	logger  *logrus.Logger

	courseMu sync.Mutex
	course   *models.CourseInfo
}

func NewScoreHandler(cache Leaderboard, session Session, api TournamentReader, logger *logrus.Logger) *ScoreHandler {
	return &ScoreHandler{
		cache:   cache,
		session: session,
		api:     api,
		logger:  logger,
	}
}

type holeOption struct {
	Number   int
	Par      int
	Score    int
	Scored   bool
	Selected bool
}

// courseInfo fetches the course once; a failed fetch is retried on the next request
func (h *ScoreHandler) courseInfo(ctx context.Context) (*models.CourseInfo, error) {
	h.courseMu.Lock()
	defer h.courseMu.Unlock()

	if h.course != nil {
		return h.course, nil
	}
	course, err := h.api.CurrentCourse(ctx)
	if err != nil {
		return nil, err
	}
	h.course = course
	return course, nil
}

// teamScores loads the acting team's scores. A rejected token ends the session
// and yields errSessionEnded.
func (h *ScoreHandler) teamScores(c *gin.Context, team *models.Team) (map[int]int, error) {
	ctx := c.Request.Context()
	scores, err := h.api.TeamScores(ctx, h.session.Token(), team.ID)
	if err != nil {
		logger.WithTeam(requestLog(c, h.logger), team.ID, "").WithError(err).Warn("Failed to load team scores")
		if providers.IsUnauthorized(err) && h.session.Revalidate(ctx) == services.SessionAnonymous {
			return nil, errSessionEnded
		}
		return nil, err
	}
	return models.ScoresByHole(scores), nil
}

// Show renders the score entry form
// GET /score?hole=N&saved=N
func (h *ScoreHandler) Show(c *gin.Context) {
	team := middleware.CurrentTeam(c)

	hole := models.FirstHole
	if raw := c.Query("hole"); raw != "" {
		if parsed, err := services.ParseHole(raw); err == nil {
			hole = parsed
		}
	}

	data, ok := h.formData(c, team, hole)
	if !ok {
		c.Redirect(http.StatusSeeOther, middleware.LoginPath)
		return
	}
	if saved, err := services.ParseHole(c.Query("saved")); err == nil {
		data["Saved"] = saved
	}
	c.HTML(http.StatusOK, "score.html", data)
}

// Submit saves one hole score and moves on to the next hole
// POST /score
func (h *ScoreHandler) Submit(c *gin.Context) {
	team := middleware.CurrentTeam(c)

	hole, err := services.ParseHole(c.PostForm("hole_number"))
	if err != nil {
		h.renderError(c, team, models.FirstHole, c.PostForm("score"), http.StatusBadRequest, InvalidScoreText)
		return
	}

	score, err := services.ParseScore(c.PostForm("score"))
	if err != nil {
		h.renderError(c, team, hole, c.PostForm("score"), http.StatusBadRequest, InvalidScoreText)
		return
	}

	if !h.cache.SubmitScore(c.Request.Context(), hole, score) {
		h.renderError(c, team, hole, strconv.Itoa(score), http.StatusBadGateway, SubmitScoreErrorText)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/score?hole=%d&saved=%d", nextHole(hole), hole))
}

func (h *ScoreHandler) renderError(c *gin.Context, team *models.Team, hole int, scoreValue string, status int, message string) {
	data, ok := h.formData(c, team, hole)
	if !ok {
		c.Redirect(http.StatusSeeOther, middleware.LoginPath)
		return
	}
	data["Error"] = message
	data["ScoreValue"] = scoreValue
	c.HTML(status, "score.html", data)
}

func (h *ScoreHandler) formData(c *gin.Context, team *models.Team, selected int) (gin.H, bool) {
	ctx := c.Request.Context()

	scores, err := h.teamScores(c, team)
	if errors.Is(err, errSessionEnded) {
		return nil, false
	}
	scoresFailed := err != nil
	if scoresFailed {
		scores = map[int]int{}
	}

	course, err := h.courseInfo(ctx)
	if err != nil {
		requestLog(c, h.logger).WithError(err).Warn("Failed to load course")
	}

	holes := make([]holeOption, 0, models.HoleCount)
	for n := models.FirstHole; n <= models.LastHole; n++ {
		par, _ := course.ParFor(n)
		score, scored := scores[n]
		holes = append(holes, holeOption{
			Number:   n,
			Par:      par,
			Score:    score,
			Scored:   scored,
			Selected: n == selected,
		})
	}

	data := gin.H{
		"Title":        "Enter Scores",
		"Team":         team,
		"Holes":        holes,
		"HolesScored":  len(scores),
		"SelectedHole": selected,
		"SelectedPar":  holes[selected-models.FirstHole].Par,
	}
	if scoresFailed {
		data["ScoresNotice"] = ScoresUnavailableText
	}
	if existing, ok := scores[selected]; ok {
		data["ScoreValue"] = strconv.Itoa(existing)
	}
	if course != nil {
		data["CourseName"] = course.Name
		data["TotalPar"] = course.TotalPar
	}
	return data, true
}

// nextHole advances the selector, staying on the last hole
func nextHole(hole int) int {
	if hole >= models.LastHole {
		return models.LastHole
	}
	return hole + 1
}

type submitScoreRequest struct {
	HoleNumber int `json:"hole_number" binding:"required"`
	Score      int `json:"score" binding:"required"`
}

// SubmitScoreJSON saves one hole score
// POST /api/scores {"hole_number": 5, "score": 4}
func (h *ScoreHandler) SubmitScoreJSON(c *gin.Context) {
	var req submitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if err := services.ValidateHoleScore(req.HoleNumber, req.Score); err != nil {
		message := InvalidScoreText
		if errors.Is(err, services.ErrInvalidHole) {
			message = "Hole number must be between 1 and 18"
		}
		utils.SendValidationError(c, message, err.Error())
		return
	}

	if !h.cache.SubmitScore(c.Request.Context(), req.HoleNumber, req.Score) {
		utils.SendUpstreamError(c, SubmitScoreErrorText)
		return
	}

	utils.SendSuccess(c, gin.H{
		"hole_number": req.HoleNumber,
		"score":       req.Score,
		"snapshot":    h.cache.Snapshot(),
	})
}

// GetTeamScores returns the acting team's entered scores
// GET /api/scores
func (h *ScoreHandler) GetTeamScores(c *gin.Context) {
	team := middleware.CurrentTeam(c)

	scores, err := h.api.TeamScores(c.Request.Context(), h.session.Token(), team.ID)
	if err != nil {
		logger.WithTeam(requestLog(c, h.logger), team.ID, "").WithError(err).Warn("Failed to load team scores")
		if providers.IsUnauthorized(err) {
			h.session.Revalidate(c.Request.Context())
			utils.SendUnauthorized(c, "Session expired")
			return
		}
		utils.SendUpstreamError(c, "Failed to load scores")
		return
	}
	utils.SendSuccess(c, scores)
}
