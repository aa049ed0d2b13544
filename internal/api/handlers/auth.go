package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/api/middleware"
	"github.com/stitts-dev/golf-scoreboard/internal/models"
	"github.com/stitts-dev/golf-scoreboard/internal/services"
	"github.com/stitts-dev/golf-scoreboard/pkg/logger"
	"github.com/stitts-dev/golf-scoreboard/pkg/utils"
)

const LoginErrorText = "Invalid team name or password"

// Session is the session store as the views use it
type Session interface {
	middleware.SessionSource
	Login(ctx context.Context, teamName, password string) bool
	Logout(ctx context.Context)
	Revalidate(ctx context.Context) services.SessionState
	Token() string
	TokenExpiry() (time.Time, bool)
}

type AuthHandler struct {
	session Session
	logger  *logrus.Logger
}

func NewAuthHandler(session Session, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		session: session,
		logger:  logger,
	}
}

// LoginPage renders the login form
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if h.session.State() == services.SessionAuthenticated {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Title": "Sign in"})
}

// Login submits the login form
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	teamName := strings.TrimSpace(c.PostForm("team_name"))
	password := c.PostForm("password")

	if teamName == "" || password == "" {
		requestLog(c, h.logger).Debug("Login form submitted with blank fields")
		h.renderLoginError(c, teamName)
		return
	}
	if !h.session.Login(c.Request.Context(), teamName, password) {
		h.renderLoginError(c, teamName)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) renderLoginError(c *gin.Context, teamName string) {
	c.HTML(http.StatusUnauthorized, "login.html", gin.H{
		"Title":    "Sign in",
		"Error":    LoginErrorText,
		"TeamName": teamName,
	})
}

// Logout ends the session
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if team := h.session.Team(); team != nil {
		logger.WithTeam(requestLog(c, h.logger), team.ID, team.Name).Info("Team signed out")
	}
	h.session.Logout(c.Request.Context())
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

type sessionResponse struct {
	State       string       `json:"state"`
	Loading     bool         `json:"loading"`
	Team        *models.Team `json:"team,omitempty"`
	TokenExpiry *time.Time   `json:"token_expiry,omitempty"`
}

type loginRequest struct {
	TeamName string `json:"team_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GetSession reports the session state
// GET /api/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	utils.SendSuccess(c, h.sessionView())
}

// CreateSession logs a team in
// POST /api/session {"team_name": "...", "password": "..."}
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	req.TeamName = strings.TrimSpace(req.TeamName)
	if req.TeamName == "" {
		utils.SendValidationError(c, "Invalid request body", "team_name must not be blank")
		return
	}

	if !h.session.Login(c.Request.Context(), req.TeamName, req.Password) {
		utils.SendUnauthorized(c, LoginErrorText)
		return
	}
	utils.SendSuccess(c, h.sessionView())
}

// DeleteSession logs the team out
// DELETE /api/session
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	utils.SendSuccess(c, h.sessionView())
}

// requestLog tags handler log lines with the request id
func requestLog(c *gin.Context, base logrus.FieldLogger) *logrus.Entry {
	return logger.WithRequestID(base, c.GetString(middleware.RequestIDKey))
}

func (h *AuthHandler) sessionView() sessionResponse {
	state := h.session.State()
	resp := sessionResponse{
		State:   state.String(),
		Loading: state == services.SessionUnknown,
		Team:    h.session.Team(),
	}
	if exp, ok := h.session.TokenExpiry(); ok {
		resp.TokenExpiry = &exp
	}
	return resp
}
