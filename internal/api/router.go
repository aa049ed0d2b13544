package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/api/handlers"
	"github.com/stitts-dev/golf-scoreboard/internal/api/middleware"
	"github.com/stitts-dev/golf-scoreboard/internal/api/templates"
)

// TournamentAPI is everything the views need from the tournament API client
type TournamentAPI interface {
	handlers.TournamentReader
	handlers.BreakerReporter
}

// Leaderboard is the leaderboard cache including its health status
type Leaderboard interface {
	handlers.Leaderboard
	handlers.CacheStatus
}

// Dependencies are the long-lived stores the router serves
type Dependencies struct {
	Session         handlers.Session
	Leaderboard     Leaderboard
	API             TournamentAPI
	RefreshInterval time.Duration
	Logger          *logrus.Logger
}

// NewRouter builds the gin engine with every page and JSON endpoint
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	tmpl, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.SetHTMLTemplate(tmpl)

	SetupRoutes(router, deps)
	return router, nil
}

// SetupRoutes registers pages and JSON endpoints on the router
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Session, deps.Logger)
	leaderboardHandler := handlers.NewLeaderboardHandler(deps.Leaderboard, deps.API, deps.RefreshInterval, deps.Logger)
	scoreHandler := handlers.NewScoreHandler(deps.Leaderboard, deps.Session, deps.API, deps.Logger)
	rulesHandler := handlers.NewRulesHandler(deps.RefreshInterval)
	healthHandler := handlers.NewHealthHandler(deps.Session, deps.Leaderboard, deps.API)

	// Public
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	// Pages behind the session guard
	pages := router.Group("/")
	pages.Use(middleware.RequireSession(deps.Session))
	{
		pages.GET("/", leaderboardHandler.Show)
		pages.POST("/refresh", leaderboardHandler.Refresh)
		pages.GET("/score", scoreHandler.Show)
		pages.POST("/score", scoreHandler.Submit)
		pages.GET("/rules", rulesHandler.Show)
	}

	// JSON mirror
	apiGroup := router.Group("/api")
	apiGroup.GET("/session", authHandler.GetSession)
	apiGroup.POST("/session", authHandler.CreateSession)
	apiGroup.DELETE("/session", authHandler.DeleteSession)

	protected := apiGroup.Group("")
	protected.Use(middleware.RequireSessionAPI(deps.Session))
	{
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.POST("/leaderboard/refresh", leaderboardHandler.RefreshLeaderboard)
		protected.GET("/teams/:id/scorecard", leaderboardHandler.GetScorecard)
		protected.GET("/scores", scoreHandler.GetTeamScores)
		protected.POST("/scores", scoreHandler.SubmitScoreJSON)
	}
}
