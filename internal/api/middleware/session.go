package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
	"github.com/stitts-dev/golf-scoreboard/internal/services"
	"github.com/stitts-dev/golf-scoreboard/pkg/utils"
)

const (
	TeamKey   = "team"
	TeamIDKey = "team_id"

	LoginPath = "/login"
)

// SessionSource is what the route guard needs from the session store
type SessionSource interface {
	State() services.SessionState
	Team() *models.Team
}

// RequireSession gates HTML pages: a loading page while the session is being
// restored, a redirect to the login page when nobody is logged in.
func RequireSession(session SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch session.State() {
		case services.SessionUnknown:
			c.Header("Retry-After", "1")
			c.HTML(http.StatusServiceUnavailable, "loading.html", gin.H{"Title": "Loading"})
			c.Abort()
		case services.SessionAnonymous:
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
		default:
			if !setTeam(c, session) {
				c.Redirect(http.StatusSeeOther, LoginPath)
				c.Abort()
				return
			}
			c.Next()
		}
	}
}

// RequireSessionAPI is RequireSession for the JSON endpoints
func RequireSessionAPI(session SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch session.State() {
		case services.SessionUnknown:
			c.Header("Retry-After", "1")
			utils.SendUnavailable(c, "Session is still loading")
			c.Abort()
		case services.SessionAnonymous:
			utils.SendUnauthorized(c, "Not logged in")
			c.Abort()
		default:
			if !setTeam(c, session) {
				utils.SendUnauthorized(c, "Not logged in")
				c.Abort()
				return
			}
			c.Next()
		}
	}
}

// setTeam copies the acting team into the request; a logout racing the state
// check leaves no team behind
func setTeam(c *gin.Context, session SessionSource) bool {
	team := session.Team()
	if team == nil {
		return false
	}
	c.Set(TeamKey, team)
	c.Set(TeamIDKey, team.ID)
	return true
}

// CurrentTeam returns the team stored by the session guard
func CurrentTeam(c *gin.Context) *models.Team {
	if v, exists := c.Get(TeamKey); exists {
		if team, ok := v.(*models.Team); ok {
			return team
		}
	}
	return nil
}
