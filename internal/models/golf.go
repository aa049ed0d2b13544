package models

import "fmt"

const (
	FirstHole = 1
	LastHole  = 18
	HoleCount = LastHole - FirstHole + 1
)

// CourseInfo is the read-only course reference data served by /courses/current.
// hole_pars arrives keyed by the hole number as a string ("1".."18").
type CourseInfo struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	HolePars map[int]int `json:"hole_pars"`
	TotalPar int         `json:"total_par"`
}

// ParFor returns the par of a hole and whether the course defines it
func (c *CourseInfo) ParFor(hole int) (int, bool) {
	if c == nil || c.HolePars == nil {
		return 0, false
	}
	par, ok := c.HolePars[hole]
	return par, ok
}

// ValidHole reports whether n is a hole number on an 18-hole course
func ValidHole(n int) bool {
	return n >= FirstHole && n <= LastHole
}

// HoleScore is a team's recorded strokes on one hole
type HoleScore struct {
	HoleNumber int    `json:"hole_number"`
	Score      int    `json:"score"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// TeamScoresResponse is the body of GET /scores/team/{id}
type TeamScoresResponse struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Scores      []HoleScore `json:"scores"`
	TotalScore  int         `json:"total_score"`
	HolesPlayed int         `json:"holes_played"`
}

// ScoresByHole indexes scores by hole number. Later entries win if the
// source ever repeats a hole.
func ScoresByHole(scores []HoleScore) map[int]int {
	byHole := make(map[int]int, len(scores))
	for _, s := range scores {
		byHole[s.HoleNumber] = s.Score
	}
	return byHole
}

// SubmitScoreRequest is the body of POST /scores/
type SubmitScoreRequest struct {
	HoleNumber int `json:"hole_number"`
	Score      int `json:"score"`
}

// ScorecardHole is one row of a team scorecard. Score 0 means the hole has not been played.
type ScorecardHole struct {
	Hole          int    `json:"hole"`
	Par           int    `json:"par"`
	Score         int    `json:"score"`
	RelativeToPar int    `json:"relative_to_par"`
	ParDisplay    string `json:"par_display"`
}

// Played reports whether a score has been entered for the hole
func (h ScorecardHole) Played() bool {
	return h.Score > 0
}

// Scorecard is the body of GET /courses/team/{id}/scorecard
type Scorecard struct {
	TeamName           string          `json:"team_name"`
	Players            *string         `json:"players"`
	CourseName         string          `json:"course_name"`
	Holes              []ScorecardHole `json:"scorecard"`
	TotalScore         int             `json:"total_score"`
	TotalPar           int             `json:"total_par"`
	TotalRelativeToPar int             `json:"total_relative_to_par"`
	TotalParDisplay    string          `json:"total_par_display"`
}

// PlayersDisplay renders the scorecard's serialized player list
func (s *Scorecard) PlayersDisplay() string {
	return PlayersDisplay(s.Players)
}

// FormatRelativeToPar renders a score relative to par the way golfers read it:
// "E" for even, "+3" over, "-2" under.
func FormatRelativeToPar(relative int) string {
	if relative == 0 {
		return "E"
	}
	return fmt.Sprintf("%+d", relative)
}
