package models

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	NoPlayersText          = "No players"
	PlayersUnavailableText = "Players unavailable"
)

var ErrNullPlayers = errors.New("players list is null")

// Team is the authenticated actor as returned by /auth/login and /auth/me
type Team struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	TeamName string `json:"team_name"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /auth/login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Team        Team   `json:"team"`
}

// MeResponse is the body returned by GET /auth/me
type MeResponse struct {
	Team *Team `json:"team"`
}

// TeamScore is one leaderboard row. Players is the team's player list still
// serialized as a JSON string; decode it with PlayersDisplay.
type TeamScore struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Players       *string `json:"players"`
	TotalScore    int     `json:"total_score"`
	HolesPlayed   int     `json:"holes_played"`
	TotalPar      int     `json:"total_par"`
	RelativeToPar int     `json:"relative_to_par"`
	ParDisplay    string  `json:"par_display"`
}

// ParLabel returns the server's label, or derives one from RelativeToPar when absent
func (t TeamScore) ParLabel() string {
	if t.ParDisplay != "" {
		return t.ParDisplay
	}
	return FormatRelativeToPar(t.RelativeToPar)
}

// PlayersDisplay renders this row's player list
func (t TeamScore) PlayersDisplay() string {
	return PlayersDisplay(t.Players)
}

// LeaderboardResponse is the body of GET /courses/leaderboard
type LeaderboardResponse struct {
	CourseName  string      `json:"course_name"`
	TotalPar    int         `json:"total_par"`
	Leaderboard []TeamScore `json:"leaderboard"`
}

// DecodePlayers parses a serialized player list
func DecodePlayers(raw string) ([]string, error) {
	var players []string
	if err := json.Unmarshal([]byte(raw), &players); err != nil {
		return nil, err
	}
	if players == nil {
		return nil, ErrNullPlayers
	}
	return players, nil
}

// PlayersDisplay turns a serialized player list into "A, B". A missing list reads
// NoPlayersText and an undecodable one PlayersUnavailableText, so one bad row never
// affects its neighbours.
func PlayersDisplay(raw *string) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return NoPlayersText
	}
	players, err := DecodePlayers(*raw)
	if err != nil {
		return PlayersUnavailableText
	}
	if len(players) == 0 {
		return NoPlayersText
	}
	return strings.Join(players, ", ")
}
