package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPlayersDisplay(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected string
	}{
		{name: "decoded list", raw: strPtr(`["A","B"]`), expected: "A, B"},
		{name: "not json", raw: strPtr("not-json"), expected: PlayersUnavailableText},
		{name: "json null", raw: strPtr("null"), expected: PlayersUnavailableText},
		{name: "wrong shape", raw: strPtr(`{"a":1}`), expected: PlayersUnavailableText},
		{name: "absent", raw: nil, expected: NoPlayersText},
		{name: "blank", raw: strPtr("  "), expected: NoPlayersText},
		{name: "empty list", raw: strPtr("[]"), expected: NoPlayersText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlayersDisplay(tt.raw))
		})
	}
}

func TestLeaderboardRowsDegradeIndependently(t *testing.T) {
	body := `{"leaderboard":[
		{"id":1,"name":"Bogey Bros","players":"not-json","relative_to_par":-1,"par_display":"-1"},
		{"id":2,"name":"Fairway Flyers","players":"[\"A\",\"B\"]","relative_to_par":2,"par_display":"+2"}
	]}`

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Leaderboard, 2)

	assert.Equal(t, PlayersUnavailableText, resp.Leaderboard[0].PlayersDisplay())
	assert.Equal(t, "A, B", resp.Leaderboard[1].PlayersDisplay())
}

func TestFormatRelativeToPar(t *testing.T) {
	assert.Equal(t, "E", FormatRelativeToPar(0))
	assert.Equal(t, "+3", FormatRelativeToPar(3))
	assert.Equal(t, "-2", FormatRelativeToPar(-2))
}

func TestTeamScoreParLabel(t *testing.T) {
	assert.Equal(t, "+3", TeamScore{RelativeToPar: 3, ParDisplay: "+3"}.ParLabel())
	assert.Equal(t, "-4", TeamScore{RelativeToPar: -4}.ParLabel())
	assert.Equal(t, "E", TeamScore{}.ParLabel())
}

func TestCourseInfoDecodesStringKeyedPars(t *testing.T) {
	body := `{"id":1,"name":"Pebble","hole_pars":{"1":4,"2":5,"3":3},"total_par":12}`

	var course CourseInfo
	require.NoError(t, json.Unmarshal([]byte(body), &course))

	par, ok := course.ParFor(2)
	assert.True(t, ok)
	assert.Equal(t, 5, par)

	_, ok = course.ParFor(18)
	assert.False(t, ok)
}

func TestValidHole(t *testing.T) {
	assert.False(t, ValidHole(0))
	assert.True(t, ValidHole(1))
	assert.True(t, ValidHole(18))
	assert.False(t, ValidHole(19))
}

func TestScoresByHole(t *testing.T) {
	byHole := ScoresByHole([]HoleScore{{HoleNumber: 1, Score: 4}, {HoleNumber: 5, Score: 3}})

	assert.Equal(t, map[int]int{1: 4, 5: 3}, byHole)
}

func TestScorecardPlayed(t *testing.T) {
	var card Scorecard
	body := `{"team_name":"Fairway Flyers","players":"[\"A\"]","scorecard":[
		{"hole":1,"par":4,"score":5,"relative_to_par":1,"par_display":"+1"},
		{"hole":2,"par":3,"score":0,"relative_to_par":0,"par_display":"E"}
	],"total_score":5,"total_par":4,"total_relative_to_par":1,"total_par_display":"+1"}`
	require.NoError(t, json.Unmarshal([]byte(body), &card))

	require.Len(t, card.Holes, 2)
	assert.True(t, card.Holes[0].Played())
	assert.False(t, card.Holes[1].Played())
	assert.Equal(t, "A", card.PlayersDisplay())
}
