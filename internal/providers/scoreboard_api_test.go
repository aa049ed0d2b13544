package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *ScoreboardClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewScoreboardClient(ClientOptions{
		BaseURL:          server.URL + "/",
		Timeout:          2 * time.Second,
		BreakerThreshold: 1,
		BreakerTimeout:   time.Minute,
	}, testLogger())
}

func TestScoreboardClient_Me(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"team":{"id":7,"name":"Fairway Flyers","players":["A","B"]}}`))
	})

	team, err := client.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, team.ID)
	assert.Equal(t, "Fairway Flyers", team.Name)
	assert.Equal(t, []string{"A", "B"}, team.Players)
}

func TestScoreboardClient_MeUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})

	_, err := client.Me(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Could not validate credentials", apiErr.Detail)
	assert.Equal(t, "/auth/me", apiErr.Path)
}

func TestScoreboardClient_Login(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Fairway Flyers", req.TeamName)
		assert.Equal(t, "secret", req.Password)

		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","team":{"id":7,"name":"Fairway Flyers","players":[]}}`))
	})

	resp, err := client.Login(context.Background(), "Fairway Flyers", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.AccessToken)
	assert.Equal(t, 7, resp.Team.ID)
}

func TestScoreboardClient_LoginMissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"team":{"id":7,"name":"x"}}`))
	})

	_, err := client.Login(context.Background(), "x", "y")
	assert.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}

func TestScoreboardClient_Leaderboard(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/leaderboard", r.URL.Path)
		_, _ = w.Write([]byte(`{"course_name":"Pebble","total_par":72,"leaderboard":[
			{"id":2,"name":"Eagles","players":"[\"C\"]","total_score":70,"holes_played":18,"relative_to_par":-2,"par_display":"-2"},
			{"id":1,"name":"Bogeys","players":null,"total_score":75,"holes_played":18,"relative_to_par":3,"par_display":"+3"}
		]}`))
	})

	resp, err := client.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pebble", resp.CourseName)
	require.Len(t, resp.Leaderboard, 2)
	assert.Equal(t, "Eagles", resp.Leaderboard[0].Name)
	assert.Nil(t, resp.Leaderboard[1].Players)
}

func TestScoreboardClient_LeaderboardEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	resp, err := client.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, resp.Leaderboard)
	assert.Empty(t, resp.Leaderboard)
}

func TestScoreboardClient_SubmitScore(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scores/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.SubmitScoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5, req.HoleNumber)
		assert.Equal(t, 4, req.Score)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"hole_number":5,"score":4}`))
	})

	assert.NoError(t, client.SubmitScore(context.Background(), "tok", 5, 4))
}

func TestScoreboardClient_TeamScoresAndScorecard(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scores/team/7":
			_, _ = w.Write([]byte(`{"team":{"id":7,"name":"x"},"scores":[{"hole_number":1,"score":4}],"total_score":4,"holes_played":1}`))
		case "/courses/team/7/scorecard":
			_, _ = w.Write([]byte(`{"team_name":"x","scorecard":[{"hole":1,"par":4,"score":4,"relative_to_par":0,"par_display":"E"}],"total_score":4,"total_par":72}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	scores, err := client.TeamScores(context.Background(), "tok", 7)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 4}, models.ScoresByHole(scores))

	card, err := client.TeamScorecard(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, card.Holes, 1)
	assert.Equal(t, "E", card.Holes[0].ParDisplay)

	_, err = client.TeamScorecard(context.Background(), 99)
	assert.True(t, IsNotFound(err))
}

func TestScoreboardClient_CurrentCourse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/current", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":1,"name":"Pebble","hole_pars":{"1":4,"2":3},"total_par":7}`))
	})

	course, err := client.CurrentCourse(context.Background())
	require.NoError(t, err)
	par, ok := course.ParFor(2)
	assert.True(t, ok)
	assert.Equal(t, 3, par)
}

func TestScoreboardClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"bad hole"}]}`))
	})

	for i := 0; i < 5; i++ {
		err := client.SubmitScore(context.Background(), "tok", 1, 1)
		require.Error(t, err)
		assert.False(t, IsOpen(err))
	}
	assert.Equal(t, gobreaker.StateClosed, client.BreakerState())
}

func TestScoreboardClient_ServerErrorsTripBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		_, err := client.Leaderboard(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, client.BreakerState())

	_, err := client.Leaderboard(context.Background())
	assert.True(t, IsOpen(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestReadDetail(t *testing.T) {
	assert.Equal(t, "nope", readDetailString(`{"detail":"nope"}`))
	assert.Equal(t, `[{"msg":"x"}]`, readDetailString(`{"detail":[{"msg":"x"}]}`))
	assert.Equal(t, "", readDetailString(`<html>`))
	assert.Equal(t, "", readDetailString(``))
}

func readDetailString(s string) string {
	return readDetail(strings.NewReader(s))
}
