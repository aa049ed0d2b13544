package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		logFormat     string
		isDevelopment bool
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "development defaults to debug text",
			isDevelopment: true,
			expectedLevel: logrus.DebugLevel,
			expectJSON:    false,
		},
		{
			name:          "production defaults to info json",
			isDevelopment: false,
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "explicit json in development",
			logLevel:      "warn",
			logFormat:     "JSON",
			isDevelopment: true,
			expectedLevel: logrus.WarnLevel,
			expectJSON:    true,
		},
		{
			name:          "invalid level defaults to info",
			logLevel:      "loud",
			isDevelopment: true,
			expectedLevel: logrus.InfoLevel,
			expectJSON:    false,
		},
		{
			name:          "case insensitive level",
			logLevel:      "ERROR",
			isDevelopment: false,
			expectedLevel: logrus.ErrorLevel,
			expectJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("LOG_FORMAT", "")
			Logger = nil

			var buf bytes.Buffer
			log := initLogger(tt.logLevel, tt.logFormat, tt.isDevelopment, &buf)

			assert.Equal(t, tt.expectedLevel, log.GetLevel())
			assert.Same(t, log, Logger)

			buf.Reset()
			log.Error("probe")
			line := strings.TrimSpace(buf.String())
			require.NotEmpty(t, line)

			var decoded map[string]interface{}
			isJSON := json.Unmarshal([]byte(line), &decoded) == nil
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestInitLogger_EnvironmentLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "trace")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	log := initLogger("", "", false, &buf)

	assert.Equal(t, logrus.TraceLevel, log.GetLevel())
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	log := initLogger("info", "json", false, &buf)

	WithTeam(log, 7, "Fairway Flyers").Info("submitted")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(7), decoded["team_id"])
	assert.Equal(t, "Fairway Flyers", decoded["team_name"])

	assert.Equal(t, "abc", WithRequestID(log, "abc").Data["request_id"])
	assert.NotContains(t, WithTeam(log, 7, "").Data, "team_name")

	entry := WithHTTPContext(WithService("scoreboard"), "GET", "/", "curl")
	assert.Equal(t, "GET", entry.Data["http_method"])
	assert.Equal(t, "scoreboard", entry.Data["service"])
	assert.Equal(t, "scoreboard", WithService("scoreboard").Data["service"])
}
