package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger initializes the structured logger. Empty logLevel or logFormat fall back to
// LOG_LEVEL / LOG_FORMAT from the environment and then to environment-based defaults.
func InitLogger(logLevel, logFormat string, isDevelopment bool) *logrus.Logger {
	return initLogger(logLevel, logFormat, isDevelopment, os.Stdout)
}

func initLogger(logLevel, logFormat string, isDevelopment bool, out io.Writer) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}
	if logFormat == "" {
		logFormat = os.Getenv("LOG_FORMAT")
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	// JSON everywhere except an interactive development shell
	if !isDevelopment || strings.ToLower(logFormat) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(out)

	Logger = log

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", "", false)
	}
	return Logger
}

// WithService creates a logger with service context
func WithService(serviceName string) *logrus.Entry {
	return GetLogger().WithField("service", serviceName)
}

// WithRequestID adds the request id shared with the tournament API
func WithRequestID(base logrus.FieldLogger, requestID string) *logrus.Entry {
	return base.WithField("request_id", requestID)
}

// WithTeam adds the acting team
func WithTeam(base logrus.FieldLogger, teamID int, teamName string) *logrus.Entry {
	fields := logrus.Fields{"team_id": teamID}
	if teamName != "" {
		fields["team_name"] = teamName
	}
	return base.WithFields(fields)
}

// WithHTTPContext adds HTTP request context
func WithHTTPContext(base logrus.FieldLogger, method, path, userAgent string) *logrus.Entry {
	return base.WithFields(logrus.Fields{
		"http_method":     method,
		"http_path":       path,
		"http_user_agent": userAgent,
	})
}
