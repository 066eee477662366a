package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/corelord/corelord/internal/config"
)

func TestBuildLogger_LevelParsing(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"nonsense", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}

	for _, tt := range tests {
		logger := buildLogger(&config.Config{LogLevel: tt.level})
		assert.Equal(t, tt.expected, logger.GetLevel(), "level %q", tt.level)
	}
}

func TestBuildLogger_ProductionUsesJSON(t *testing.T) {
	logger := buildLogger(&config.Config{Environment: "production", LogLevel: "info"})
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestBuildRouter_ServesRegisteredRoutes(t *testing.T) {
	router := buildRouter(&config.Config{Environment: "development"})
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Hour))
	assert.Equal(t, 30*time.Minute, parseDuration("30m", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("not-a-duration", time.Hour))
	assert.Equal(t, time.Hour, parseDuration("-5m", time.Hour))
}
