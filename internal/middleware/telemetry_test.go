package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedRouter() (*gin.Engine, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(otelgin.Middleware("corelord-test", otelgin.WithTracerProvider(tp)))
	router.GET("/plain", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	router.GET("/annotated", func(c *gin.Context) {
		AddSpanAttribute(c, "planner.limit", 40)
		AddSpanAttribute(c, "planner.region", "North Shore")
		AddSpanAttribute(c, "planner.score", 0.91)
		AddSpanAttribute(c, "planner.cached", true)
		c.JSON(http.StatusOK, gin.H{})
	})
	router.GET("/failing", func(c *gin.Context) {
		RecordError(c, errors.New("feed timeout"), "upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream failure"})
	})
	return router, recorder
}

func TestAddSpanAttribute(t *testing.T) {
	router, recorder := tracedRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/annotated", nil))

	require.Equal(t, http.StatusOK, w.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1)

	attrs := map[string]bool{}
	for _, attr := range spans[0].Attributes() {
		attrs[string(attr.Key)] = true
	}
	assert.True(t, attrs["planner.limit"])
	assert.True(t, attrs["planner.region"])
	assert.True(t, attrs["planner.score"])
	assert.True(t, attrs["planner.cached"])
}

func TestRecordError(t *testing.T) {
	router, recorder := tracedRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/failing", nil))

	require.Equal(t, http.StatusBadGateway, w.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEmpty(t, spans[0].Events())
}

func TestStartSpan_CreatesChildSpan(t *testing.T) {
	router, recorder := tracedRouter()
	router.GET("/nested", func(c *gin.Context) {
		_, span := StartSpan(c, "planner.rank")
		span.End()
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nested", nil))

	require.Equal(t, http.StatusOK, w.Code)
	// The request span plus the handler's child span.
	assert.GreaterOrEqual(t, len(recorder.Ended()), 1)
}

func TestHelpers_NoopWithoutActiveSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/untraced", func(c *gin.Context) {
		AddSpanAttribute(c, "key", "value")
		RecordError(c, errors.New("boom"), "ignored")
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/untraced", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
