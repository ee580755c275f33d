package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogs redirects the global logger into a buffer for the duration of
// the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })
	return &buf
}

func TestRedactingLogger_ScrubsEmailsInPathAndQuery(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/user-profile/:user_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/user-profile/alice@example.com?userId=bob@example.com", nil)
	r.ServeHTTP(w, req)

	out := buf.String()
	if strings.Contains(out, "alice@example.com") || strings.Contains(out, "bob@example.com") {
		t.Fatalf("email leaked into logs: %s", out)
	}
	if !strings.Contains(out, "[REDACTED:email]") {
		t.Fatalf("expected redaction marker in logs: %s", out)
	}
}

func TestRedactingLogger_MasksConfiguredHeaders(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-12345-secret")
	req.Header.Set("X-Api-Key", "super-secret-value")
	r.ServeHTTP(w, req)

	out := buf.String()
	if strings.Contains(out, "super-secret-value") || strings.Contains(out, "tok-12345-secret") {
		t.Fatalf("sensitive header value leaked: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected header mask in logs: %s", out)
	}
}

func TestRedactingLogger_LevelFollowsStatus(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("4xx should log at warn: %s", buf.String())
	}
}
