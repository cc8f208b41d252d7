package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vivaahlink/vivaah-backend/internal/dedup"
	"github.com/vivaahlink/vivaah-backend/internal/logger"
)

func newTestHandler(t *testing.T) (*WebhookHandler, dedup.Cache) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	cache := dedup.NewMemoryCache(16)
	return NewWebhookHandler(log, "secret-token", cache, nil), cache
}

func newTestRouter(h *WebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	return r
}

func TestVerifyEchoesChallenge(t *testing.T) {
	h, _ := newTestHandler(t)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "12345" {
		t.Fatalf("challenge echo: want=%q got=%q", "12345", w.Body.String())
	}
}

func TestVerifyRejectsBadToken(t *testing.T) {
	h, _ := newTestHandler(t)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status: want=%d got=%d", http.StatusForbidden, w.Code)
	}
}

func TestReceiveIgnoresPayloadWithoutMessages(t *testing.T) {
	h, _ := newTestHandler(t)
	r := newTestRouter(h)

	body := `{"entry":[{"changes":[{"value":{"messages":[]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ignored"`) {
		t.Fatalf("body: want ignored status got=%s", w.Body.String())
	}
}

func TestReceiveSkipsDuplicateMessage(t *testing.T) {
	h, cache := newTestHandler(t)
	r := newTestRouter(h)
	cache.Mark(t.Context(), "wamid.dup")

	body := `{"entry":[{"changes":[{"value":{"messages":[` +
		`{"id":"wamid.dup","from":"911234567890","type":"text","text":{"body":"hello"}}` +
		`]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"duplicate"`) {
		t.Fatalf("body: want duplicate status got=%s", w.Body.String())
	}
}
