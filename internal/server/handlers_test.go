package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/newsmood/internal/analysis"
	"github.com/spacesedan/newsmood/internal/models"
	"github.com/spacesedan/newsmood/internal/sentiment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(c sentiment.Classifier, opts Options) *gin.Engine {
	svc := analysis.NewService(c, sentiment.NewLabelMapper(sentiment.English), sentiment.DEFAULT_MAX_INPUT_CHARS)
	return NewRouter(svc, opts)
}

func fixedLabel(label string) sentiment.Classifier {
	return sentiment.ClassifierFunc(func(ctx context.Context, text string) (models.Prediction, error) {
		return models.Prediction{Label: label, Score: 0.99}, nil
	})
}

func postAnalyze(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not a JSON object: %v (%s)", err, w.Body.String())
	}
	return out
}

func TestAnalyzeSuccess(t *testing.T) {
	r := newTestRouter(fixedLabel("positive"), Options{})

	w := postAnalyze(t, r, `[{"id":1,"title":"T","summary":"great news"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if want := `[{"id":1,"title":"T","sentiment":"positive"}]`; w.Body.String() != want {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestAnalyzeNotAList(t *testing.T) {
	r := newTestRouter(fixedLabel("positive"), Options{})

	w := postAnalyze(t, r, `{"not":"a list"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeObject(t, w)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "invalid article list format") {
		t.Errorf("unexpected error message %q", msg)
	}
	if _, ok := body["missing_fields"]; ok {
		t.Error("structural errors should not report missing fields")
	}
}

func TestAnalyzeRejectsInvalidUTF8(t *testing.T) {
	r := newTestRouter(fixedLabel("positive"), Options{})

	w := postAnalyze(t, r, "[{\"id\":1,\"title\":\"bad\xff\",\"summary\":\"x\"}]")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !utf8.Valid(w.Body.Bytes()) {
		t.Error("response body is not valid UTF-8")
	}
}

func TestAnalyzeMissingSummary(t *testing.T) {
	r := newTestRouter(fixedLabel("positive"), Options{})

	w := postAnalyze(t, r, `[{"id":1,"title":"T"}]`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body models.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ArticleIndex != 0 {
		t.Errorf("article_index = %d, want 0", body.ArticleIndex)
	}
	if len(body.MissingFields) != 1 || body.MissingFields[0] != "summary" {
		t.Errorf("missing_fields = %v, want [summary]", body.MissingFields)
	}
	if body.Error == "" {
		t.Error("expected an error message")
	}
}

func TestAnalyzeArticleIndexIsAlwaysPresent(t *testing.T) {
	r := newTestRouter(fixedLabel("positive"), Options{})

	w := postAnalyze(t, r, `[{"title":"T","summary":"s"}]`)
	body := decodeObject(t, w)
	if idx, ok := body["article_index"]; !ok || idx != float64(0) {
		t.Errorf("article_index = %v (present %v), want 0", idx, ok)
	}
}

func TestAnalyzeEmptySummaryIsNeutral(t *testing.T) {
	var calls atomic.Int32
	c := sentiment.ClassifierFunc(func(ctx context.Context, text string) (models.Prediction, error) {
		calls.Add(1)
		return models.Prediction{Label: "positive"}, nil
	})
	r := newTestRouter(c, Options{})

	w := postAnalyze(t, r, `[{"id":1,"title":"T","summary":""}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if want := `[{"id":1,"title":"T","sentiment":"neutral"}]`; w.Body.String() != want {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
	if calls.Load() != 0 {
		t.Errorf("classifier called %d times", calls.Load())
	}
}

func TestAnalyzeClassifierFailureIsOpaque(t *testing.T) {
	c := sentiment.ClassifierFunc(func(ctx context.Context, text string) (models.Prediction, error) {
		return models.Prediction{}, errors.New("tensor shape mismatch at layer 7")
	})
	r := newTestRouter(c, Options{})

	w := postAnalyze(t, r, `[{"id":1,"title":"T","summary":"boom"}]`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeObject(t, w)
	if body["error"] != analysis.MSG_INTERNAL {
		t.Errorf("unexpected error message %v", body["error"])
	}
	if strings.Contains(w.Body.String(), "tensor") {
		t.Error("internal detail leaked into the response")
	}
}

func TestAnalyzeClassifierPanicIsRecovered(t *testing.T) {
	c := sentiment.ClassifierFunc(func(ctx context.Context, text string) (models.Prediction, error) {
		panic("nil tokenizer")
	})
	r := newTestRouter(c, Options{})

	w := postAnalyze(t, r, `[{"id":1,"title":"T","summary":"boom"}]`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeObject(t, w)
	if body["error"] != analysis.MSG_INTERNAL {
		t.Errorf("unexpected error message %v", body["error"])
	}
	if strings.Contains(w.Body.String(), "tokenizer") || strings.Contains(w.Body.String(), "goroutine") {
		t.Error("panic detail leaked into the response")
	}
}

func TestAnalyzeOnlyAcceptsPost(t *testing.T) {
	r := newTestRouter(fixedLabel("positive"), Options{})

	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code == http.StatusOK {
		t.Errorf("GET /analyze should not succeed")
	}
	decodeObject(t, w)
}

func TestHealthz(t *testing.T) {
	healthy := &atomic.Bool{}
	healthy.Store(true)
	r := newTestRouter(fixedLabel("positive"), Options{Backend: "vader", Healthy: healthy})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeObject(t, w)
	if body["ok"] != true || body["backend"] != "vader" {
		t.Errorf("unexpected body %v", body)
	}

	healthy.Store(false)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when unhealthy, got %d", w.Code)
	}
}
