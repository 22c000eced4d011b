package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"agentic-xai/internal/agent"
)

func newTestRouter(t *testing.T, cfg Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(t.TempDir(), "decisions.db")
	}
	cfg.SilentDB = true

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = server.Close() })

	router, err := server.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return router
}

func postTask(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/task", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTaskEndToEnd(t *testing.T) {
	router := newTestRouter(t, Config{DisableAI: true})

	rec := postTask(t, router, `{
		"task_description": "Should we migrate to microservices architecture?",
		"context": {"team_size": 10, "current_system": "monolith"}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.TrimSpace(resp.Decision) == "" {
		t.Fatal("empty decision")
	}
	if resp.Confidence < 0.1 || resp.Confidence > 0.95 {
		t.Fatalf("confidence %f outside [0.1, 0.95]", resp.Confidence)
	}
	if resp.Source != agent.SourceFallback {
		t.Fatalf("expected fallback source, got %q", resp.Source)
	}
	if len(resp.Explanation.FeatureImportance) != 2 {
		t.Fatalf("expected 2 importance keys, got %d", len(resp.Explanation.FeatureImportance))
	}
	sum := 0.0
	for _, w := range resp.Explanation.FeatureImportance {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("importance sums to %f", sum)
	}
	if len(resp.Explanation.ReasoningSteps) < 3 {
		t.Fatalf("expected at least 3 reasoning steps, got %d", len(resp.Explanation.ReasoningSteps))
	}
	if resp.DecisionID == "" {
		t.Fatal("missing decision id")
	}
}

func TestTaskValidation(t *testing.T) {
	router := newTestRouter(t, Config{DisableAI: true})

	tests := []struct {
		name string
		body string
	}{
		{"empty task", `{"task_description": "", "context": {}}`},
		{"whitespace task", `{"task_description": "   ", "context": {}}`},
		{"malformed json", `{"task_description": `},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postTask(t, router, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var payload map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if _, ok := payload["error"]; !ok {
				t.Fatalf("missing error field: %s", rec.Body.String())
			}
		})
	}
}

func TestTaskComparisonFallback(t *testing.T) {
	router := newTestRouter(t, Config{DisableAI: true})

	rec := postTask(t, router, `{"task_description": "Compare Python vs Go for our backend", "context": {}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Decision, "Python") || !strings.Contains(resp.Decision, "Go") {
		t.Fatalf("comparison decision must mention both options: %q", resp.Decision)
	}
	if len(resp.Explanation.FeatureImportance) != 0 {
		t.Fatalf("empty context must yield empty importance map, got %d entries", len(resp.Explanation.FeatureImportance))
	}
}

func TestTaskProviderTimeoutFallsBack(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer slow.Close()

	router := newTestRouter(t, Config{
		AIConfig: agent.Config{
			Vendor:  agent.VendorOpenAI,
			APIKey:  "test-key",
			BaseURL: slow.URL,
			Timeout: 50 * time.Millisecond,
		},
	})

	rec := postTask(t, router, `{"task_description": "Should we proceed with the launch?", "context": {"readiness": "high"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("provider timeout must not surface: status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Source != agent.SourceFallback {
		t.Fatalf("expected transparent fallback, got source %q", resp.Source)
	}
	if len(resp.Explanation.ReasoningSteps) < 3 {
		t.Fatalf("fallback explanation incomplete: %v", resp.Explanation.ReasoningSteps)
	}
}

func TestTaskProviderSuccessPath(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content":
			"{\"decision\": \"Proceed with the launch.\", \"confidence\": 0.8, \"reasoning\": [\"readiness is high\", \"risk is bounded\", \"rollback exists\"]}"
		}}]}`))
	}))
	defer remote.Close()

	router := newTestRouter(t, Config{
		AIConfig: agent.Config{
			Vendor:  agent.VendorOpenAI,
			APIKey:  "test-key",
			Model:   "gpt-4o-mini",
			BaseURL: remote.URL,
			Timeout: time.Second,
		},
	})

	rec := postTask(t, router, `{"task_description": "Should we proceed with the launch?", "context": {"readiness": "high"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Source != agent.SourceProvider {
		t.Fatalf("expected provider source, got %q", resp.Source)
	}
	if resp.Decision != "Proceed with the launch." {
		t.Fatalf("unexpected decision %q", resp.Decision)
	}
	if resp.Explanation.ModelDetails.Name != "gpt-4o-mini" {
		t.Fatalf("model details = %+v", resp.Explanation.ModelDetails)
	}
}

func TestDecisionHistory(t *testing.T) {
	router := newTestRouter(t, Config{DisableAI: true})

	rec := postTask(t, router, `{"task_description": "Should we adopt the new vendor?", "context": {"cost_delta": -5}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed task failed: %d", rec.Code)
	}
	var created TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/decisions", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d", listRec.Code)
	}
	var listing DecisionsResponse
	if err := json.Unmarshal(listRec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 1 || len(listing.Items) != 1 {
		t.Fatalf("expected one history row, got total=%d items=%d", listing.Total, len(listing.Items))
	}
	if listing.Items[0].ID != created.DecisionID {
		t.Fatalf("history id %q != response id %q", listing.Items[0].ID, created.DecisionID)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/decisions/"+created.DecisionID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRec.Code)
	}

	missReq := httptest.NewRequest(http.MethodGet, "/api/decisions/does-not-exist", nil)
	missRec := httptest.NewRecorder()
	router.ServeHTTP(missRec, missReq)
	if missRec.Code != http.StatusNotFound {
		t.Fatalf("missing id status = %d, want 404", missRec.Code)
	}
}

func TestHealthAndConfig(t *testing.T) {
	router := newTestRouter(t, Config{DisableAI: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("config status = %d", rec.Code)
	}
	var cfg map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if enabled, ok := cfg["ai_enabled"].(bool); !ok || enabled {
		t.Fatalf("expected ai_enabled=false, got %v", cfg["ai_enabled"])
	}
}
