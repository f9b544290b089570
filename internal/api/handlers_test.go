package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/advice"
	"github.com/yourname/studyhabits/internal/service"
	"github.com/yourname/studyhabits/internal/storage"
)

type testApp struct {
	logger   internal.Logger
	sessions storage.SessionRepository
}

func (a *testApp) Logger() internal.Logger             { return a.logger }
func (a *testApp) Sessions() storage.SessionRepository { return a.sessions }
func (a *testApp) Predictor() service.RiskPredictor    { return fixedPredictor{} }
func (a *testApp) Coach() advice.Advisor               { return fixedAdvisor{} }

type fixedPredictor struct{}

func (fixedPredictor) Predict(internal.SessionInput) internal.MLResult {
	score := 85.0
	return internal.MLResult{RiskScore: &score, ModelVersion: "2.1"}
}

type fixedAdvisor struct{}

func (fixedAdvisor) Advise(context.Context, internal.SessionInput, internal.RuleResult, internal.MLResult) (string, error) {
	return "Take it easy.", nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "sessions.json"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewRouter(&testApp{logger: logger, sessions: store}, "http://localhost:3000")
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

const analyzeBody = `{"username":"alice","study_hours":10,"sleep_hours":4,"break_frequency":10,"concentration_level":1}`

func TestPostAnalyzeSuccess(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/analyze", analyzeBody)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)

	ml, ok := data["ml_prediction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 85.0, ml["risk_score"])
	assert.Equal(t, "2.1", ml["model_version"])

	rule, ok := data["rule_based_analysis"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, rule["warnings"])

	recs, ok := data["recommendations"].([]any)
	require.True(t, ok)
	assert.Contains(t, recs, "Critical burnout risk (85.0%). Consider immediate rest and consultation.")

	assert.Equal(t, "Take it easy.", data["advice"])

	session, ok := data["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", session["username"])
	assert.Equal(t, "high", session["risk_level"])
}

func TestPostAnalyzeRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/analyze", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.NotNil(t, envelope["error"])
}

func TestPostAnalyzeRequiresUsername(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/analyze", `{"study_hours":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostAnalyzeRejectsConcentrationOutOfRange(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/analyze", `{"username":"alice","concentration_level":6}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistoryRequiresUsername(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistoryRejectsUnknownRange(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/history?username=alice&range=fortnight", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeHistoryClearFlow(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 2; i++ {
		w := doRequest(router, http.MethodPost, "/analyze", analyzeBody)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/history?username=alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	meta := envelope["meta"].(map[string]any)
	assert.Equal(t, "alice", meta["username"])
	assert.Equal(t, 2.0, meta["count"])
	sessions := envelope["data"].([]any)
	require.Len(t, sessions, 2)

	w = doRequest(router, http.MethodDelete, "/clear-history?username=alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	envelope = decodeEnvelope(t, w)
	meta = envelope["meta"].(map[string]any)
	assert.Equal(t, 2.0, meta["deleted_count"])
	assert.Equal(t, "all", meta["range"])

	w = doRequest(router, http.MethodGet, "/history?username=alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	envelope = decodeEnvelope(t, w)
	meta = envelope["meta"].(map[string]any)
	assert.Equal(t, 0.0, meta["count"])
}

func TestClearHistoryRequiresUsername(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodDelete, "/clear-history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUsernames(t *testing.T) {
	router := newTestRouter(t)

	for _, body := range []string{
		`{"username":"carol"}`,
		`{"username":"alice"}`,
		`{"username":"bob"}`,
	} {
		w := doRequest(router, http.MethodPost, "/analyze", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/usernames", "")
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, []any{"alice", "bob", "carol"}, envelope["data"])
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodOptions, "/history", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
