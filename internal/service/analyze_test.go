package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yourname/studyhabits/internal"
	"github.com/yourname/studyhabits/internal/storage"
)

type stubPredictor struct {
	result internal.MLResult
}

func (s stubPredictor) Predict(internal.SessionInput) internal.MLResult { return s.result }

type stubAdvisor struct {
	text string
	err  error
}

func (s stubAdvisor) Advise(context.Context, internal.SessionInput, internal.RuleResult, internal.MLResult) (string, error) {
	return s.text, s.err
}

type failingRepo struct{}

func (failingRepo) AppendSession(context.Context, *internal.StudySession) error {
	return errors.New("database unreachable")
}
func (failingRepo) ListSessions(context.Context, string, internal.Window) ([]internal.StudySession, error) {
	return nil, errors.New("database unreachable")
}
func (failingRepo) ClearSessions(context.Context, string, internal.Window) (int64, error) {
	return 0, errors.New("database unreachable")
}
func (failingRepo) DistinctUsernames(context.Context) ([]string, error) {
	return nil, errors.New("database unreachable")
}
func (failingRepo) Close() error { return nil }

func testLogger() internal.Logger {
	return internal.NewZapLogger(zap.NewNop().Sugar())
}

func testStore(t *testing.T) storage.SessionRepository {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "sessions.json"), testLogger())
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func fullRequest(username string) *AnalyzeRequest {
	return &AnalyzeRequest{
		Username:           username,
		StudyHours:         fp(10),
		SleepHours:         fp(4),
		BreakFrequency:     ip(10),
		ConcentrationLevel: ip(1),
	}
}

func TestAnalyzeAppendsCriticalRecommendation(t *testing.T) {
	store := testStore(t)
	result, err := AnalyzeSession(context.Background(), store, stubPredictor{internal.MLResult{RiskScore: fp(85), ModelVersion: "2.1"}}, stubAdvisor{text: "Rest up."}, testLogger(), fullRequest("alice"))
	assert.NoError(t, err)

	assert.Contains(t, result.Recommendations, "Critical burnout risk (85.0%). Consider immediate rest and consultation.")
	assert.Equal(t, "Rest up.", result.Advice)
	assert.Equal(t, internal.RiskLevelHigh, result.Session.RiskLevel)

	sessions, err := store.ListSessions(context.Background(), "alice", internal.WindowAll)
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, result.Session.ID, sessions[0].ID)
	assert.Equal(t, 10.0, sessions[0].StudyHours)
	assert.Equal(t, 85.0, *sessions[0].RiskScore)
}

func TestAnalyzeAppendsHighRiskRecommendation(t *testing.T) {
	result, err := AnalyzeSession(context.Background(), testStore(t), stubPredictor{internal.MLResult{RiskScore: fp(60), ModelVersion: "2.1"}}, stubAdvisor{text: "ok"}, testLogger(), fullRequest("alice"))
	assert.NoError(t, err)

	assert.Contains(t, result.Recommendations, "High burnout risk (60.0%). Schedule downtime soon.")
	assert.NotContains(t, result.Recommendations, "Critical burnout risk (60.0%). Consider immediate rest and consultation.")
}

func TestAnalyzeModerateScoreAddsNothing(t *testing.T) {
	result, err := AnalyzeSession(context.Background(), testStore(t), stubPredictor{internal.MLResult{RiskScore: fp(45), ModelVersion: "2.1"}}, stubAdvisor{text: "ok"}, testLogger(), fullRequest("alice"))
	assert.NoError(t, err)

	for _, rec := range result.Recommendations {
		assert.NotContains(t, rec, "burnout risk (45.0%)")
	}
}

func TestAnalyzePredictionFailureDegrades(t *testing.T) {
	store := testStore(t)
	result, err := AnalyzeSession(context.Background(), store, stubPredictor{internal.MLResult{Error: "model artifact unavailable"}}, stubAdvisor{text: "ok"}, testLogger(), fullRequest("alice"))
	assert.NoError(t, err)

	assert.Nil(t, result.MLPrediction.RiskScore)
	assert.NotEmpty(t, result.MLPrediction.Error)
	assert.Nil(t, result.Session.RiskScore)
	assert.Equal(t, internal.RiskLevelLow, result.Session.RiskLevel)

	sessions, err := store.ListSessions(context.Background(), "alice", internal.WindowAll)
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].RiskScore)
}

func TestAnalyzeAdviceFailureFallsBack(t *testing.T) {
	result, err := AnalyzeSession(context.Background(), testStore(t), stubPredictor{internal.MLResult{RiskScore: fp(20), ModelVersion: "2.1"}}, stubAdvisor{err: errors.New("timeout")}, testLogger(), fullRequest("alice"))
	assert.NoError(t, err)
	assert.Equal(t, adviceFallback, result.Advice)
}

func TestAnalyzeStoreFailureIsFatal(t *testing.T) {
	_, err := AnalyzeSession(context.Background(), failingRepo{}, stubPredictor{internal.MLResult{RiskScore: fp(20), ModelVersion: "2.1"}}, stubAdvisor{text: "ok"}, testLogger(), fullRequest("alice"))
	assert.Error(t, err)
}

func TestDedupeKeepsFirstOccurrenceOrder(t *testing.T) {
	got := dedupe([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
