package predict

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/studyhabits/internal"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func fullInput() internal.SessionInput {
	return internal.SessionInput{
		Username:           "alice",
		StudyHours:         fp(10),
		SleepHours:         fp(4),
		BreakFrequency:     ip(10),
		ConcentrationLevel: ip(1),
	}
}

func trainSmallModel(t *testing.T, path string) *Artifact {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	samples := GenerateTrainingData(2000, rng)
	model := TrainForest(samples, TrainConfig{Trees: 20, MaxDepth: 5, MinLeaf: 5}, rng)
	require.NoError(t, model.Save(path))
	return model
}

func TestPredictMissingFieldsListsThem(t *testing.T) {
	p := NewPredictor(filepath.Join(t.TempDir(), "model.json"))

	result := p.Predict(internal.SessionInput{Username: "alice", StudyHours: fp(5)})
	assert.Nil(t, result.RiskScore)
	assert.Empty(t, result.ModelVersion)
	assert.Equal(t, "missing required input fields: sleep_hours, break_frequency, concentration_level", result.Error)
}

func TestPredictModelMissing(t *testing.T) {
	p := NewPredictor(filepath.Join(t.TempDir(), "missing.json"))

	result := p.Predict(fullInput())
	assert.Nil(t, result.RiskScore)
	assert.Contains(t, result.Error, ErrModelUnavailable.Error())
}

func TestPredictTrainedModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	trainSmallModel(t, path)

	p := NewPredictor(path)
	result := p.Predict(fullInput())
	require.Empty(t, result.Error)
	require.NotNil(t, result.RiskScore)
	assert.Equal(t, ModelVersion, result.ModelVersion)

	// 10h study on 4h sleep with few breaks and no focus should score
	// far above a balanced day.
	relaxed := p.Predict(internal.SessionInput{
		Username:           "bob",
		StudyHours:         fp(3),
		SleepHours:         fp(8),
		BreakFrequency:     ip(45),
		ConcentrationLevel: ip(5),
	})
	require.Empty(t, relaxed.Error)
	require.NotNil(t, relaxed.RiskScore)
	assert.Greater(t, *result.RiskScore, *relaxed.RiskScore)
	assert.Greater(t, *result.RiskScore, 60.0)
	assert.Less(t, *relaxed.RiskScore, 40.0)
}

func TestLoadRejectsCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoadRejectsBadTreeStructure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	a := &Artifact{
		SchemaVersion: 1,
		Features:      append([]string(nil), FeatureNames...),
		// Internal node pointing at itself.
		Trees: []Tree{{Nodes: []Node{{Feature: 0, Threshold: 1, Left: 0, Right: 0}}}},
	}
	require.NoError(t, a.Save(path))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	model := trainSmallModel(t, path)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, model.Features, loaded.Features)
	require.Len(t, loaded.Trees, len(model.Trees))

	features := []float64{10, 4, 10, 1}
	assert.InDelta(t, model.Predict(features), loaded.Predict(features), 1e-9)
}

func TestForestFitsSyntheticData(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := GenerateTrainingData(5000, rng)
	split := len(data) * 8 / 10
	model := TrainForest(data[:split], TrainConfig{Trees: 30, MaxDepth: 5, MinLeaf: 5}, rng)

	_, r2 := Evaluate(model, data[split:])
	assert.Greater(t, r2, 0.8, "forest should explain most of the variance")
}
