package predict

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yourname/studyhabits/internal"
)

// ModelVersion tags the scoring scheme, not a particular artifact build.
const ModelVersion = "2.1"

// Predictor lazily loads the artifact on first use and shares it across
// all subsequent predictions. Load failures are remembered and surfaced
// on every call; there is no invalidation.
type Predictor struct {
	path    string
	once    sync.Once
	model   *Artifact
	loadErr error
}

func NewPredictor(path string) *Predictor {
	return &Predictor{path: path}
}

func (p *Predictor) load() (*Artifact, error) {
	p.once.Do(func() {
		p.model, p.loadErr = Load(p.path)
	})
	return p.model, p.loadErr
}

// Predict scores one session. All four numeric fields must be present;
// validation and model failures come back inside the result, never as
// a raised error.
func (p *Predictor) Predict(input internal.SessionInput) internal.MLResult {
	features, err := featureVector(input)
	if err != nil {
		return internal.MLResult{Error: err.Error()}
	}
	model, err := p.load()
	if err != nil {
		return internal.MLResult{Error: err.Error()}
	}
	score := model.Predict(features)
	return internal.MLResult{RiskScore: &score, ModelVersion: ModelVersion}
}

func featureVector(input internal.SessionInput) ([]float64, error) {
	var missing []string
	if input.StudyHours == nil {
		missing = append(missing, "study_hours")
	}
	if input.SleepHours == nil {
		missing = append(missing, "sleep_hours")
	}
	if input.BreakFrequency == nil {
		missing = append(missing, "break_frequency")
	}
	if input.ConcentrationLevel == nil {
		missing = append(missing, "concentration_level")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required input fields: %s", strings.Join(missing, ", "))
	}
	return []float64{
		*input.StudyHours,
		*input.SleepHours,
		float64(*input.BreakFrequency),
		float64(*input.ConcentrationLevel),
	}, nil
}
