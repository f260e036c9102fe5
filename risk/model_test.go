package risk

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

// healthyBiomarkers is a vector typical of an unimpaired sustained vowel.
func healthyBiomarkers() map[string]float64 {
	return map[string]float64{
		"fo_mean": 154.0, "fo_max": 180.0, "fo_min": 130.0,
		"jitter_local": 0.003, "jitter_abs": 0.00002, "jitter_rap": 0.002,
		"jitter_ppq5": 0.002, "jitter_ddp": 0.006,
		"shimmer_local": 0.02, "shimmer_db": 0.18, "shimmer_apq3": 0.01,
		"shimmer_apq5": 0.012, "shimmer_apq11": 0.015, "shimmer_dda": 0.03,
		"nhr": 0.02, "hnr": 24.0, "ppe": 0.15,
	}
}

// pathologicalBiomarkers shows the perturbation pattern of parkinsonian
// speech. HNR is kept above the quality floor so label text is exercised.
func pathologicalBiomarkers() map[string]float64 {
	return map[string]float64{
		"fo_mean": 145.0, "fo_max": 210.0, "fo_min": 95.0,
		"jitter_local": 0.012, "jitter_abs": 0.0001, "jitter_rap": 0.008,
		"jitter_ppq5": 0.007, "jitter_ddp": 0.024,
		"shimmer_local": 0.06, "shimmer_db": 0.5, "shimmer_apq3": 0.03,
		"shimmer_apq5": 0.035, "shimmer_apq11": 0.045, "shimmer_dda": 0.09,
		"nhr": 0.08, "hnr": 12.0, "ppe": 0.35,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	// Resolves to the bundled example artifact via the fallback path.
	return NewService(filepath.Join(".", "parkinson_model.json"))
}

func TestPredictHealthyVector(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	assessment, err := svc.Predict(healthyBiomarkers())
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}

	if assessment.RiskLabel != "Low" {
		t.Errorf("risk label = %q, want Low (score %.1f)", assessment.RiskLabel, assessment.RiskScore)
	}
	if math.Abs(assessment.RiskScore-6.6) > 0.05 {
		t.Errorf("risk score = %.2f, want 6.6", assessment.RiskScore)
	}
	if math.Abs(assessment.Confidence-86.8) > 0.05 {
		t.Errorf("confidence = %.2f, want 86.8", assessment.Confidence)
	}
	if assessment.Prediction != 0 {
		t.Errorf("prediction = %d, want 0", assessment.Prediction)
	}
	if !strings.Contains(assessment.Interpretation, "within healthy norms") {
		t.Errorf("unexpected interpretation: %q", assessment.Interpretation)
	}
}

func TestPredictPathologicalVector(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	assessment, err := svc.Predict(pathologicalBiomarkers())
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}

	if assessment.RiskLabel != "High" {
		t.Errorf("risk label = %q, want High (score %.1f)", assessment.RiskLabel, assessment.RiskScore)
	}
	if math.Abs(assessment.RiskScore-95.7) > 0.05 {
		t.Errorf("risk score = %.2f, want 95.7", assessment.RiskScore)
	}
	if math.Abs(assessment.Confidence-91.4) > 0.05 {
		t.Errorf("confidence = %.2f, want 91.4", assessment.Confidence)
	}
	if assessment.Prediction != 1 {
		t.Errorf("prediction = %d, want 1", assessment.Prediction)
	}
	if !strings.Contains(assessment.Interpretation, "Urgent neurologist consultation") {
		t.Errorf("unexpected interpretation: %q", assessment.Interpretation)
	}
}

func TestPredictDeterministic(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	first, err := svc.Predict(pathologicalBiomarkers())
	if err != nil {
		t.Fatalf("first Predict failed: %v", err)
	}
	second, err := svc.Predict(pathologicalBiomarkers())
	if err != nil {
		t.Fatalf("second Predict failed: %v", err)
	}
	if *first != *second {
		t.Errorf("identical input produced different assessments: %+v vs %+v", first, second)
	}
}

func TestPredictNoisyRecordingOverride(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	bio := pathologicalBiomarkers()
	bio["hnr"] = 8.0

	assessment, err := svc.Predict(bio)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if !strings.Contains(assessment.Interpretation, "Recording quality is low") {
		t.Errorf("low HNR should override interpretation, got %q", assessment.Interpretation)
	}
	// The score itself is untouched; only the narrative changes.
	if assessment.RiskLabel == "" {
		t.Error("risk label should still be assigned")
	}
}

func TestPredictMissingFeaturesDefaultToZero(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	assessment, err := svc.Predict(map[string]float64{"hnr": math.NaN()})
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if assessment.ParkinsonProb < 0 || assessment.ParkinsonProb > 1 {
		t.Errorf("probability out of range: %g", assessment.ParkinsonProb)
	}
}

func TestLabelForScoreBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  string
	}{
		{0, "Low"},
		{34.9, "Low"},
		{35.0, "Medium"},
		{64.9, "Medium"},
		{65.0, "High"},
		{100, "High"},
	}
	for _, c := range cases {
		if got := LabelForScore(c.score); got != c.want {
			t.Errorf("LabelForScore(%.1f) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestNewModelFromFileMissingArtifact(t *testing.T) {
	t.Parallel()

	_, err := NewModelFromFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestNewModelFromFileExampleFallback(t *testing.T) {
	t.Parallel()

	model, err := NewModelFromFile("parkinson_model.json")
	if err != nil {
		t.Fatalf("fallback load failed: %v", err)
	}
	if len(model.Features) != len(FeatureOrder) {
		t.Fatalf("artifact lists %d features, want %d", len(model.Features), len(FeatureOrder))
	}
	for i, key := range FeatureOrder {
		if model.Features[i] != key {
			t.Errorf("feature %d = %q, want %q", i, model.Features[i], key)
		}
	}
}
