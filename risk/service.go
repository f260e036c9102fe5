package risk

import (
	"math"
	"sync"
)

// FeatureOrder is the fixed model input column order. Only these 17
// biomarkers are consumed; the rest of the vector is contextual.
var FeatureOrder = []string{
	"fo_mean", "fo_max", "fo_min",
	"jitter_local", "jitter_abs", "jitter_rap", "jitter_ppq5", "jitter_ddp",
	"shimmer_local", "shimmer_db", "shimmer_apq3", "shimmer_apq5", "shimmer_apq11", "shimmer_dda",
	"nhr", "hnr", "ppe",
}

const modelVersion = "GBDT-UCI-v1 (UCI-Parkinsons, Little 2008)"

// hnrQualityFloorDB gates the interpretation text: below this the recording
// is too noisy for the label text to be trustworthy.
const hnrQualityFloorDB = 11.0

const (
	interpretationLow = "Vocal biomarkers are within healthy norms. " +
		"Continue daily monitoring to detect any longitudinal changes."
	interpretationMedium = "Some vocal biomarkers deviate from clinical norms. " +
		"This may indicate early-stage vocal changes consistent with neurological involvement. " +
		"A neurologist consultation is recommended within 4 weeks."
	interpretationHigh = "Multiple vocal biomarkers show significant deviation from healthy norms. " +
		"Patterns are highly consistent with Parkinson's disease or parkinsonian syndrome. " +
		"Urgent neurologist consultation is strongly advised (within 1 week)."
	interpretationNoisy = "Recording quality is low (harmonics-to-noise ratio below 11 dB). " +
		"Background noise may have distorted the acoustic measurements. " +
		"Re-record in a quiet environment before acting on this score."
)

// Assessment is the model output for one biomarker vector.
type Assessment struct {
	ParkinsonProb  float64 `json:"parkinsonProb"`
	RiskScore      float64 `json:"riskScore"`
	RiskLabel      string  `json:"riskLabel"`
	Confidence     float64 `json:"confidence"`
	Prediction     int     `json:"prediction"`
	ModelVersion   string  `json:"modelVersion"`
	Interpretation string  `json:"interpretation"`
}

// Service scores biomarker vectors against a lazily loaded model. The model
// is loaded once and treated as immutable afterwards, so scoring is a pure
// function of the input vector.
type Service struct {
	mu    sync.Mutex
	path  string
	model *Model
}

// NewService returns a scoring service backed by the artifact at path. The
// artifact is not read until the first prediction.
func NewService(path string) *Service {
	return &Service{path: path}
}

func (s *Service) load() (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		return s.model, nil
	}
	model, err := NewModelFromFile(s.path)
	if err != nil {
		return nil, err
	}
	s.model = model
	return model, nil
}

// Predict scores a biomarker map. Missing or non-finite features default to
// zero before vectorization.
func (s *Service) Predict(biomarkers map[string]float64) (*Assessment, error) {
	model, err := s.load()
	if err != nil {
		return nil, err
	}

	vec := make([]float64, len(FeatureOrder))
	for i, key := range FeatureOrder {
		v, ok := biomarkers[key]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0.0
		}
		vec[i] = v
	}

	prob := model.Probability(vec)
	score := round1(prob * 100)
	label := LabelForScore(score)

	interpretation := interpretationFor(label)
	if hnr, ok := biomarkers["hnr"]; ok && hnr < hnrQualityFloorDB {
		interpretation = interpretationNoisy
	}

	prediction := 0
	if prob >= 0.5 {
		prediction = 1
	}

	return &Assessment{
		ParkinsonProb:  math.Round(prob*10000) / 10000,
		RiskScore:      score,
		RiskLabel:      label,
		Confidence:     round1(math.Abs(prob-0.5) * 200),
		Prediction:     prediction,
		ModelVersion:   modelVersion,
		Interpretation: interpretation,
	}, nil
}

// ModelInfo loads the model if needed and reports its version string.
func (s *Service) ModelInfo() (string, error) {
	model, err := s.load()
	if err != nil {
		return "", err
	}
	if model.Version != "" {
		return model.Version, nil
	}
	return modelVersion, nil
}

// LabelForScore maps a 0-100 risk score onto the fixed label bands.
func LabelForScore(score float64) string {
	switch {
	case score < 35:
		return "Low"
	case score < 65:
		return "Medium"
	default:
		return "High"
	}
}

func interpretationFor(label string) string {
	switch label {
	case "Low":
		return interpretationLow
	case "Medium":
		return interpretationMedium
	default:
		return interpretationHigh
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
