package models

import (
	"encoding/json"
	"time"
)

type RecordData struct {
	Audio      string  `json:"audio"`
	Duration   float64 `json:"duration"`
	Channels   int     `json:"channels"`
	SampleRate int     `json:"sampleRate"`
	SampleSize int     `json:"sampleSize"`
	PatientID  string  `json:"patientId,omitempty"`
}

// VoiceSession is one stored screening run: the acoustic measurements, the
// model output, and the clinical summary generated from them.
type VoiceSession struct {
	ID             int64              `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	PatientID      string             `json:"patientId,omitempty"`
	Duration       float64            `json:"duration"`
	VoicedFrames   int                `json:"voicedFrames"`
	FoMean         float64            `json:"foMean"`
	JitterLocal    float64            `json:"jitterLocal"`
	ShimmerLocal   float64            `json:"shimmerLocal"`
	HNR            float64            `json:"hnr"`
	PPE            float64            `json:"ppe"`
	Biomarkers     map[string]float64 `json:"biomarkers"`
	RiskScore      float64            `json:"riskScore"`
	RiskLabel      string             `json:"riskLabel"`
	Confidence     float64            `json:"confidence"`
	Prediction     int                `json:"prediction"`
	ModelVersion   string             `json:"modelVersion"`
	Interpretation string             `json:"interpretation"`
	ClinicalStage  string             `json:"clinicalStage,omitempty"`
	Findings       json.RawMessage    `json:"findings,omitempty"`
	Advisory       json.RawMessage    `json:"advisory,omitempty"`
	RecordingPath  string             `json:"recordingPath,omitempty"`
	LatencyMs      float64            `json:"latencyMs"`
}

// AnalysisSummary is the compact per-session row returned by list queries.
type AnalysisSummary struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	PatientID string    `json:"patientId,omitempty"`
	RiskScore float64   `json:"riskScore"`
	RiskLabel string    `json:"riskLabel"`
}
