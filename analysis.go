package main

import (
	"encoding/json"
	"time"

	"voice-screening/clinical"
	"voice-screening/models"
	"voice-screening/risk"
	"voice-screening/voice"
)

// screeningResult is the full output of one analysis run, shared by the HTTP
// handler, the socket handler and the analyze subcommand.
type screeningResult struct {
	Biomarkers    voice.BiomarkerVector  `json:"biomarkers"`
	Estimated     []voice.EstimatedValue `json:"estimated,omitempty"`
	Assessment    *risk.Assessment       `json:"assessment"`
	Findings      []clinical.Finding     `json:"findings"`
	Advisory      *clinical.Advisory     `json:"advisory"`
	Duration      float64                `json:"duration"`
	VoicedFrames  int                    `json:"voicedFrames"`
	RecordingPath string                 `json:"recordingPath,omitempty"`
	LatencyMs     float64                `json:"latencyMs"`
}

// runScreening scores an extraction and assembles the clinical narrative.
func runScreening(svc *risk.Service, extraction *voice.Extraction, started time.Time) (*screeningResult, error) {
	assessment, err := svc.Predict(extraction.Biomarkers)
	if err != nil {
		return nil, err
	}

	findings := clinical.FlagAbnormal(extraction.Biomarkers)
	advisory := clinical.BuildAdvisory(assessment.RiskScore, findings, extraction.Biomarkers)

	return &screeningResult{
		Biomarkers:   extraction.Biomarkers,
		Estimated:    extraction.Estimated,
		Assessment:   assessment,
		Findings:     findings,
		Advisory:     advisory,
		Duration:     extraction.Duration,
		VoicedFrames: extraction.VoicedFrames,
		LatencyMs:    time.Since(started).Seconds() * 1000,
	}, nil
}

// buildSession flattens a screening result into the persisted row shape.
func buildSession(result *screeningResult, patientID string) *models.VoiceSession {
	findingsJSON, _ := json.Marshal(result.Findings)
	advisoryJSON, _ := json.Marshal(result.Advisory)

	return &models.VoiceSession{
		Timestamp:      time.Now(),
		PatientID:      patientID,
		Duration:       result.Duration,
		VoicedFrames:   result.VoicedFrames,
		FoMean:         result.Biomarkers["fo_mean"],
		JitterLocal:    result.Biomarkers["jitter_local"],
		ShimmerLocal:   result.Biomarkers["shimmer_local"],
		HNR:            result.Biomarkers["hnr"],
		PPE:            result.Biomarkers["ppe"],
		Biomarkers:     result.Biomarkers,
		RiskScore:      result.Assessment.RiskScore,
		RiskLabel:      result.Assessment.RiskLabel,
		Confidence:     result.Assessment.Confidence,
		Prediction:     result.Assessment.Prediction,
		ModelVersion:   result.Assessment.ModelVersion,
		Interpretation: result.Assessment.Interpretation,
		ClinicalStage:  result.Advisory.ClinicalStage,
		Findings:       findingsJSON,
		Advisory:       advisoryJSON,
		RecordingPath:  result.RecordingPath,
		LatencyMs:      result.LatencyMs,
	}
}
