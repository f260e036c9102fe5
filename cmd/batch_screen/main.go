package main

// Batch screening / evaluation tool. Points at a directory whose
// subdirectories are labelled cohorts (e.g. healthy/ and parkinson/), runs
// the full extraction and scoring pipeline over every recording, and reports
// per-cohort accuracy against the model's binary prediction.

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voice-screening/risk"
	"voice-screening/voice"
)

type EvaluationConfig struct {
	ModelPath  string
	DataDir    string
	ReportPath string
	Verbose    bool
}

type CohortMetrics struct {
	Cohort        string
	Expected      int
	TotalSamples  int
	Processed     int
	CorrectCount  int
	Accuracy      float64
	AvgRiskScore  float64
	AvgConfidence float64
	Misclassified []MisclassificationInfo
}

type MisclassificationInfo struct {
	Filename   string
	Expected   int
	Prediction int
	RiskScore  float64
}

type EvaluationReport struct {
	Timestamp       time.Time
	ModelPath       string
	TotalSamples    int
	CorrectCount    int
	OverallAccuracy float64
	CohortMetrics   []CohortMetrics
	Skipped         []string
	ProcessingTime  time.Duration
}

func main() {
	config := parseFlags()

	log.SetFlags(log.Ldate | log.Ltime)
	log.Println("=== Batch Screening Evaluation ===")
	log.Printf("Model: %s\n", config.ModelPath)
	log.Printf("Data: %s\n", config.DataDir)
	log.Println()

	svc := risk.NewService(config.ModelPath)
	version, err := svc.ModelInfo()
	if err != nil {
		log.Fatalf("ERROR: Failed to load model: %v", err)
	}
	log.Printf("Loaded risk model: %s\n", version)
	log.Println()

	subdirs, err := discoverSubdirectories(config.DataDir)
	if err != nil {
		log.Fatalf("ERROR: Failed to read data directory: %v", err)
	}
	if len(subdirs) == 0 {
		log.Fatalf("ERROR: No cohort subdirectories under %s", config.DataDir)
	}
	log.Printf("Found %d cohorts to evaluate\n", len(subdirs))
	log.Println()

	report := evaluateCohorts(svc, subdirs, config)
	printEvaluationReport(report)

	if config.ReportPath != "" {
		if err := saveReport(report, config.ReportPath); err != nil {
			log.Printf("WARNING: Failed to save report: %v\n", err)
		} else {
			log.Printf("\nReport saved to: %s\n", config.ReportPath)
		}
	}
}

func parseFlags() EvaluationConfig {
	config := EvaluationConfig{}

	flag.StringVar(&config.ModelPath, "model", filepath.Join("risk", "parkinson_model.json"),
		"Path to the risk model artifact")
	flag.StringVar(&config.DataDir, "data-dir", "screening-data",
		"Directory containing cohort subdirectories of recordings")
	flag.StringVar(&config.ReportPath, "report", "evaluation_report.json",
		"Path to save evaluation report (empty to skip)")
	flag.BoolVar(&config.Verbose, "verbose", false,
		"Enable verbose logging")

	flag.Parse()

	return config
}

func discoverSubdirectories(rootDir string) ([]string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, err
	}

	var subdirs []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		subdirs = append(subdirs, filepath.Join(rootDir, entry.Name()))
	}

	return subdirs, nil
}

// expectedPrediction infers the cohort's ground-truth class from its
// directory name.
func expectedPrediction(dir string) int {
	name := strings.ToLower(filepath.Base(dir))
	if strings.Contains(name, "park") || strings.Contains(name, "pd") || strings.Contains(name, "patient") {
		return 1
	}
	return 0
}

func evaluateCohorts(svc *risk.Service, subdirs []string, config EvaluationConfig) EvaluationReport {
	report := EvaluationReport{
		Timestamp: time.Now(),
		ModelPath: config.ModelPath,
	}

	for _, subdir := range subdirs {
		metrics := evaluateCohort(svc, subdir, config, &report)
		report.CohortMetrics = append(report.CohortMetrics, metrics)
		report.TotalSamples += metrics.Processed
		report.CorrectCount += metrics.CorrectCount
	}

	if report.TotalSamples > 0 {
		report.OverallAccuracy = float64(report.CorrectCount) / float64(report.TotalSamples) * 100
	}
	report.ProcessingTime = time.Since(report.Timestamp)

	return report
}

func evaluateCohort(svc *risk.Service, cohortDir string, config EvaluationConfig, report *EvaluationReport) CohortMetrics {
	metrics := CohortMetrics{
		Cohort:   filepath.Base(cohortDir),
		Expected: expectedPrediction(cohortDir),
	}

	files, err := collectAudioFiles(cohortDir)
	if err != nil {
		log.Printf("WARNING: Failed to read directory %s: %v\n", cohortDir, err)
		return metrics
	}
	if len(files) == 0 {
		log.Printf("WARNING: No audio files in %s\n", cohortDir)
		return metrics
	}

	var riskSum, confidenceSum float64
	for _, filePath := range files {
		metrics.TotalSamples++

		extraction, err := voice.ExtractBiomarkersFromFile(filePath)
		if err != nil {
			if voice.IsInputQualityError(err) {
				report.Skipped = append(report.Skipped, filePath)
				if config.Verbose {
					log.Printf("  SKIP %s: %v\n", filepath.Base(filePath), err)
				}
				continue
			}
			log.Printf("  ERROR processing %s: %v\n", filepath.Base(filePath), err)
			continue
		}

		assessment, err := svc.Predict(extraction.Biomarkers)
		if err != nil {
			log.Printf("  ERROR scoring %s: %v\n", filepath.Base(filePath), err)
			continue
		}

		metrics.Processed++
		riskSum += assessment.RiskScore
		confidenceSum += assessment.Confidence

		if assessment.Prediction == metrics.Expected {
			metrics.CorrectCount++
		} else {
			metrics.Misclassified = append(metrics.Misclassified, MisclassificationInfo{
				Filename:   filepath.Base(filePath),
				Expected:   metrics.Expected,
				Prediction: assessment.Prediction,
				RiskScore:  assessment.RiskScore,
			})
		}

		if config.Verbose {
			log.Printf("  %s: score=%.1f label=%s\n",
				filepath.Base(filePath), assessment.RiskScore, assessment.RiskLabel)
		}
	}

	if metrics.Processed > 0 {
		metrics.Accuracy = float64(metrics.CorrectCount) / float64(metrics.Processed) * 100
		metrics.AvgRiskScore = riskSum / float64(metrics.Processed)
		metrics.AvgConfidence = confidenceSum / float64(metrics.Processed)
	}

	return metrics
}

func collectAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".wav", ".mp3", ".webm", ".m4a", ".ogg", ".flac":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

func printEvaluationReport(report EvaluationReport) {
	log.Println()
	log.Println("=== Evaluation Results ===")
	log.Printf("Samples scored: %d\n", report.TotalSamples)
	log.Printf("Overall accuracy: %.1f%%\n", report.OverallAccuracy)
	if len(report.Skipped) > 0 {
		log.Printf("Skipped (input quality): %d\n", len(report.Skipped))
	}
	log.Println()

	for _, m := range report.CohortMetrics {
		log.Printf("%s (expected class %d): %d/%d correct (%.1f%%), mean score %.1f, mean confidence %.1f\n",
			m.Cohort, m.Expected, m.CorrectCount, m.Processed, m.Accuracy,
			m.AvgRiskScore, m.AvgConfidence)
		for _, mc := range m.Misclassified {
			log.Printf("    missed %s: predicted %d (score %.1f)\n", mc.Filename, mc.Prediction, mc.RiskScore)
		}
	}

	log.Println()
	verdict := "NEEDS REVIEW"
	if report.OverallAccuracy >= 80 && report.TotalSamples >= 10 {
		verdict = "ACCEPTABLE"
	}
	if math.IsNaN(report.OverallAccuracy) || report.TotalSamples == 0 {
		verdict = "NO DATA"
	}
	fmt.Printf("Verdict: %s\n", verdict)
}

func saveReport(report EvaluationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
