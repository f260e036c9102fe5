package clinical

import "fmt"

// EstimateStage maps the 0-100 risk score, refined by the abnormal-range
// findings, onto a Hoehn & Yahr style stage with a data-driven rationale.
// Ten-point bands keep the granularity of the score visible in the staging.
func EstimateStage(riskScore float64, findings []Finding) (code, description string) {
	flagCount := len(findings)
	highJitter := false
	for _, f := range findings {
		if f.Key == "jitter_local" && f.Severity == "High" {
			highJitter = true
		}
	}

	switch {
	case riskScore <= 10:
		return "Healthy",
			"Vocal biomarkers are in the 90th percentile of health. No neurological tremors or micro-instabilities detected."
	case riskScore <= 20:
		return "Optimal",
			"Strong vocal fold closure and stable fundamental frequency. Performance is characteristic of a healthy neurological profile."
	case riskScore <= 30:
		return "Subclinical (Low)",
			"Slight variances detected in vocal periodicity. These are likely physiological 'noise' rather than clinical indicators."
	case riskScore <= 40:
		return "Subclinical (Observation)",
			"Minor micro-tremors detected. While not diagnostic, longitudinal tracking is recommended to establish a baseline."
	case riskScore <= 50:
		reason := "Initial unilateral vocal instability detected. Stability is decreasing slightly."
		if highJitter {
			reason = "Initial unilateral vocal instability detected. High Jitter suggests early laryngeal tremor."
		}
		return "H&Y Stage 1 (Initial)", reason
	case riskScore <= 60:
		return "H&Y Stage 1.5 (Progressing)",
			"Emerging bilateral vocal involvement. Increased signal complexity detected in phonation samples."
	case riskScore <= 70:
		return "H&Y Stage 2 (Early-Mid)",
			fmt.Sprintf("Bilateral vocal symptoms identified with %d abnormal markers. Hypophonia (reduced volume) may be present.", flagCount)
	case riskScore <= 80:
		return "H&Y Stage 2 (Mid-Mid)",
			"Significant vocal instability. Fundamental frequency range is narrowing, a hallmark of parkinsonian 'monotone' speech."
	case riskScore <= 90:
		return "H&Y Stage 2.5 (Established)",
			"High clinical suspicion. Significant vocal leakage and tremors. Protective reflexes for speech may be compromised."
	default:
		return "H&Y Stage 3+ (Advanced)",
			"Urgent: Severe dysarthria detected. Vocal indicators suggest postural instability risk and significant mid-stage progression."
	}
}
