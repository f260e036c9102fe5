package clinical

import (
	"math"
	"strings"
	"testing"
)

func normalBiomarkers() map[string]float64 {
	return map[string]float64{
		"fo_mean": 150.0, "jitter_local": 0.005, "jitter_abs": 0.00003,
		"shimmer_local": 0.02, "shimmer_db": 0.2, "hnr": 24.0,
		"nhr": 0.02, "ppe": 0.12, "tremor_energy": 0.05,
	}
}

func TestFlagAbnormalAllNormal(t *testing.T) {
	t.Parallel()

	findings := FlagAbnormal(normalBiomarkers())
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %d: %+v", len(findings), findings)
	}
}

func TestFlagAbnormalSkipsMissingKeys(t *testing.T) {
	t.Parallel()

	findings := FlagAbnormal(map[string]float64{"mfcc_1": 999})
	if len(findings) != 0 {
		t.Fatalf("biomarkers outside the reference table must not be flagged, got %+v", findings)
	}
}

func TestFlagAbnormalSeverityAndOrder(t *testing.T) {
	t.Parallel()

	bio := normalBiomarkers()
	bio["fo_mean"] = 300.0      // moderate deviation
	bio["jitter_local"] = 0.02  // far past the bound
	bio["shimmer_local"] = 0.05 // just past the bound
	bio["hnr"] = 10.0           // below floor, wide range

	findings := FlagAbnormal(bio)
	if len(findings) != 4 {
		t.Fatalf("expected 4 findings, got %d: %+v", len(findings), findings)
	}

	// Findings come out in reference-table order.
	wantOrder := []string{"fo_mean", "jitter_local", "shimmer_local", "hnr"}
	for i, key := range wantOrder {
		if findings[i].Key != key {
			t.Errorf("finding %d has key %q, want %q", i, findings[i].Key, key)
		}
	}

	wantSeverity := map[string]string{
		"fo_mean":       "Moderate",
		"jitter_local":  "High",
		"shimmer_local": "Moderate",
		"hnr":           "High",
	}
	for _, f := range findings {
		if f.Severity != wantSeverity[f.Key] {
			t.Errorf("%s severity = %q, want %q (value %g)", f.Key, f.Severity, wantSeverity[f.Key], f.Value)
		}
		if f.Biomarker == "" || f.NormalRange == "" {
			t.Errorf("%s finding missing label or range text: %+v", f.Key, f)
		}
	}
}

func TestFlagAbnormalRoundsValues(t *testing.T) {
	t.Parallel()

	bio := normalBiomarkers()
	bio["jitter_local"] = 0.0123456789

	findings := FlagAbnormal(bio)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if got := findings[0].Value; math.Abs(got-0.01235) > 1e-12 {
		t.Errorf("value = %v, want rounded to 5 decimals (0.01235)", got)
	}
}

func TestEstimateStageBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score    float64
		findings []Finding
		wantCode string
		wantIn   string
	}{
		{5, nil, "Healthy", "90th percentile"},
		{15, nil, "Optimal", "vocal fold closure"},
		{25, nil, "Subclinical (Low)", "physiological"},
		{38, nil, "Subclinical (Observation)", "baseline"},
		{45, nil, "H&Y Stage 1 (Initial)", "decreasing slightly"},
		{45, []Finding{{Key: "jitter_local", Severity: "High"}}, "H&Y Stage 1 (Initial)", "High Jitter"},
		{55, nil, "H&Y Stage 1.5 (Progressing)", "bilateral"},
		{67, []Finding{{Key: "hnr"}, {Key: "ppe"}, {Key: "nhr"}}, "H&Y Stage 2 (Early-Mid)", "3 abnormal markers"},
		{75, nil, "H&Y Stage 2 (Mid-Mid)", "monotone"},
		{85, nil, "H&Y Stage 2.5 (Established)", "clinical suspicion"},
		{99, nil, "H&Y Stage 3+ (Advanced)", "Severe dysarthria"},
	}
	for _, c := range cases {
		code, desc := EstimateStage(c.score, c.findings)
		if code != c.wantCode {
			t.Errorf("EstimateStage(%.0f) code = %q, want %q", c.score, code, c.wantCode)
		}
		if !strings.Contains(desc, c.wantIn) {
			t.Errorf("EstimateStage(%.0f) description %q does not mention %q", c.score, desc, c.wantIn)
		}
	}
}

func TestBuildAdvisoryReferralOnlyAtHighestBand(t *testing.T) {
	t.Parallel()

	for _, score := range []float64{10, 50, 80} {
		adv := BuildAdvisory(score, nil, normalBiomarkers())
		if adv.SpecialistReferral != "" {
			t.Errorf("score %.0f should not set a referral, got %q", score, adv.SpecialistReferral)
		}
	}

	adv := BuildAdvisory(92, nil, normalBiomarkers())
	if !strings.Contains(adv.SpecialistReferral, "Movement Disorder Center") {
		t.Errorf("high band referral = %q, want tertiary center", adv.SpecialistReferral)
	}
	if adv.ClinicalStage != "H&Y Stage 3+ (Advanced)" {
		t.Errorf("stage = %q", adv.ClinicalStage)
	}
}

func TestBuildAdvisoryBandsPopulated(t *testing.T) {
	t.Parallel()

	for _, score := range []float64{20, 50, 78, 95} {
		adv := BuildAdvisory(score, nil, normalBiomarkers())
		if len(adv.ImmediateSteps) == 0 {
			t.Errorf("score %.0f: no immediate steps", score)
		}
		if len(adv.DiagnosticTests) == 0 {
			t.Errorf("score %.0f: no diagnostic tests", score)
		}
		if adv.MonitoringFrequency == "" {
			t.Errorf("score %.0f: no monitoring frequency", score)
		}
		if len(adv.References) == 0 {
			t.Errorf("score %.0f: no references", score)
		}
	}
}

func TestPrecisionInsights(t *testing.T) {
	t.Parallel()

	none := precisionInsights(normalBiomarkers())
	if len(none) != 0 {
		t.Fatalf("normal biomarkers should yield no insights, got %v", none)
	}

	bio := map[string]float64{
		"jitter_local":  0.02,
		"shimmer_local": 0.06,
		"hnr":           12.0,
		"ppe":           0.3,
	}
	insights := precisionInsights(bio)
	if len(insights) != 4 {
		t.Fatalf("expected 4 insights, got %d: %v", len(insights), insights)
	}
	for _, want := range []string{"Jitter", "Shimmer", "HNR", "PPE"} {
		found := false
		for _, line := range insights {
			if strings.Contains(line, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("no insight mentions %s", want)
		}
	}

	// Absent HNR must not trigger the low-clarity insight.
	if got := precisionInsights(map[string]float64{}); len(got) != 0 {
		t.Errorf("empty biomarkers yielded insights: %v", got)
	}
}
