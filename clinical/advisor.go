package clinical

// Narrative advisory generation. Recommendation content follows the MDS and
// AAN practice guidance cited in the References fields; the band boundaries
// (35 / 70 / 85) intentionally differ from the risk-label thresholds so that
// the advisory discriminates within the High band.

// Advisory is the structured recommendation bundle for one screening run.
type Advisory struct {
	ClinicalStage       string   `json:"clinicalStage"`
	StageDescription    string   `json:"stageDescription"`
	ImmediateSteps      []string `json:"immediateSteps"`
	DiagnosticTests     []string `json:"diagnosticTests"`
	SpecialistReferral  string   `json:"specialistReferral,omitempty"`
	Lifestyle           []string `json:"lifestyle"`
	SpeechTherapy       []string `json:"speechTherapy"`
	PrecisionInsights   []string `json:"precisionInsights"`
	MonitoringFrequency string   `json:"monitoringFrequency"`
	References          []string `json:"references"`
}

// BuildAdvisory assembles the stage estimate, biomarker-specific insights and
// risk-band recommendations into one bundle.
func BuildAdvisory(riskScore float64, findings []Finding, biomarkers map[string]float64) *Advisory {
	stageCode, stageDesc := EstimateStage(riskScore, findings)
	adv := &Advisory{
		ClinicalStage:     stageCode,
		StageDescription:  stageDesc,
		ImmediateSteps:    []string{},
		DiagnosticTests:   []string{},
		Lifestyle:         []string{},
		SpeechTherapy:     []string{},
		PrecisionInsights: precisionInsights(biomarkers),
		References:        []string{},
	}

	switch {
	case riskScore < 35:
		adv.ImmediateSteps = []string{
			"Continue longitudinal monitoring via this app (3x per week).",
			"Maintain vigorous aerobic exercise, the only proven way to support neuro-plasticity.",
		}
		adv.DiagnosticTests = []string{"Annual screening with a primary care physician (PCP)."}
		adv.Lifestyle = []string{"Mediterranean-style diet", "Consistent 7-8 hours of sleep."}
		adv.MonitoringFrequency = "Check-in every 48-72 hours."
		adv.References = []string{"MDS PD Criteria, 2015", "AAN Practice Guidelines, 2021"}

	case riskScore < 70:
		adv.ImmediateSteps = []string{
			"Schedule a formal neurological evaluation within 30 days.",
			"Start a 'Vocal Health Diary' and note if your voice feels 'tired' by evening.",
		}
		adv.DiagnosticTests = []string{
			"MoCA Cognitive Screen",
			"UPDRS Part III Motor Exam",
			"UPSIT (Smell Test): anosmia often precedes motor symptoms by years.",
		}
		adv.SpeechTherapy = []string{
			"LSVT LOUD - Level 1 Protocol",
			"Hydration - minimum 2L/day to protect vocal mucosa.",
		}
		adv.MonitoringFrequency = "Daily voice recording. Weekly trend analysis."
		adv.References = []string{"Postuma et al., 2015", "Fox et al., LSVT LOUD clinical evidence"}

	case riskScore < 85:
		adv.ImmediateSteps = []string{
			"Clinical suspicion is HIGH. See a Movement Disorder Specialist within 14 days.",
			"Export this technical report and share it with your PCP for immediate referral.",
		}
		adv.Lifestyle = []string{"LSVT BIG physical therapy to address movement amplitude."}
		adv.SpeechTherapy = []string{"Intensive LSVT LOUD protocol (4 days/week for 4 weeks)."}
		adv.DiagnosticTests = []string{
			"DaTSCAN (Dopamine Transporter Imaging) to visualize nigrostriatal loss.",
			"Brain MRI.",
		}
		adv.MonitoringFrequency = "Daily recording. Essential for tracking medication efficacy later."
		adv.References = []string{"NICE Guidelines (NG71)", "American Academy of Neurology, 2019"}

	default:
		adv.ImmediateSteps = []string{
			"URGENT: Specialist consultation required within 7 days.",
			"Assess for fall risk immediately and check the home for trip hazards (rugs, lighting).",
			"Discuss 'Freezing of Gait' (FOG) with your physician if present.",
		}
		adv.DiagnosticTests = []string{
			"Full UPDRS (Parts I-IV) battery.",
			"Dopa-challenge test (to assess levodopa responsiveness).",
			"Pulmonary function tests (if breathiness is severe).",
		}
		adv.SpecialistReferral = "Tertiary Movement Disorder Center (Multidisciplinary Team)."
		adv.Lifestyle = []string{"Anti-fall home modifications", "Physiotherapy for balance and posture."}
		adv.SpeechTherapy = []string{
			"Speech-Language Pathologist (SLP) directed therapy for dysphagia (swallowing) screening.",
		}
		adv.MonitoringFrequency = "Daily. Monitoring for 'on/off' fluctuations is critical."
		adv.References = []string{"MDS Evidence-Based Review of PD Treatments, 2018", "Fox Foundation Treatment Guides"}
	}

	return adv
}

// precisionInsights emits biomarker-specific interpretation lines when a
// value crosses its insight threshold. Thresholds sit above the normal-range
// bounds so an insight always has a matching finding.
func precisionInsights(biomarkers map[string]float64) []string {
	insights := []string{}

	if biomarkers["jitter_local"] > 0.015 {
		insights = append(insights,
			"High Pitch Instability (Jitter): Your vocal folds are struggling to maintain a constant frequency. "+
				"This micro-tremor is a common early indicator of dopaminergic loss affecting the laryngeal muscles.")
	}
	if biomarkers["shimmer_local"] > 0.05 {
		insights = append(insights,
			"Volume Dysregulation (Shimmer): Fluctuations in your vocal amplitude suggest 'vocal leakage'. "+
				"This often results from incomplete vocal fold closure (bowing), typical in parkinsonian speech.")
	}
	if hnr, ok := biomarkers["hnr"]; ok && hnr < 15 {
		insights = append(insights,
			"Reduced Clarity (HNR): Significant 'noise' detected in your phonation. "+
				"This indicates air wastage and a 'hoarse' quality consistent with reduced vocal effort (hypophonia).")
	}
	if biomarkers["ppe"] > 0.25 {
		insights = append(insights,
			"High Signal Complexity (PPE): Elevated Pitch Period Entropy suggests your vocal control system is "+
				"operating in a chaotic state, a strong mathematical marker for neurological involvement.")
	}

	return insights
}
