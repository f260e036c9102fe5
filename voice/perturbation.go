package voice

// Jitter and Shimmer
//
// MDVP-style cycle-to-cycle perturbation measures over the glottal pulse
// sequence. Jitter quantifies period instability, shimmer amplitude
// instability. Both apply the standard continuity constraints: a period must
// lie inside [MinPeriod, MaxPeriod] and neighbouring periods (or amplitudes)
// may differ by at most the configured factor, otherwise the pair is skipped
// as a pitch-marking artefact rather than a physiological cycle.

import (
	"errors"
	"math"
)

// PerturbationBounds are the admissibility constraints shared by jitter and
// shimmer.
type PerturbationBounds struct {
	MinPeriod          float64 // s
	MaxPeriod          float64 // s
	MaxPeriodFactor    float64 // ratio between neighbouring periods
	MaxAmplitudeFactor float64 // ratio between neighbouring amplitudes
}

// DefaultPerturbationBounds returns the MDVP defaults.
func DefaultPerturbationBounds() PerturbationBounds {
	return PerturbationBounds{
		MinPeriod:          0.0001,
		MaxPeriod:          0.02,
		MaxPeriodFactor:    1.3,
		MaxAmplitudeFactor: 1.6,
	}
}

// JitterStats bundles the four measured jitter statistics plus the DDP
// identity (always exactly 3 x RAP).
type JitterStats struct {
	Local    float64 // relative, fraction of the mean period
	Absolute float64 // s
	RAP      float64 // 3-point relative average perturbation
	PPQ5     float64 // 5-point period perturbation quotient
	DDP      float64 // 3 * RAP by definition
}

// ShimmerStats bundles the five measured shimmer statistics plus the DDA
// identity (always exactly 3 x APQ3).
type ShimmerStats struct {
	Local   float64 // relative, fraction of the mean amplitude
	LocalDB float64 // dB
	APQ3    float64
	APQ5    float64
	APQ11   float64
	DDA     float64 // 3 * APQ3 by definition
}

var errTooFewPulses = errors.New("too few comparable glottal pulses")

// ComputeJitter derives the jitter statistics from pulse times in seconds.
func ComputeJitter(pulseTimes []float64, bounds PerturbationBounds) (JitterStats, error) {
	periods, valid := periodSequence(pulseTimes, bounds)

	meanPeriod, count := validMean(periods, valid)
	if count == 0 || meanPeriod == 0 {
		return JitterStats{}, errTooFewPulses
	}

	var diffSum float64
	pairs := 0
	for i := 1; i < len(periods); i++ {
		if !pairOK(periods, valid, i-1, i, bounds.MaxPeriodFactor) {
			continue
		}
		diffSum += math.Abs(periods[i] - periods[i-1])
		pairs++
	}
	if pairs == 0 {
		return JitterStats{}, errTooFewPulses
	}

	absolute := diffSum / float64(pairs)
	rap := perturbationQuotient(periods, valid, 3, bounds.MaxPeriodFactor) / meanPeriod
	ppq5 := perturbationQuotient(periods, valid, 5, bounds.MaxPeriodFactor) / meanPeriod

	return JitterStats{
		Local:    absolute / meanPeriod,
		Absolute: absolute,
		RAP:      rap,
		PPQ5:     ppq5,
		DDP:      3 * rap,
	}, nil
}

// ComputeShimmer derives the shimmer statistics from pulse times and the
// waveform amplitude at each pulse. It fails when the pulse sequence is too
// unstable to compare amplitudes at all; the caller substitutes documented
// placeholder values in that case.
func ComputeShimmer(pulseTimes, amplitudes []float64, bounds PerturbationBounds) (ShimmerStats, error) {
	if len(amplitudes) < 3 || len(amplitudes) != len(pulseTimes) {
		return ShimmerStats{}, errTooFewPulses
	}

	periods, periodValid := periodSequence(pulseTimes, bounds)

	// An amplitude takes part when it is nonzero and bounds a valid period.
	valid := make([]bool, len(amplitudes))
	for i := range amplitudes {
		if amplitudes[i] <= 0 {
			continue
		}
		if (i > 0 && i-1 < len(periodValid) && periodValid[i-1]) ||
			(i < len(periodValid) && periodValid[i]) {
			valid[i] = true
		}
	}

	meanAmp, count := validMean(amplitudes, valid)
	if count == 0 || meanAmp == 0 {
		return ShimmerStats{}, errTooFewPulses
	}

	var diffSum, dbSum float64
	pairs := 0
	for i := 1; i < len(amplitudes); i++ {
		if !pairOK(amplitudes, valid, i-1, i, bounds.MaxAmplitudeFactor) {
			continue
		}
		if i-1 >= len(periods) || !periodValid[i-1] {
			continue
		}
		diffSum += math.Abs(amplitudes[i] - amplitudes[i-1])
		dbSum += math.Abs(20 * math.Log10(amplitudes[i]/amplitudes[i-1]))
		pairs++
	}
	if pairs == 0 {
		return ShimmerStats{}, errTooFewPulses
	}

	apq3 := perturbationQuotient(amplitudes, valid, 3, bounds.MaxAmplitudeFactor) / meanAmp
	apq5 := perturbationQuotient(amplitudes, valid, 5, bounds.MaxAmplitudeFactor) / meanAmp
	apq11 := perturbationQuotient(amplitudes, valid, 11, bounds.MaxAmplitudeFactor) / meanAmp

	return ShimmerStats{
		Local:   (diffSum / float64(pairs)) / meanAmp,
		LocalDB: dbSum / float64(pairs),
		APQ3:    apq3,
		APQ5:    apq5,
		APQ11:   apq11,
		DDA:     3 * apq3,
	}, nil
}

// periodSequence returns consecutive pulse intervals and their in-bounds
// validity.
func periodSequence(pulseTimes []float64, bounds PerturbationBounds) ([]float64, []bool) {
	if len(pulseTimes) < 2 {
		return nil, nil
	}
	periods := make([]float64, len(pulseTimes)-1)
	valid := make([]bool, len(periods))
	for i := range periods {
		periods[i] = pulseTimes[i+1] - pulseTimes[i]
		valid[i] = periods[i] >= bounds.MinPeriod && periods[i] <= bounds.MaxPeriod
	}
	return periods, valid
}

func validMean(values []float64, valid []bool) (mean float64, count int) {
	var sum float64
	for i, v := range values {
		if valid[i] {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

func pairOK(values []float64, valid []bool, i, j int, maxFactor float64) bool {
	if !valid[i] || !valid[j] {
		return false
	}
	lo, hi := values[i], values[j]
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo <= 0 {
		return false
	}
	return hi/lo <= maxFactor
}

// perturbationQuotient is the k-point smoothed mean absolute deviation:
// the average of |x_i - mean(window)| over all windows of k consecutive
// valid values whose neighbours satisfy the continuity factor. Returns NaN
// when no admissible window exists; the NaN guard downstream handles it.
func perturbationQuotient(values []float64, valid []bool, k int, maxFactor float64) float64 {
	if len(values) < k {
		return math.NaN()
	}
	half := k / 2
	var sum float64
	count := 0

	for center := half; center < len(values)-half; center++ {
		ok := true
		var windowSum float64
		for w := center - half; w <= center+half; w++ {
			if !valid[w] {
				ok = false
				break
			}
			if w > center-half && !pairOK(values, valid, w-1, w, maxFactor) {
				ok = false
				break
			}
			windowSum += values[w]
		}
		if !ok {
			continue
		}
		windowMean := windowSum / float64(k)
		sum += math.Abs(values[center] - windowMean)
		count++
	}

	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
