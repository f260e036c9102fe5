package voice

// Harmonics-to-noise ratio via frame-wise normalized autocorrelation. For a
// periodic frame the autocorrelation peak r at the pitch lag estimates the
// harmonic energy fraction, so HNR = 10*log10(r / (1-r)). The reported value
// is the mean over all non-silent frames; silent frames are excluded by a
// relative-intensity gate.

import "math"

// HNRConfig mirrors the pitch analysis window settings.
type HNRConfig struct {
	TimeStep         float64 // s
	FloorHz          float64
	CeilingHz        float64
	SilenceThreshold float64 // fraction of global peak
}

// DefaultHNRConfig returns the standard cross-correlation settings.
func DefaultHNRConfig() HNRConfig {
	return HNRConfig{
		TimeStep:         0.010,
		FloorHz:          75,
		CeilingHz:        500,
		SilenceThreshold: 0.1,
	}
}

// ComputeHNR returns the mean harmonics-to-noise ratio in dB over voiced,
// non-silent frames. Returns 0 when no frame qualifies.
func ComputeHNR(samples []float64, sampleRate int, cfg HNRConfig) float64 {
	sr := float64(sampleRate)
	windowSize := int(math.Floor(2.0 / cfg.FloorHz * sr))
	hop := int(math.Floor(cfg.TimeStep * sr))
	if windowSize < 4 || hop < 1 || len(samples) < windowSize {
		return 0
	}

	minLag := int(sr / cfg.CeilingHz)
	maxLag := int(sr / cfg.FloorHz)
	if maxLag >= windowSize {
		maxLag = windowSize - 1
	}
	if minLag < 2 {
		minLag = 2
	}

	globalPeak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > globalPeak {
			globalPeak = a
		}
	}
	if globalPeak == 0 {
		return 0
	}

	var sum float64
	frames := 0
	for start := 0; start+windowSize <= len(samples); start += hop {
		frame := samples[start : start+windowSize]

		localPeak := 0.0
		var mean float64
		for _, s := range frame {
			if a := math.Abs(s); a > localPeak {
				localPeak = a
			}
			mean += s
		}
		if localPeak < cfg.SilenceThreshold*globalPeak {
			continue
		}
		mean /= float64(windowSize)

		var energy float64
		for _, s := range frame {
			d := s - mean
			energy += d * d
		}
		if energy == 0 {
			continue
		}

		// Normalize each lag by the energies of both overlapping segments,
		// not the full window, or r is capped by the overlap fraction.
		best := 0.0
		for lag := minLag; lag <= maxLag; lag++ {
			var cross, left, right float64
			for i := 0; i+lag < windowSize; i++ {
				a := frame[i] - mean
				b := frame[i+lag] - mean
				cross += a * b
				left += a * a
				right += b * b
			}
			denom := math.Sqrt(left * right)
			if denom == 0 {
				continue
			}
			if r := cross / denom; r > best {
				best = r
			}
		}
		if best <= 0 {
			continue
		}
		if best > 0.999999 {
			best = 0.999999
		}

		sum += 10 * math.Log10(best/(1-best))
		frames++
	}

	if frames == 0 {
		return 0
	}
	return sum / float64(frames)
}
