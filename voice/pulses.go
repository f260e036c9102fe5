package voice

// Glottal Pulse Extraction
//
// Converts the waveform plus pitch track into a point process: one event per
// glottal cycle, constrained to the 75-500 Hz band. Jitter works on the
// intervals between events, shimmer on the waveform amplitude at each event.
//
// The marker walks each voiced run of the pitch track, locks onto the
// strongest excursion within the first expected period and then advances one
// period at a time, re-centering on the local amplitude peak so slow drift in
// F0 does not accumulate.

import "math"

// PulseConfig bounds the admissible pulse rate.
type PulseConfig struct {
	FloorHz   float64
	CeilingHz float64
}

// DefaultPulseConfig matches the band used by the pitch tracker.
func DefaultPulseConfig() PulseConfig {
	return PulseConfig{FloorHz: 75.0, CeilingHz: 500.0}
}

// ExtractPulses returns pulse positions as sample indices in ascending order.
func ExtractPulses(samples []float64, sampleRate int, track []PitchFrame, cfg PulseConfig) []int {
	if len(samples) == 0 || sampleRate <= 0 || len(track) == 0 {
		return nil
	}

	hop := frameHop(track, sampleRate)
	if hop < 1 {
		hop = 1
	}

	var pulses []int
	frameCount := len(track)

	for f := 0; f < frameCount; {
		if track[f].Frequency <= 0 {
			f++
			continue
		}

		// voiced run [f, runEnd)
		runEnd := f
		for runEnd < frameCount && track[runEnd].Frequency > 0 {
			runEnd++
		}

		runStart := f * hop
		runStop := runEnd * hop
		if runStop > len(samples) {
			runStop = len(samples)
		}

		pulses = appendRunPulses(pulses, samples, sampleRate, track, hop, runStart, runStop, cfg)
		f = runEnd
	}

	return pulses
}

// PulseTimes converts sample indices to seconds.
func PulseTimes(pulses []int, sampleRate int) []float64 {
	times := make([]float64, len(pulses))
	for i, p := range pulses {
		times[i] = float64(p) / float64(sampleRate)
	}
	return times
}

// PulseAmplitudes samples the absolute waveform amplitude at each pulse.
func PulseAmplitudes(samples []float64, pulses []int) []float64 {
	amps := make([]float64, len(pulses))
	for i, p := range pulses {
		if p >= 0 && p < len(samples) {
			amps[i] = math.Abs(samples[p])
		}
	}
	return amps
}

func frameHop(track []PitchFrame, sampleRate int) int {
	if len(track) < 2 {
		return 1
	}
	return int(math.Round((track[1].Time - track[0].Time) * float64(sampleRate)))
}

func appendRunPulses(pulses []int, samples []float64, sampleRate int, track []PitchFrame, hop, runStart, runStop int, cfg PulseConfig) []int {
	period := periodAt(track, hop, runStart, sampleRate)
	if period <= 0 {
		return pulses
	}

	// Anchor on the strongest excursion within the first period.
	anchorEnd := runStart + period
	if anchorEnd > runStop {
		anchorEnd = runStop
	}
	anchor := peakIndex(samples, runStart, anchorEnd)
	if anchor < 0 {
		return pulses
	}
	pulses = append(pulses, anchor)

	minPeriod := int(float64(sampleRate) / cfg.CeilingHz)
	maxPeriod := int(float64(sampleRate) / cfg.FloorHz)

	current := anchor
	for {
		period = periodAt(track, hop, current, sampleRate)
		if period < minPeriod || period > maxPeriod {
			break
		}

		// Search the local peak around one period ahead.
		lo := current + int(0.8*float64(period))
		hi := current + int(1.25*float64(period))
		if lo >= runStop {
			break
		}
		if hi > runStop {
			hi = runStop
		}
		next := peakIndex(samples, lo, hi)
		if next < 0 || next <= current {
			break
		}
		pulses = append(pulses, next)
		current = next
	}

	return pulses
}

// periodAt returns the pulse period in samples at the given waveform
// position, taken from the nearest voiced pitch frame.
func periodAt(track []PitchFrame, hop, position, sampleRate int) int {
	frame := position / hop
	if frame >= len(track) {
		frame = len(track) - 1
	}
	// walk outwards to the nearest voiced frame
	for offset := 0; offset < len(track); offset++ {
		if frame-offset >= 0 && track[frame-offset].Frequency > 0 {
			return int(math.Round(float64(sampleRate) / track[frame-offset].Frequency))
		}
		if frame+offset < len(track) && track[frame+offset].Frequency > 0 {
			return int(math.Round(float64(sampleRate) / track[frame+offset].Frequency))
		}
	}
	return 0
}

func peakIndex(samples []float64, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	if lo >= hi {
		return -1
	}
	best := lo
	bestVal := math.Abs(samples[lo])
	for i := lo + 1; i < hi; i++ {
		if a := math.Abs(samples[i]); a > bestVal {
			bestVal = a
			best = i
		}
	}
	return best
}
