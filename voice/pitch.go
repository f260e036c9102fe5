package voice

// Fundamental Frequency (F0) Tracking
//
// Autocorrelation-based pitch tracker in the style of Boersma's AC method:
// per-frame normalized autocorrelation candidates over the speech band,
// followed by a Viterbi pass that trades candidate strength against octave
// jumps and voiced/unvoiced transitions. Voiced frames carry a frequency in
// Hz; unvoiced frames carry 0.
//
// Parkinsonian analysis depends on a conservative voicing decision: jitter
// and shimmer are meaningless on frames that are actually silence or noise,
// so the silence and voicing thresholds below are deliberately strict.

import (
	"math"
	"sort"
)

// PitchConfig carries the tracker thresholds. The defaults mirror the MDVP
// settings used throughout the clinical voice literature.
type PitchConfig struct {
	TimeStep           float64 // s between frames
	Floor              float64 // Hz, lowest candidate
	Ceiling            float64 // Hz, highest candidate
	MaxCandidates      int     // per frame, including the unvoiced candidate
	SilenceThreshold   float64 // relative to the global peak
	VoicingThreshold   float64 // autocorrelation strength required for voicing
	OctaveCost         float64 // per-octave preference for higher candidates
	OctaveJumpCost     float64 // transition cost between voiced frames
	VoicedUnvoicedCost float64 // transition cost across a voicing change
}

// DefaultPitchConfig returns the analysis settings used for screening.
func DefaultPitchConfig() PitchConfig {
	return PitchConfig{
		TimeStep:           0.010,
		Floor:              75.0,
		Ceiling:            500.0,
		MaxCandidates:      15,
		SilenceThreshold:   0.03,
		VoicingThreshold:   0.45,
		OctaveCost:         0.01,
		OctaveJumpCost:     0.35,
		VoicedUnvoicedCost: 0.14,
	}
}

// PitchFrame is one analysis frame of the track.
type PitchFrame struct {
	Time      float64 // s, frame start
	Frequency float64 // Hz, 0 when unvoiced
	Strength  float64 // autocorrelation strength of the chosen candidate
}

type pitchCandidate struct {
	frequency float64 // 0 = unvoiced
	strength  float64
}

// TrackPitch analyses the waveform and returns one frame per time step.
func TrackPitch(samples []float64, sampleRate int, cfg PitchConfig) []PitchFrame {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil
	}

	// Three periods of the pitch floor per analysis window.
	windowLen := int(3.0 / cfg.Floor * float64(sampleRate))
	hop := int(cfg.TimeStep * float64(sampleRate))
	if hop < 1 {
		hop = 1
	}
	if windowLen > len(samples) {
		windowLen = len(samples)
	}
	if windowLen < 2 {
		return nil
	}

	minLag := int(float64(sampleRate) / cfg.Ceiling)
	maxLag := int(float64(sampleRate) / cfg.Floor)
	if maxLag > windowLen-1 {
		maxLag = windowLen - 1
	}
	if minLag < 2 {
		minLag = 2
	}
	if minLag >= maxLag {
		return nil
	}

	globalPeak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > globalPeak {
			globalPeak = a
		}
	}

	frameCount := 0
	for start := 0; start+windowLen <= len(samples); start += hop {
		frameCount++
	}
	if frameCount == 0 {
		return nil
	}

	candidates := make([][]pitchCandidate, frameCount)
	frame := make([]float64, windowLen)

	for f := 0; f < frameCount; f++ {
		start := f * hop
		copy(frame, samples[start:start+windowLen])
		removeMean(frame)

		localPeak := 0.0
		for _, s := range frame {
			if a := math.Abs(s); a > localPeak {
				localPeak = a
			}
		}

		candidates[f] = frameCandidates(frame, sampleRate, minLag, maxLag, localPeak, globalPeak, cfg)
	}

	chosen := viterbiPath(candidates, cfg)

	track := make([]PitchFrame, frameCount)
	for f := 0; f < frameCount; f++ {
		cand := candidates[f][chosen[f]]
		track[f] = PitchFrame{
			Time:      float64(f*hop) / float64(sampleRate),
			Frequency: cand.frequency,
			Strength:  cand.strength,
		}
	}
	return track
}

// VoicedFrequencies filters the track down to the voiced frames.
func VoicedFrequencies(track []PitchFrame) []float64 {
	voiced := make([]float64, 0, len(track))
	for _, frame := range track {
		if frame.Frequency > 0 {
			voiced = append(voiced, frame.Frequency)
		}
	}
	return voiced
}

func removeMean(frame []float64) {
	var sum float64
	for _, s := range frame {
		sum += s
	}
	mean := sum / float64(len(frame))
	for i := range frame {
		frame[i] -= mean
	}
}

// frameCandidates returns the unvoiced candidate (index 0) followed by the
// strongest periodicity candidates in the lag range, at most MaxCandidates
// in total.
func frameCandidates(frame []float64, sampleRate, minLag, maxLag int, localPeak, globalPeak float64, cfg PitchConfig) []pitchCandidate {
	// Unvoiced candidate strength per Boersma: quiet frames make the
	// unvoiced candidate nearly unbeatable.
	unvoicedStrength := cfg.VoicingThreshold
	if globalPeak > 0 {
		ratio := (localPeak / globalPeak) / (cfg.SilenceThreshold / (1 + cfg.VoicingThreshold))
		if extra := 2 - ratio; extra > 0 {
			unvoicedStrength += extra
		}
	} else {
		unvoicedStrength += 2
	}

	result := []pitchCandidate{{frequency: 0, strength: unvoicedStrength}}

	r := normalizedAutocorrelation(frame, minLag, maxLag)
	if r == nil {
		return result
	}

	var voiced []pitchCandidate
	for lag := minLag + 1; lag < maxLag; lag++ {
		if r[lag] <= r[lag-1] || r[lag] < r[lag+1] {
			continue // not a local maximum
		}
		refinedLag, strength := parabolicPeak(r, lag)
		if strength <= 0 {
			continue
		}
		freq := float64(sampleRate) / refinedLag
		if freq < cfg.Floor || freq > cfg.Ceiling {
			continue
		}
		// Small per-octave bonus for the higher candidate so subharmonics
		// do not win ties on strongly periodic signals.
		adjusted := strength - cfg.OctaveCost*math.Log2(cfg.Ceiling/freq)
		voiced = append(voiced, pitchCandidate{frequency: freq, strength: adjusted})
	}

	sort.Slice(voiced, func(i, j int) bool { return voiced[i].strength > voiced[j].strength })
	if len(voiced) > cfg.MaxCandidates-1 {
		voiced = voiced[:cfg.MaxCandidates-1]
	}

	return append(result, voiced...)
}

// normalizedAutocorrelation returns r[lag] for lags [0, maxLag], normalized
// so a perfectly periodic frame scores ~1 at its period.
func normalizedAutocorrelation(frame []float64, minLag, maxLag int) []float64 {
	n := len(frame)
	var r0 float64
	for _, s := range frame {
		r0 += s * s
	}
	if r0 == 0 {
		return nil
	}

	r := make([]float64, maxLag+1)
	r[0] = 1
	for lag := minLag - 1; lag <= maxLag; lag++ {
		if lag <= 0 || lag >= n {
			continue
		}
		var cross, left, right float64
		for i := 0; i < n-lag; i++ {
			cross += frame[i] * frame[i+lag]
			left += frame[i] * frame[i]
			right += frame[i+lag] * frame[i+lag]
		}
		denom := math.Sqrt(left * right)
		if denom > 0 {
			r[lag] = cross / denom
		}
	}
	return r
}

// parabolicPeak interpolates the true maximum around an integer-lag peak.
func parabolicPeak(r []float64, lag int) (refinedLag, strength float64) {
	a, b, c := r[lag-1], r[lag], r[lag+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(lag), b
	}
	shift := 0.5 * (a - c) / denom
	if shift > 0.5 {
		shift = 0.5
	}
	if shift < -0.5 {
		shift = -0.5
	}
	return float64(lag) + shift, b - 0.25*(a-c)*shift
}

// viterbiPath picks one candidate per frame maximizing total strength minus
// transition costs.
func viterbiPath(candidates [][]pitchCandidate, cfg PitchConfig) []int {
	frameCount := len(candidates)
	if frameCount == 0 {
		return nil
	}

	score := make([][]float64, frameCount)
	back := make([][]int, frameCount)

	score[0] = make([]float64, len(candidates[0]))
	back[0] = make([]int, len(candidates[0]))
	for i, cand := range candidates[0] {
		score[0][i] = cand.strength
	}

	for f := 1; f < frameCount; f++ {
		score[f] = make([]float64, len(candidates[f]))
		back[f] = make([]int, len(candidates[f]))
		for i, cand := range candidates[f] {
			best := math.Inf(-1)
			bestPrev := 0
			for j, prev := range candidates[f-1] {
				total := score[f-1][j] - transitionCost(prev, cand, cfg) + cand.strength
				if total > best {
					best = total
					bestPrev = j
				}
			}
			score[f][i] = best
			back[f][i] = bestPrev
		}
	}

	path := make([]int, frameCount)
	bestEnd := 0
	for i := range score[frameCount-1] {
		if score[frameCount-1][i] > score[frameCount-1][bestEnd] {
			bestEnd = i
		}
	}
	path[frameCount-1] = bestEnd
	for f := frameCount - 1; f > 0; f-- {
		path[f-1] = back[f][path[f]]
	}
	return path
}

func transitionCost(from, to pitchCandidate, cfg PitchConfig) float64 {
	fromVoiced := from.frequency > 0
	toVoiced := to.frequency > 0
	switch {
	case fromVoiced && toVoiced:
		return cfg.OctaveJumpCost * math.Abs(math.Log2(from.frequency/to.frequency))
	case fromVoiced != toVoiced:
		return cfg.VoicedUnvoicedCost
	default:
		return 0
	}
}
