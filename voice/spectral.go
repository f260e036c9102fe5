package voice

import (
	"math"
	"math/cmplx"

	"voice-screening/dsp"
)

const (
	spectralFFTSize = 512
	spectralHopSize = 256
	rolloffFraction = 0.85
)

// SpectralStats are frame-averaged broadband descriptors of the voice
// spectrum.
type SpectralStats struct {
	Centroid float64 // Hz
	Rolloff  float64 // Hz, 85th energy percentile
	ZCR      float64 // zero crossings per sample
}

// ComputeSpectralStats returns centroid, rolloff and zero-crossing rate
// averaged over Hann-windowed frames.
func ComputeSpectralStats(samples []float64, sampleRate int) SpectralStats {
	var stats SpectralStats
	if len(samples) < spectralFFTSize {
		return stats
	}

	sr := float64(sampleRate)
	window := dsp.HannWindow(spectralFFTSize)
	binCount := spectralFFTSize/2 + 1
	freqStep := sr / float64(spectralFFTSize)

	frame := make([]float64, spectralFFTSize)
	frames := 0
	for start := 0; start+spectralFFTSize <= len(samples); start += spectralHopSize {
		crossings := 0
		for i := 1; i < spectralFFTSize; i++ {
			if (samples[start+i-1] >= 0) != (samples[start+i] >= 0) {
				crossings++
			}
		}
		stats.ZCR += float64(crossings) / float64(spectralFFTSize)

		for i := range frame {
			frame[i] = samples[start+i] * window[i]
		}
		spectrum := dsp.FFT(frame)

		var total, weighted float64
		mags := make([]float64, binCount)
		for i := 0; i < binCount; i++ {
			mags[i] = cmplx.Abs(spectrum[i])
			total += mags[i]
			weighted += mags[i] * float64(i) * freqStep
		}
		if total > 0 {
			stats.Centroid += weighted / total

			target := rolloffFraction * total
			var cum float64
			for i := 0; i < binCount; i++ {
				cum += mags[i]
				if cum >= target {
					stats.Rolloff += float64(i) * freqStep
					break
				}
			}
		}
		frames++
	}

	if frames > 0 {
		stats.Centroid /= float64(frames)
		stats.Rolloff /= float64(frames)
		stats.ZCR /= float64(frames)
	}
	return stats
}

// ComputeTremorEnergy estimates low-frequency amplitude modulation: the share
// of 3-12 Hz energy in the spectrum of the RMS intensity envelope. Returns 0
// when the recording is too short to resolve the modulation band.
func ComputeTremorEnergy(samples []float64, sampleRate int) float64 {
	sr := float64(sampleRate)
	frameLen := int(0.025 * sr)
	hop := int(0.010 * sr)
	if frameLen < 1 || hop < 1 || len(samples) < frameLen {
		return 0
	}

	var envelope []float64
	for start := 0; start+frameLen <= len(samples); start += hop {
		var energy float64
		for _, s := range samples[start : start+frameLen] {
			energy += s * s
		}
		envelope = append(envelope, math.Sqrt(energy/float64(frameLen)))
	}
	if len(envelope) <= 64 {
		return 0
	}

	var mean float64
	for _, v := range envelope {
		mean += v
	}
	mean /= float64(len(envelope))
	for i := range envelope {
		envelope[i] -= mean
	}
	// Taper the envelope so spectral leakage from the recording edges does
	// not bleed into the 3-12 Hz band.
	dsp.ApplyHannWindow(envelope)

	envelopeRate := sr / float64(hop)
	mags, freqs := dsp.MagnitudeSpectrum(envelope, envelopeRate)

	var band, total float64
	for i, f := range freqs {
		total += mags[i]
		if f >= 3 && f <= 12 {
			band += mags[i]
		}
	}
	return band / (total + 1e-8)
}
