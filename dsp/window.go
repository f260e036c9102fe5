package dsp

import "math"

// ApplyHannWindow multiplies the buffer in place with a Hann window to
// reduce spectral leakage before an FFT.
func ApplyHannWindow(buffer []float64) {
	length := len(buffer)
	if length <= 1 {
		return
	}
	for i := range buffer {
		buffer[i] *= 0.5 * (1 - math.Cos((2*math.Pi*float64(i))/float64(length-1)))
	}
}

// HannWindow returns a reusable window of the given length. Framed analyses
// (MFCC, harmonicity) apply the same window to every frame, so computing it
// once avoids a per-frame cosine loop.
func HannWindow(length int) []float64 {
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos((2*math.Pi*float64(i))/float64(length-1)))
	}
	return window
}
