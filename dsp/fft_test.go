package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFTSinglePeak(t *testing.T) {
	t.Parallel()

	const n = 1024
	// Bin 64 aligned: exactly 64 cycles fit the window, no leakage.
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 64 * float64(i) / n)
	}

	spectrum := FFT(signal)
	if len(spectrum) != n {
		t.Fatalf("spectrum length = %d, want %d", len(spectrum), n)
	}

	peakBin := 0
	peakMag := 0.0
	for k := 1; k < n/2; k++ {
		if mag := cmplx.Abs(spectrum[k]); mag > peakMag {
			peakMag = mag
			peakBin = k
		}
	}
	if peakBin != 64 {
		t.Errorf("peak at bin %d, want 64", peakBin)
	}
	// A real sine of amplitude 1 puts N/2 in each of the two mirrored bins.
	if math.Abs(peakMag-n/2) > 1e-6 {
		t.Errorf("peak magnitude = %g, want %g", peakMag, float64(n/2))
	}
}

func TestFFTDCComponent(t *testing.T) {
	t.Parallel()

	signal := make([]float64, 256)
	for i := range signal {
		signal[i] = 0.25
	}
	spectrum := FFT(signal)
	if got := cmplx.Abs(spectrum[0]); math.Abs(got-64) > 1e-9 {
		t.Errorf("DC bin = %g, want 64", got)
	}
	if got := cmplx.Abs(spectrum[10]); got > 1e-9 {
		t.Errorf("non-DC bin should be empty, got %g", got)
	}
}

func TestMagnitudeSpectrum(t *testing.T) {
	t.Parallel()

	const sampleRate = 22050.0
	signal := make([]float64, 500) // padded to 512 internally
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
	}

	magnitude, freqs := MagnitudeSpectrum(signal, sampleRate)
	if len(magnitude) != 257 || len(freqs) != 257 {
		t.Fatalf("one-sided lengths = %d/%d, want 257", len(magnitude), len(freqs))
	}
	if freqs[0] != 0 {
		t.Errorf("first bin frequency = %g, want 0", freqs[0])
	}
	if math.Abs(freqs[256]-sampleRate/2) > 1e-9 {
		t.Errorf("last bin frequency = %g, want Nyquist %g", freqs[256], sampleRate/2)
	}

	peakBin := 0
	for k := 1; k < len(magnitude); k++ {
		if magnitude[k] > magnitude[peakBin] {
			peakBin = k
		}
	}
	// 1000 Hz at 22050/512 Hz per bin lands near bin 23.
	if peakBin < 22 || peakBin > 24 {
		t.Errorf("peak at bin %d (%.0f Hz), want ~1000 Hz", peakBin, freqs[peakBin])
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {512, 512}, {513, 1024},
	}
	for _, c := range cases {
		if got := NextPowerOfTwo(c.in); got != c.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHannWindow(t *testing.T) {
	t.Parallel()

	w := HannWindow(512)
	if len(w) != 512 {
		t.Fatalf("window length = %d", len(w))
	}
	if w[0] > 1e-9 || w[511] > 1e-9 {
		t.Errorf("endpoints = %g, %g, want ~0", w[0], w[511])
	}
	mid := w[255]
	if mid < 0.99 {
		t.Errorf("midpoint = %g, want ~1", mid)
	}

	buf := []float64{1, 1, 1, 1}
	ApplyHannWindow(buf)
	if buf[0] > 1e-9 {
		t.Errorf("in-place window left endpoint nonzero: %g", buf[0])
	}
}
