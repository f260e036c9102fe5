package voice

import (
	"math/rand"
	"testing"
)

func TestComputeHNRSineVsNoise(t *testing.T) {
	t.Parallel()

	const sampleRate = 22050
	cfg := DefaultHNRConfig()

	sine := sineWave(150, sampleRate, 2.0)
	hnrSine := ComputeHNR(sine, sampleRate, cfg)
	if hnrSine < 20 {
		t.Errorf("pure tone HNR = %.2f dB, expected Praat-grade harmonicity (>= 20)", hnrSine)
	}

	rng := rand.New(rand.NewSource(42))
	noise := make([]float64, 2*sampleRate)
	for i := range noise {
		noise[i] = 0.8 * (rng.Float64()*2 - 1)
	}
	hnrNoise := ComputeHNR(noise, sampleRate, cfg)

	if hnrNoise >= hnrSine {
		t.Errorf("noise HNR (%.2f) should be below tone HNR (%.2f)", hnrNoise, hnrSine)
	}
}

// A noiseless periodic signal must not be capped by the shrinking
// autocorrelation overlap at large lags; the lag normalization has to use
// both segment energies so r approaches 1 regardless of the pitch period.
func TestComputeHNRNotCappedByOverlap(t *testing.T) {
	t.Parallel()

	const sampleRate = 22050
	cfg := DefaultHNRConfig()

	// 90 Hz sits near the pitch floor, where the lag consumes the largest
	// share of the analysis window.
	low := ComputeHNR(sineWave(90, sampleRate, 2.0), sampleRate, cfg)
	high := ComputeHNR(sineWave(300, sampleRate, 2.0), sampleRate, cfg)

	for _, hnr := range []float64{low, high} {
		if hnr < 20 {
			t.Errorf("clean tone HNR = %.2f dB, want >= 20 at any pitch in band", hnr)
		}
	}
}

func TestComputeHNRSilence(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 22050)
	if hnr := ComputeHNR(samples, 22050, DefaultHNRConfig()); hnr != 0 {
		t.Fatalf("silence HNR = %.2f, want 0", hnr)
	}
}
