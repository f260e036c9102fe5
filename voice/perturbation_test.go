package voice

import (
	"math"
	"testing"
)

func steadyPulseTimes(period float64, count int) []float64 {
	times := make([]float64, count)
	for i := range times {
		times[i] = float64(i) * period
	}
	return times
}

func TestComputeJitterSteadyTrain(t *testing.T) {
	t.Parallel()

	times := steadyPulseTimes(0.005, 100)
	jitter, err := ComputeJitter(times, DefaultPerturbationBounds())
	if err != nil {
		t.Fatalf("ComputeJitter returned error: %v", err)
	}

	if jitter.Local > 1e-9 {
		t.Errorf("steady train should have near-zero local jitter, got %g", jitter.Local)
	}
	if jitter.Absolute > 1e-12 {
		t.Errorf("steady train should have near-zero absolute jitter, got %g", jitter.Absolute)
	}
}

func TestComputeJitterDDPIdentity(t *testing.T) {
	t.Parallel()

	// Alternate period lengths by 1% so all perturbation measures are nonzero.
	times := make([]float64, 80)
	tcur := 0.0
	for i := range times {
		times[i] = tcur
		period := 0.005
		if i%2 == 0 {
			period *= 1.01
		}
		tcur += period
	}

	jitter, err := ComputeJitter(times, DefaultPerturbationBounds())
	if err != nil {
		t.Fatalf("ComputeJitter returned error: %v", err)
	}
	if jitter.Local <= 0 {
		t.Fatalf("expected nonzero jitter for alternating train, got %g", jitter.Local)
	}
	if math.Abs(jitter.DDP-3*jitter.RAP) > 1e-12 {
		t.Errorf("DDP = %g, want exactly 3*RAP = %g", jitter.DDP, 3*jitter.RAP)
	}
}

func TestComputeJitterTooFewPulses(t *testing.T) {
	t.Parallel()

	if _, err := ComputeJitter([]float64{0, 0.005}, DefaultPerturbationBounds()); err == nil {
		t.Fatal("expected error for two-pulse train")
	}
	if _, err := ComputeJitter(nil, DefaultPerturbationBounds()); err == nil {
		t.Fatal("expected error for empty train")
	}
}

func TestComputeJitterIgnoresOutOfBoundsPeriods(t *testing.T) {
	t.Parallel()

	// A long dropout in the middle must not contaminate the statistics.
	times := steadyPulseTimes(0.005, 40)
	shifted := make([]float64, 0, 80)
	shifted = append(shifted, times...)
	gapStart := times[len(times)-1] + 0.5 // 500 ms dropout
	for i := 0; i < 40; i++ {
		shifted = append(shifted, gapStart+float64(i)*0.005)
	}

	jitter, err := ComputeJitter(shifted, DefaultPerturbationBounds())
	if err != nil {
		t.Fatalf("ComputeJitter returned error: %v", err)
	}
	if jitter.Local > 1e-9 {
		t.Errorf("dropout leaked into jitter: %g", jitter.Local)
	}
}

func TestComputeShimmerSteadyAmplitudes(t *testing.T) {
	t.Parallel()

	times := steadyPulseTimes(0.005, 100)
	amps := make([]float64, 100)
	for i := range amps {
		amps[i] = 0.5
	}

	shimmer, err := ComputeShimmer(times, amps, DefaultPerturbationBounds())
	if err != nil {
		t.Fatalf("ComputeShimmer returned error: %v", err)
	}
	if shimmer.Local > 1e-9 {
		t.Errorf("steady amplitudes should have near-zero shimmer, got %g", shimmer.Local)
	}
	if shimmer.LocalDB > 1e-9 {
		t.Errorf("steady amplitudes should have near-zero dB shimmer, got %g", shimmer.LocalDB)
	}
}

func TestComputeShimmerDDAIdentity(t *testing.T) {
	t.Parallel()

	times := steadyPulseTimes(0.005, 80)
	amps := make([]float64, 80)
	for i := range amps {
		amps[i] = 0.5
		if i%2 == 0 {
			amps[i] = 0.55
		}
	}

	shimmer, err := ComputeShimmer(times, amps, DefaultPerturbationBounds())
	if err != nil {
		t.Fatalf("ComputeShimmer returned error: %v", err)
	}
	if shimmer.Local <= 0 {
		t.Fatalf("expected nonzero shimmer for alternating amplitudes, got %g", shimmer.Local)
	}
	if math.Abs(shimmer.DDA-3*shimmer.APQ3) > 1e-12 {
		t.Errorf("DDA = %g, want exactly 3*APQ3 = %g", shimmer.DDA, 3*shimmer.APQ3)
	}
}

func TestComputeShimmerTooFewPulses(t *testing.T) {
	t.Parallel()

	if _, err := ComputeShimmer([]float64{0, 0.005}, []float64{0.5, 0.5}, DefaultPerturbationBounds()); err == nil {
		t.Fatal("expected error for two-pulse train")
	}

	// Zero amplitudes cannot be compared either.
	times := steadyPulseTimes(0.005, 10)
	amps := make([]float64, 10)
	if _, err := ComputeShimmer(times, amps, DefaultPerturbationBounds()); err == nil {
		t.Fatal("expected error for all-zero amplitudes")
	}
}
