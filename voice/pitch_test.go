package voice

import (
	"math"
	"testing"
)

func sineWave(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestTrackPitchSine(t *testing.T) {
	t.Parallel()

	const freq = 150.0
	samples := sineWave(freq, 22050, 3.0)

	track := TrackPitch(samples, 22050, DefaultPitchConfig())
	voiced := VoicedFrequencies(track)
	if len(voiced) < 10 {
		t.Fatalf("expected a mostly voiced track, got %d voiced frames", len(voiced))
	}

	var sum float64
	for _, f := range voiced {
		sum += f
	}
	mean := sum / float64(len(voiced))
	if math.Abs(mean-freq) > 5 {
		t.Fatalf("mean F0 = %.2f Hz, want within 5 Hz of %.0f", mean, freq)
	}
}

func TestTrackPitchSilence(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 3*22050)
	track := TrackPitch(samples, 22050, DefaultPitchConfig())
	voiced := VoicedFrequencies(track)
	if len(voiced) != 0 {
		t.Fatalf("silence produced %d voiced frames", len(voiced))
	}
}

func TestTrackPitchRespectsRange(t *testing.T) {
	t.Parallel()

	samples := sineWave(220, 22050, 2.5)
	track := TrackPitch(samples, 22050, DefaultPitchConfig())
	for _, frame := range track {
		if frame.Frequency == 0 {
			continue
		}
		if frame.Frequency < 75 || frame.Frequency > 500 {
			t.Fatalf("voiced frame at %.3fs outside configured range: %.2f Hz", frame.Time, frame.Frequency)
		}
	}
}

func TestExtractPulsesPeriodicity(t *testing.T) {
	t.Parallel()

	const freq = 200.0
	const sampleRate = 22050
	samples := sineWave(freq, sampleRate, 2.0)

	track := TrackPitch(samples, sampleRate, DefaultPitchConfig())
	pulses := ExtractPulses(samples, sampleRate, track, DefaultPulseConfig())
	if len(pulses) < 50 {
		t.Fatalf("expected a dense pulse train, got %d pulses", len(pulses))
	}

	times := PulseTimes(pulses, sampleRate)
	expected := 1.0 / freq
	for i := 1; i < len(times); i++ {
		period := times[i] - times[i-1]
		if math.Abs(period-expected) > 0.3*expected {
			t.Fatalf("pulse %d: period %.5fs deviates from %.5fs", i, period, expected)
		}
	}
}
