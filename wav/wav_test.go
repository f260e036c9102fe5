package wav

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWavRoundTrip(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 22050)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/22050)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	data := SamplesToWavBytes(samples)
	if err := WriteWavFile(path, data, 22050, 1, 16); err != nil {
		t.Fatalf("WriteWavFile failed: %v", err)
	}

	info, err := ReadWavInfo(path)
	if err != nil {
		t.Fatalf("ReadWavInfo failed: %v", err)
	}
	if info.Channels != 1 || info.SampleRate != 22050 || info.BitsPerSample != 16 {
		t.Fatalf("header = %d ch / %d Hz / %d bit", info.Channels, info.SampleRate, info.BitsPerSample)
	}
	if math.Abs(info.Duration-1.0) > 1e-6 {
		t.Errorf("duration = %g, want 1.0", info.Duration)
	}

	decoded, err := WavBytesToSamples(info.Data)
	if err != nil {
		t.Fatalf("WavBytesToSamples failed: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(samples))
	}
	// Encoder and decoder share the /32768 scale, so quantization error
	// stays within half an LSB.
	for i := range decoded {
		if math.Abs(decoded[i]-samples[i]) > 0.5/32768+1e-9 {
			t.Fatalf("sample %d: got %g, want %g", i, decoded[i], samples[i])
		}
	}
}

func TestSamplesToWavBytesRoundsToNearest(t *testing.T) {
	t.Parallel()

	// Values chosen so truncation toward zero would land one LSB off.
	in := []float64{16384.6 / 32768, -16384.6 / 32768, 0.21243833}
	decoded, err := WavBytesToSamples(SamplesToWavBytes(in))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []float64{16385.0 / 32768, -16385.0 / 32768, math.Round(0.21243833*32768) / 32768}
	for i := range want {
		if math.Abs(decoded[i]-want[i]) > 1e-12 {
			t.Errorf("sample %d = %.10f, want %.10f", i, decoded[i], want[i])
		}
	}
}

func TestReadWavInfoRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WriteWavFile(path, []byte{0, 0}, 22050, 1, 16); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := ReadWavInfo(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWavBytesToSamplesOddLength(t *testing.T) {
	t.Parallel()

	if _, err := WavBytesToSamples([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd-length payload")
	}
}

func TestSamplesToWavBytesClips(t *testing.T) {
	t.Parallel()

	data := SamplesToWavBytes([]float64{2.0, -2.0})
	decoded, err := WavBytesToSamples(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded[0] < 0.99 || decoded[1] > -0.99 {
		t.Errorf("clipping failed: %v", decoded)
	}
}

func TestDownmixToMono(t *testing.T) {
	t.Parallel()

	stereo := []float64{0.2, 0.4, -0.6, -0.2, 1.0, 0.0}
	mono := DownmixToMono(stereo, 2)
	want := []float64{0.3, -0.4, 0.5}
	if len(mono) != len(want) {
		t.Fatalf("got %d frames, want %d", len(mono), len(want))
	}
	for i := range want {
		if math.Abs(mono[i]-want[i]) > 1e-12 {
			t.Errorf("frame %d = %g, want %g", i, mono[i], want[i])
		}
	}

	passthrough := DownmixToMono(stereo, 1)
	if len(passthrough) != len(stereo) {
		t.Error("mono input should pass through unchanged")
	}
}

func TestResample(t *testing.T) {
	t.Parallel()

	in := make([]float64, 44100)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 44100)
	}

	out := Resample(in, 44100, 22050)
	if got, want := len(out), 22050; got != want {
		t.Fatalf("resampled length = %d, want %d", got, want)
	}

	// A 100 Hz sine survives 2:1 decimation nearly intact.
	for i := 0; i < len(out); i++ {
		expect := math.Sin(2 * math.Pi * 100 * float64(i) / 22050)
		if math.Abs(out[i]-expect) > 0.01 {
			t.Fatalf("sample %d = %g, want %g", i, out[i], expect)
		}
	}

	same := Resample(in, 22050, 22050)
	if len(same) != len(in) {
		t.Error("equal rates should return input unchanged")
	}
}
