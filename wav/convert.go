package wav

// Audio Conversion
//
// Uploaded recordings arrive as m4a, ogg, webm, mp4 or wav depending on the
// client. ConvertToWAV normalises all of them to the canonical analysis
// format: 16-bit mono PCM at 22050 Hz.
//
// Primary path: ffmpeg, which handles every container the browsers emit.
// Fallback path: the native reader in wav.go, used when ffmpeg is missing or
// times out — it only understands PCM WAV but keeps the pipeline alive on
// minimal deployments.

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// AnalysisSampleRate is the canonical rate every recording is resampled to
// before feature extraction.
const AnalysisSampleRate = 22050

const ffmpegTimeout = 30 * time.Second

// CheckFFmpegAvailable reports whether ffmpeg can be found on PATH.
func CheckFFmpegAvailable() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return nil
}

// ConvertToWAV produces a mono 16-bit 22050 Hz WAV next to the input file
// and returns its path. The caller owns cleanup of the converted file.
func ConvertToWAV(inputPath string, channels int) (string, error) {
	if channels <= 0 {
		channels = 1
	}

	outputPath := convertedPath(inputPath)

	ffmpegErr := runFFmpeg(inputPath, outputPath, channels)
	if ffmpegErr == nil {
		return outputPath, nil
	}

	if fallbackErr := convertNative(inputPath, outputPath); fallbackErr != nil {
		return "", fmt.Errorf("audio conversion failed (ffmpeg: %v; native: %v)", ffmpegErr, fallbackErr)
	}
	return outputPath, nil
}

func convertedPath(inputPath string) string {
	base := inputPath
	if idx := strings.LastIndex(inputPath, "."); idx > strings.LastIndex(inputPath, "/") {
		base = inputPath[:idx]
	}
	return base + "_converted.wav"
}

func runFFmpeg(inputPath, outputPath string, channels int) error {
	ctx, cancel := context.WithTimeout(context.Background(), ffmpegTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-ac", fmt.Sprintf("%d", channels),
		"-ar", fmt.Sprintf("%d", AnalysisSampleRate),
		"-sample_fmt", "s16",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("ffmpeg timed out after %s", ffmpegTimeout)
	}
	if err != nil {
		detail := tail(string(output), 200)
		return fmt.Errorf("ffmpeg failed: %w (%s)", err, detail)
	}
	return nil
}

// convertNative reads PCM WAV directly, downmixes to mono and resamples to
// the analysis rate.
func convertNative(inputPath, outputPath string) error {
	info, err := ReadWavInfo(inputPath)
	if err != nil {
		return err
	}

	samples, err := WavBytesToSamples(info.Data)
	if err != nil {
		return err
	}

	mono := DownmixToMono(samples, info.Channels)
	resampled := Resample(mono, info.SampleRate, AnalysisSampleRate)

	return WriteWavFile(outputPath, SamplesToWavBytes(resampled), AnalysisSampleRate, 1, 16)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
