package voice

// Client audio intake: the socket and HTTP handlers submit recordings as
// base64-encoded PCM. The payload is written to a temporary WAV, normalized
// to mono at the analysis rate, and decoded into float samples for the
// extraction pipeline. The normalized recording can optionally be kept on
// disk for later review.

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"voice-screening/models"
	"voice-screening/utils"
	"voice-screening/wav"
)

// AudioSample bundles decoded PCM samples together with contextual metadata.
type AudioSample struct {
	Samples    []float64
	SampleRate int
	Duration   float64
	Persisted  string
}

// PrepareAudioSample converts the base64 payload emitted by the client into
// mono PCM samples at the analysis rate.
func PrepareAudioSample(recData models.RecordData, persist bool) (*AudioSample, error) {
	decodedAudioData, err := base64.StdEncoding.DecodeString(recData.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 audio: %w", err)
	}

	if err := utils.CreateFolder("tmp"); err != nil {
		return nil, fmt.Errorf("unable to create tmp folder: %w", err)
	}

	fileName := fmt.Sprintf("rec_%d_%d.wav", time.Now().UnixNano(), utils.GenerateUniqueID())
	filePath := filepath.Join("tmp", fileName)

	if err := wav.WriteWavFile(filePath, decodedAudioData, recData.SampleRate, recData.Channels, recData.SampleSize); err != nil {
		return nil, fmt.Errorf("failed to write wav file: %w", err)
	}

	converted, err := wav.ConvertToWAV(filePath, 1)
	if err != nil {
		_ = os.Remove(filePath)
		return nil, &ConversionError{Cause: err}
	}

	wavInfo, err := wav.ReadWavInfo(converted)
	if err != nil {
		_ = os.Remove(filePath)
		_ = os.Remove(converted)
		return nil, fmt.Errorf("failed to read wav info: %w", err)
	}

	samples, err := wav.WavBytesToSamples(wavInfo.Data)
	if err != nil {
		_ = os.Remove(filePath)
		_ = os.Remove(converted)
		return nil, fmt.Errorf("failed to convert samples: %w", err)
	}

	// clean temporary raw capture
	_ = os.Remove(filePath)

	result := &AudioSample{
		Samples:    samples,
		SampleRate: wavInfo.SampleRate,
		Duration:   float64(len(samples)) / float64(wavInfo.SampleRate),
	}

	if persist {
		recordingDir := utils.GetEnv("VOICE_RECORDING_DIR", "recordings")
		if err := utils.CreateFolder(recordingDir); err == nil {
			destination := filepath.Join(recordingDir, filepath.Base(converted))
			if err := os.Rename(converted, destination); err == nil {
				result.Persisted = destination
			} else {
				_ = os.Remove(converted)
			}
		} else {
			_ = os.Remove(converted)
		}
	} else {
		_ = os.Remove(converted)
	}

	return result, nil
}
