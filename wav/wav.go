package wav

// WAV Reading and Writing
//
// Minimal RIFF/WAVE support for the analysis pipeline: parse the fmt and
// data chunks of PCM files, convert 16-bit little-endian payloads to float64
// samples in [-1, 1), and write canonical mono files back out. Anything the
// native reader cannot handle goes through the ffmpeg conversion path in
// convert.go first.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// WavInfo describes a parsed WAV file. Data holds the raw PCM payload of the
// data chunk, still interleaved when the file is multi-channel.
type WavInfo struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Data          []byte
	Duration      float64
}

// ReadWavInfo parses the RIFF header and chunk list of a WAV file. Only
// uncompressed PCM (format tag 1) with 16-bit samples is accepted; other
// encodings must be routed through ffmpeg.
func ReadWavInfo(path string) (*WavInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav file: %w", err)
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}

	info := &WavInfo{}
	var haveFmt, haveData bool

	offset := 12
	for offset+8 <= len(raw) {
		chunkID := string(raw[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(raw) {
			chunkSize = len(raw) - body // tolerate truncated trailing chunk
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, errors.New("fmt chunk too small")
			}
			audioFormat := binary.LittleEndian.Uint16(raw[body : body+2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported audio format tag %d (PCM only)", audioFormat)
			}
			info.Channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			haveFmt = true
		case "data":
			info.Data = raw[body : body+chunkSize]
			haveData = true
		}

		// chunks are word-aligned
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !haveFmt || !haveData {
		return nil, errors.New("missing fmt or data chunk")
	}
	if info.BitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d (16-bit PCM only)", info.BitsPerSample)
	}
	if info.Channels <= 0 || info.SampleRate <= 0 {
		return nil, errors.New("invalid wav header values")
	}

	bytesPerFrame := info.Channels * info.BitsPerSample / 8
	info.Duration = float64(len(info.Data)) / float64(bytesPerFrame) / float64(info.SampleRate)

	return info, nil
}

// WavBytesToSamples converts a 16-bit little-endian PCM payload into float64
// samples scaled to [-1, 1).
func WavBytesToSamples(data []byte) ([]float64, error) {
	if len(data)%2 != 0 {
		return nil, errors.New("pcm payload has odd length")
	}
	samples := make([]float64, len(data)/2)
	for i := range samples {
		value := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float64(value) / 32768.0
	}
	return samples, nil
}

// DownmixToMono averages interleaved channels into a single channel.
func DownmixToMono(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}
	frameCount := len(samples) / channels
	mono := make([]float64, frameCount)
	for i := 0; i < frameCount; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Resample converts samples from one rate to another with linear
// interpolation. Good enough for the fallback path; the primary ffmpeg path
// uses a proper polyphase resampler.
func Resample(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}

// SamplesToWavBytes converts float64 samples back to 16-bit little-endian
// PCM, clipping anything outside [-1, 1). The scale mirrors
// WavBytesToSamples so a round trip loses at most half an LSB.
func SamplesToWavBytes(samples []float64) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Round(s * 32768.0)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(data[i*2:i*2+2], uint16(int16(v)))
	}
	return data
}

// WriteWavFile writes a PCM payload with a standard 44-byte RIFF header.
func WriteWavFile(path string, data []byte, sampleRate, channels, bitsPerSample int) error {
	if channels <= 0 || sampleRate <= 0 || bitsPerSample <= 0 {
		return errors.New("invalid wav write parameters")
	}

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return os.WriteFile(path, buf.Bytes(), 0644)
}
