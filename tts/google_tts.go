package tts

// Spoken result delivery. Screening users skew older and some prefer hearing
// the interpretation read aloud; the client plays the MP3 returned here after
// an assessment arrives.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

type GoogleTTSClient struct {
	apiKey string
}

type TTSRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
		SsmlGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string  `json:"audioEncoding"`
		SpeakingRate    float64 `json:"speakingRate,omitempty"`
		Pitch           float64 `json:"pitch,omitempty"`
		VolumeGainDb    float64 `json:"volumeGainDb,omitempty"`
		SampleRateHertz int     `json:"sampleRateHertz,omitempty"`
	} `json:"audioConfig"`
}

type TTSResponse struct {
	AudioContent string `json:"audioContent"`
}

func NewGoogleTTSClient() (*GoogleTTSClient, error) {
	apiKey := os.Getenv("GOOGLE_TTS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_TTS_API_KEY environment variable is required")
	}

	return &GoogleTTSClient{
		apiKey: apiKey,
	}, nil
}

func (g *GoogleTTSClient) SynthesizeText(text string) ([]byte, error) {
	ctx := context.Background()

	ttsReq := TTSRequest{}
	ttsReq.Input.Text = text
	ttsReq.Voice.LanguageCode = "en-US"
	ttsReq.Voice.Name = "en-GB-Standard-F"
	ttsReq.Voice.SsmlGender = "FEMALE"
	ttsReq.AudioConfig.AudioEncoding = "MP3"
	// Slightly slower than neutral: the text is clinical and unfamiliar.
	ttsReq.AudioConfig.SpeakingRate = 0.95
	ttsReq.AudioConfig.Pitch = 0.0
	ttsReq.AudioConfig.VolumeGainDb = 0.0
	ttsReq.AudioConfig.SampleRateHertz = 24000

	jsonData, err := json.Marshal(ttsReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %v", err)
	}

	url := fmt.Sprintf("https://texttospeech.googleapis.com/v1/text:synthesize?key=%s", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, string(body))
	}

	var ttsResp TTSResponse
	if err := json.Unmarshal(body, &ttsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TTS response: %v", err)
	}

	audioData, err := base64.StdEncoding.DecodeString(ttsResp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %v", err)
	}

	return audioData, nil
}

// SpeakInterpretation renders an assessment interpretation as base64 MP3
// ready for a data URL on the client.
func (g *GoogleTTSClient) SpeakInterpretation(interpretation string) (string, error) {
	audio, err := g.SynthesizeText(interpretation)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}
