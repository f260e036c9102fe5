package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"voice-screening/chat"
	"voice-screening/db"
	"voice-screening/models"
	"voice-screening/risk"
	"voice-screening/tts"
	"voice-screening/utils"
	"voice-screening/voice"

	socketio "github.com/googollee/go-socket.io"
	"github.com/mdobak/go-xerrors"
)

type socketController struct {
	risk              *risk.Service
	store             db.SessionStore
	gemini            *chat.GeminiClient
	speech            *tts.GoogleTTSClient
	persistRecordings bool
}

func newSocketController(svc *risk.Service, store db.SessionStore, gemini *chat.GeminiClient, speech *tts.GoogleTTSClient, persist bool) *socketController {
	return &socketController{risk: svc, store: store, gemini: gemini, speech: speech, persistRecordings: persist}
}

func (c *socketController) emitModelInfo(socket socketio.Conn) {
	version, err := c.risk.ModelInfo()
	if err != nil {
		socket.Emit("modelInfo", map[string]string{"status": "unavailable"})
		return
	}
	socket.Emit("modelInfo", map[string]string{
		"status":  "ready",
		"version": version,
	})
}

func (c *socketController) handleRequestModelInfo(socket socketio.Conn) {
	c.emitModelInfo(socket)
}

func (c *socketController) handleNewRecording(socket socketio.Conn, recordData string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	if recordData == "" {
		logger.ErrorContext(ctx, "no data received in newRecording event")
		socket.Emit("analysisError", map[string]string{"message": "no audio data received"})
		return
	}

	var recData models.RecordData
	if err := json.Unmarshal([]byte(recordData), &recData); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to parse record payload", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "invalid audio payload"})
		return
	}

	logger.InfoContext(ctx, "received recording",
		slog.String("socketID", socket.ID()),
		slog.Int("sampleRate", recData.SampleRate),
		slog.Int("channels", recData.Channels),
		slog.Int("sampleSize", recData.SampleSize),
		slog.Float64("duration", recData.Duration),
	)

	started := time.Now()

	audioSample, err := voice.PrepareAudioSample(recData, c.persistRecordings)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to prepare audio sample", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "unable to decode audio"})
		return
	}

	logger.InfoContext(ctx, "prepared audio sample",
		slog.String("socketID", socket.ID()),
		slog.Int("sampleRate", audioSample.SampleRate),
		slog.Int("frameCount", len(audioSample.Samples)),
		slog.Float64("duration", audioSample.Duration),
		slog.Bool("persisted", audioSample.Persisted != ""),
	)

	extraction, err := voice.ExtractFromSamples(audioSample.Samples, audioSample.SampleRate)
	if err != nil {
		if voice.IsInputQualityError(err) {
			logger.WarnContext(ctx, "recording rejected", slog.String("reason", err.Error()))
			socket.Emit("analysisError", map[string]string{"message": err.Error()})
			return
		}
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to extract biomarkers", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "unable to extract biomarkers"})
		return
	}

	result, err := runScreening(c.risk, extraction, started)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to score recording", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "risk model unavailable"})
		return
	}
	result.RecordingPath = audioSample.Persisted

	if c.store != nil {
		session := buildSession(result, recData.PatientID)
		if err := c.store.StoreSession(session); err != nil {
			err := xerrors.New(err)
			logger.ErrorContext(ctx, "failed to store session", slog.Any("error", err))
		}
	}

	log.Printf("Screening complete for %s: label=%s, score=%.1f, latency=%.2fms\n",
		socket.ID(), result.Assessment.RiskLabel, result.Assessment.RiskScore, result.LatencyMs)
	socket.Emit("assessment", result)
}

func (c *socketController) handleChatMessage(socket socketio.Conn, message string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	if c.gemini == nil {
		socket.Emit("chatError", map[string]string{"message": "chat assistant is not configured"})
		return
	}
	if message == "" {
		socket.Emit("chatError", map[string]string{"message": "empty message"})
		return
	}

	response, err := c.gemini.GenerateResponse(message)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "chat generation failed", slog.Any("error", err))
		socket.Emit("chatError", map[string]string{"message": "assistant is unavailable right now"})
		return
	}
	socket.Emit("chatResponse", map[string]string{"message": response})
}

func (c *socketController) handleSpeakInterpretation(socket socketio.Conn, text string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	if c.speech == nil {
		socket.Emit("speechError", map[string]string{"message": "speech synthesis is not configured"})
		return
	}
	if text == "" {
		socket.Emit("speechError", map[string]string{"message": "empty text"})
		return
	}

	audio, err := c.speech.SpeakInterpretation(text)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "speech synthesis failed", slog.Any("error", err))
		socket.Emit("speechError", map[string]string{"message": "speech synthesis failed"})
		return
	}
	socket.Emit("interpretationAudio", map[string]string{
		"encoding": "mp3",
		"audio":    audio,
	})
}

type explainRequest struct {
	RiskLabel string   `json:"riskLabel"`
	RiskScore float64  `json:"riskScore"`
	Stage     string   `json:"stage"`
	Findings  []string `json:"findings"`
}

func (c *socketController) handleExplainAssessment(socket socketio.Conn, payload string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	if c.gemini == nil {
		socket.Emit("chatError", map[string]string{"message": "chat assistant is not configured"})
		return
	}

	var req explainRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to parse explain payload", slog.Any("error", err))
		socket.Emit("chatError", map[string]string{"message": "invalid explain payload"})
		return
	}

	explanation, err := c.gemini.ExplainAssessment(req.RiskLabel, req.RiskScore, req.Stage, req.Findings)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "explanation generation failed", slog.Any("error", err))
		socket.Emit("chatError", map[string]string{"message": "assistant is unavailable right now"})
		return
	}
	socket.Emit("assessmentExplanation", map[string]string{"message": explanation})
}
