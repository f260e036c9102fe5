package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voice-screening/chat"
	"voice-screening/db"
	"voice-screening/risk"
	"voice-screening/tts"
	"voice-screening/utils"
	"voice-screening/voice"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"
)

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Message: message})
}

// newAudioAnalysisHandler accepts a multipart upload, runs the screening
// pipeline and stores the resulting session.
func newAudioAnalysisHandler(svc *risk.Service, store db.SessionStore, persist bool) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.Background()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if err := r.ParseMultipartForm(64 << 20); err != nil {
			logger.ErrorContext(ctx, "failed to parse multipart form", slog.Any("error", err))
			writeJSONError(w, http.StatusBadRequest, "invalid upload payload")
			return
		}

		patientID := strings.TrimSpace(r.FormValue("patientId"))

		file, header, err := r.FormFile("audio")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "no audio file provided")
			return
		}
		defer file.Close()

		tempDir := filepath.Join("tmp", "uploads")
		if err := utils.CreateFolder(tempDir); err != nil {
			logger.ErrorContext(ctx, "failed to create temporary upload dir", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "internal error while preparing upload")
			return
		}

		ext := filepath.Ext(header.Filename)
		if ext == "" {
			ext = ".wav"
		}
		tempFile, err := os.CreateTemp(tempDir, "upload-*"+ext)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create temp file", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "internal error while preparing upload")
			return
		}
		audioPath := tempFile.Name()
		if _, err := io.Copy(tempFile, file); err != nil {
			tempFile.Close()
			os.Remove(audioPath)
			logger.ErrorContext(ctx, "failed to persist upload", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "internal error while preparing upload")
			return
		}
		tempFile.Close()
		defer os.Remove(audioPath)

		started := time.Now()

		extraction, err := voice.ExtractBiomarkersFromFile(audioPath)
		if err != nil {
			handleAnalysisError(w, ctx, logger, err)
			return
		}

		result, err := runScreening(svc, extraction, started)
		if err != nil {
			handleAnalysisError(w, ctx, logger, err)
			return
		}

		if persist {
			recordingDir := utils.GetEnv("VOICE_RECORDING_DIR", "recordings")
			if err := utils.CreateFolder(recordingDir); err == nil {
				destination := filepath.Join(recordingDir, filepath.Base(audioPath))
				if err := os.Rename(audioPath, destination); err == nil {
					result.RecordingPath = destination
				}
			}
		}

		if store != nil {
			session := buildSession(result, patientID)
			if err := store.StoreSession(session); err != nil {
				err := xerrors.New(err)
				logger.ErrorContext(ctx, "failed to store session", slog.Any("error", err))
			}
		}

		log.Printf("[HTTP] Screening complete: label=%s, score=%.1f, latency=%.2fms\n",
			result.Assessment.RiskLabel, result.Assessment.RiskScore, result.LatencyMs)
		writeJSON(w, http.StatusOK, result)
	}
}

// handleAnalysisError maps pipeline failures onto HTTP statuses: bad input
// gets 422, a missing model gets 503, everything else is a 500.
func handleAnalysisError(w http.ResponseWriter, ctx context.Context, logger *slog.Logger, err error) {
	switch {
	case voice.IsInputQualityError(err):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, risk.ErrModelUnavailable):
		wrapped := xerrors.New(err)
		logger.ErrorContext(ctx, "risk model unavailable", slog.Any("error", wrapped))
		writeJSONError(w, http.StatusServiceUnavailable, "risk model unavailable")
	default:
		wrapped := xerrors.New(err)
		logger.ErrorContext(ctx, "analysis failed", slog.Any("error", wrapped))
		writeJSONError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func newSessionsHandler(store db.SessionStore) http.HandlerFunc {
	logger := utils.GetLogger()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.Background()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		if r.URL.Query().Get("full") == "true" {
			sessions, err := store.GetRecentSessions(limit)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load sessions", slog.Any("error", err))
				writeJSONError(w, http.StatusInternalServerError, "failed to load sessions")
				return
			}
			writeJSON(w, http.StatusOK, sessions)
			return
		}

		summaries, err := store.GetSessionSummaries(limit)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load sessions", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "failed to load sessions")
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func serve(protocol, port string) {
	protocol = strings.ToLower(protocol)
	var allowOriginFunc = func(r *http.Request) bool {
		return true
	}

	svc := risk.NewService(defaultModelPath())
	version, err := svc.ModelInfo()
	if err != nil {
		log.Fatalf("failed to load risk model: %v", err)
	}
	log.Printf("Loaded risk model: %s", version)

	store, err := db.NewSessionStore()
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer store.Close()

	var gemini *chat.GeminiClient
	if os.Getenv("GEMINI_API_KEY") != "" {
		gemini, err = chat.NewGeminiClient()
		if err != nil {
			log.Printf("Chat assistant disabled: %v\n", err)
			gemini = nil
		}
	} else {
		log.Println("GEMINI_API_KEY not set, chat assistant disabled")
	}

	var speech *tts.GoogleTTSClient
	if os.Getenv("GOOGLE_TTS_API_KEY") != "" {
		speech, err = tts.NewGoogleTTSClient()
		if err != nil {
			log.Printf("Speech synthesis disabled: %v\n", err)
			speech = nil
		}
	} else {
		log.Println("GOOGLE_TTS_API_KEY not set, speech synthesis disabled")
	}

	persistRecordings := strings.EqualFold(utils.GetEnv("VOICE_PERSIST_RECORDINGS", "false"), "true")
	controller := newSocketController(svc, store, gemini, speech, persistRecordings)

	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: allowOriginFunc,
			},
			&polling.Transport{
				CheckOrigin: allowOriginFunc,
			},
		},
	})

	server.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		connURL := socket.URL()
		log.Printf("CONNECTED: %s, transport: %s, remote addr: %s\n", socket.ID(), connURL.String(), socket.RemoteAddr())
		controller.emitModelInfo(socket)
		return nil
	})

	server.OnEvent("/", "requestModelInfo", func(socket socketio.Conn) {
		controller.handleRequestModelInfo(socket)
	})

	server.OnEvent("/", "newRecording", func(socket socketio.Conn, msg string) {
		log.Printf("newRecording event received from %s, data length: %d\n", socket.ID(), len(msg))
		// Run handler in goroutine to prevent blocking, with panic recovery
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleNewRecording for socket %s: %v\n", socket.ID(), r)
					socket.Emit("analysisError", map[string]string{"message": "internal server error during processing"})
				}
			}()
			controller.handleNewRecording(socket, msg)
		}()
	})

	server.OnEvent("/", "chatMessage", func(socket socketio.Conn, msg string) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleChatMessage for socket %s: %v\n", socket.ID(), r)
					socket.Emit("chatError", map[string]string{"message": "internal server error"})
				}
			}()
			controller.handleChatMessage(socket, msg)
		}()
	})

	server.OnEvent("/", "speakInterpretation", func(socket socketio.Conn, msg string) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleSpeakInterpretation for socket %s: %v\n", socket.ID(), r)
					socket.Emit("speechError", map[string]string{"message": "internal server error"})
				}
			}()
			controller.handleSpeakInterpretation(socket, msg)
		}()
	})

	server.OnEvent("/", "explainAssessment", func(socket socketio.Conn, msg string) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleExplainAssessment for socket %s: %v\n", socket.ID(), r)
					socket.Emit("chatError", map[string]string{"message": "internal server error"})
				}
			}()
			controller.handleExplainAssessment(socket, msg)
		}()
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("meet error:", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("Socket disconnected - ID: %s, Reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()
	defer server.Close()

	serveHTTPS := protocol == "https"

	analysisHandler := newAudioAnalysisHandler(svc, store, persistRecordings)
	sessionsHandler := newSessionsHandler(store)
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	mux.HandleFunc("/api/audio/analyze", analysisHandler)
	mux.HandleFunc("/api/sessions", sessionsHandler)
	mux.Handle("/", http.FileServer(http.Dir("static")))

	serveHTTP(server, serveHTTPS, port, mux)
}

func serveHTTP(socketServer *socketio.Server, serveHTTPS bool, port string, handler http.Handler) {
	if handler == nil {
		handler = socketServer
	}
	if serveHTTPS {
		httpsAddr := ":" + port
		httpsServer := &http.Server{
			Addr: httpsAddr,
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			Handler: handler,
		}

		cert_key := utils.GetEnv("CERT_KEY", "")
		cert_file := utils.GetEnv("CERT_FILE", "")
		if cert_key == "" || cert_file == "" {
			log.Fatal("Missing cert")
		}

		log.Printf("Starting HTTPS server on %s\n", httpsAddr)
		if err := httpsServer.ListenAndServeTLS(cert_file, cert_key); err != nil {
			log.Fatalf("HTTPS server ListenAndServeTLS: %v", err)
		}
	}

	log.Printf("Starting HTTP server on port %v", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}
