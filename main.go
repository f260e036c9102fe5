package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"voice-screening/db"
	"voice-screening/risk"
	"voice-screening/utils"
	"voice-screening/voice"
	"voice-screening/wav"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
)

func main() {
	err := utils.CreateFolder("tmp")
	if err != nil {
		logger := utils.GetLogger()
		err := xerrors.New(err)
		ctx := context.Background()
		logger.ErrorContext(ctx, "Failed create tmp dir.", slog.Any("error", err))
	}

	if len(os.Args) < 2 {
		fmt.Println("Expected 'serve', 'analyze' or 'sessions' subcommand")
		os.Exit(1)
	}
	_ = godotenv.Load()

	switch os.Args[1] {
	case "serve":
		if err := wav.CheckFFmpegAvailable(); err != nil {
			log.Printf("WARNING: %v\n", err)
			log.Println("The server will start but non-WAV uploads will fail until FFmpeg is installed.")
		} else {
			log.Println("FFmpeg is available")
		}

		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		protocol := serveCmd.String("proto", "http", "Protocol to use (http or https)")
		port := serveCmd.String("p", utils.GetEnv("SERVE_PORT", "5000"), "Port to use")
		serveCmd.Parse(os.Args[2:])
		serve(*protocol, *port)
	case "analyze":
		analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
		patientID := analyzeCmd.String("patient", "", "Patient identifier to attach to the session")
		save := analyzeCmd.Bool("save", false, "Persist the session to the configured store")
		analyzeCmd.Parse(os.Args[2:])
		if analyzeCmd.NArg() < 1 {
			fmt.Println("Usage: analyze [-patient id] [-save] <audio file>")
			os.Exit(1)
		}
		analyzeFile(analyzeCmd.Arg(0), *patientID, *save)
	case "sessions":
		sessionsCmd := flag.NewFlagSet("sessions", flag.ExitOnError)
		limit := sessionsCmd.String("n", "20", "Maximum number of sessions to list")
		sessionsCmd.Parse(os.Args[2:])
		n, err := strconv.Atoi(*limit)
		if err != nil {
			log.Fatalf("invalid -n value '%s': %v", *limit, err)
		}
		listSessions(n)
	default:
		fmt.Println("Expected 'serve', 'analyze' or 'sessions' subcommand")
		os.Exit(1)
	}
}

func defaultModelPath() string {
	return utils.GetEnv("VOICE_MODEL_PATH", filepath.Join("risk", "parkinson_model.json"))
}

func analyzeFile(path, patientID string, save bool) {
	started := time.Now()

	extraction, err := voice.ExtractBiomarkersFromFile(path)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	svc := risk.NewService(defaultModelPath())
	result, err := runScreening(svc, extraction, started)
	if err != nil {
		log.Fatalf("risk scoring failed: %v", err)
	}

	if save {
		store, err := db.NewSessionStore()
		if err != nil {
			log.Fatalf("failed to open session store: %v", err)
		}
		defer store.Close()
		session := buildSession(result, patientID)
		if err := store.StoreSession(session); err != nil {
			log.Fatalf("failed to store session: %v", err)
		}
		log.Printf("Stored session %d", session.ID)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
}

func listSessions(limit int) {
	store, err := db.NewSessionStore()
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer store.Close()

	summaries, err := store.GetSessionSummaries(limit)
	if err != nil {
		log.Fatalf("failed to list sessions: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summaries); err != nil {
		log.Fatalf("failed to encode sessions: %v", err)
	}
}
