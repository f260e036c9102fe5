package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"voice-screening/models"
	"voice-screening/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %s", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000" // 5 seconds
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %s", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %s", err)
	}

	return &SQLiteClient{db: db}, nil
}

func createTables(db *sql.DB) error {
	createSessionsTable := `
    CREATE TABLE IF NOT EXISTS voice_sessions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        patient_id TEXT,
        duration REAL NOT NULL DEFAULT 0,
        voiced_frames INTEGER NOT NULL DEFAULT 0,
        fo_mean REAL,
        jitter_local REAL,
        shimmer_local REAL,
        hnr REAL,
        ppe REAL,
        biomarkers TEXT NOT NULL,
        risk_score REAL NOT NULL DEFAULT 0,
        risk_label TEXT,
        confidence REAL,
        prediction INTEGER NOT NULL DEFAULT 0,
        model_version TEXT,
        interpretation TEXT,
        clinical_stage TEXT,
        findings TEXT,
        advisory TEXT,
        recording_path TEXT,
        latency_ms REAL NOT NULL DEFAULT 0
    );
    CREATE INDEX IF NOT EXISTS idx_voice_sessions_timestamp ON voice_sessions(timestamp);
    CREATE INDEX IF NOT EXISTS idx_voice_sessions_patient ON voice_sessions(patient_id);
    `

	if _, err := db.Exec(createSessionsTable); err != nil {
		return fmt.Errorf("error creating voice_sessions table: %s", err)
	}
	return nil
}

func (c *SQLiteClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// StoreSession inserts a session row and fills in its assigned ID.
func (c *SQLiteClient) StoreSession(session *models.VoiceSession) error {
	biomarkersJSON, err := json.Marshal(session.Biomarkers)
	if err != nil {
		return fmt.Errorf("error marshaling biomarkers: %s", err)
	}

	res, err := c.db.Exec(`
		INSERT INTO voice_sessions (
			timestamp, patient_id, duration, voiced_frames,
			fo_mean, jitter_local, shimmer_local, hnr, ppe,
			biomarkers, risk_score, risk_label, confidence, prediction,
			model_version, interpretation, clinical_stage,
			findings, advisory, recording_path, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.Timestamp,
		session.PatientID,
		session.Duration,
		session.VoicedFrames,
		session.FoMean,
		session.JitterLocal,
		session.ShimmerLocal,
		session.HNR,
		session.PPE,
		string(biomarkersJSON),
		session.RiskScore,
		session.RiskLabel,
		session.Confidence,
		session.Prediction,
		session.ModelVersion,
		session.Interpretation,
		session.ClinicalStage,
		nullableJSON(session.Findings),
		nullableJSON(session.Advisory),
		session.RecordingPath,
		session.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("error storing session: %s", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		session.ID = id
	}
	return nil
}

// GetRecentSessions returns the newest sessions first.
func (c *SQLiteClient) GetRecentSessions(limit int) ([]models.VoiceSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.Query(`
		SELECT id, timestamp, patient_id, duration, voiced_frames,
		       fo_mean, jitter_local, shimmer_local, hnr, ppe,
		       biomarkers, risk_score, risk_label, confidence, prediction,
		       model_version, interpretation, clinical_stage,
		       findings, advisory, recording_path, latency_ms
		FROM voice_sessions
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying sessions: %s", err)
	}
	defer rows.Close()

	var sessions []models.VoiceSession
	for rows.Next() {
		var s models.VoiceSession
		var biomarkersJSON string
		var findingsJSON, advisoryJSON *string

		err := rows.Scan(
			&s.ID,
			&s.Timestamp,
			&s.PatientID,
			&s.Duration,
			&s.VoicedFrames,
			&s.FoMean,
			&s.JitterLocal,
			&s.ShimmerLocal,
			&s.HNR,
			&s.PPE,
			&biomarkersJSON,
			&s.RiskScore,
			&s.RiskLabel,
			&s.Confidence,
			&s.Prediction,
			&s.ModelVersion,
			&s.Interpretation,
			&s.ClinicalStage,
			&findingsJSON,
			&advisoryJSON,
			&s.RecordingPath,
			&s.LatencyMs,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning session: %s", err)
		}

		if err := json.Unmarshal([]byte(biomarkersJSON), &s.Biomarkers); err != nil {
			return nil, fmt.Errorf("error unmarshaling biomarkers: %s", err)
		}
		if findingsJSON != nil {
			s.Findings = json.RawMessage(*findingsJSON)
		}
		if advisoryJSON != nil {
			s.Advisory = json.RawMessage(*advisoryJSON)
		}

		sessions = append(sessions, s)
	}

	return sessions, nil
}

// GetSessionSummaries returns lightweight rows for list views.
func (c *SQLiteClient) GetSessionSummaries(limit int) ([]models.AnalysisSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.Query(`
		SELECT id, timestamp, patient_id, risk_score, risk_label
		FROM voice_sessions
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying session summaries: %s", err)
	}
	defer rows.Close()

	var summaries []models.AnalysisSummary
	for rows.Next() {
		var s models.AnalysisSummary
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.PatientID, &s.RiskScore, &s.RiskLabel); err != nil {
			return nil, fmt.Errorf("error scanning summary: %s", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

func nullableJSON(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}
