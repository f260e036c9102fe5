package db

import (
	"fmt"
	"strings"

	"voice-screening/models"
	"voice-screening/utils"
)

// SessionStore persists screening sessions. Three backends are provided:
// SQLite for single-node deployments, MongoDB for shared ones, and a flat
// JSON file for demos.
type SessionStore interface {
	StoreSession(session *models.VoiceSession) error
	GetRecentSessions(limit int) ([]models.VoiceSession, error)
	GetSessionSummaries(limit int) ([]models.AnalysisSummary, error)
	Close() error
}

// NewSessionStore selects the backend from VOICE_DB_TYPE (sqlite, mongo or json).
func NewSessionStore() (SessionStore, error) {
	dbType := strings.ToLower(utils.GetEnv("VOICE_DB_TYPE", "sqlite"))
	switch dbType {
	case "sqlite":
		dsn := utils.GetEnv("VOICE_SQLITE_DSN", "data/voice-screening.db")
		return NewSQLiteClient(dsn)
	case "mongo", "mongodb":
		uri := utils.GetEnv("MONGO_URI", "mongodb://localhost:27017")
		return NewMongoClient(uri)
	case "json":
		path := utils.GetEnv("VOICE_SESSIONS_FILE", "data/sessions.json")
		return NewJSONFileStore(path)
	default:
		return nil, fmt.Errorf("unsupported VOICE_DB_TYPE: %s", dbType)
	}
}
