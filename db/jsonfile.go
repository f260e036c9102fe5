package db

// Flat-file session store. Useful for demos and single-user installs where
// even SQLite is more than needed; every session lives in one JSON array on
// disk.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"voice-screening/models"
	"voice-screening/utils"
)

type JSONFileStore struct {
	mu   sync.RWMutex
	path string
}

func NewJSONFileStore(path string) (*JSONFileStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := utils.CreateFolder(dir); err != nil {
			return nil, fmt.Errorf("error creating directory: %v", err)
		}
	}
	return &JSONFileStore{path: path}, nil
}

func (s *JSONFileStore) Close() error { return nil }

func (s *JSONFileStore) loadSessionsLocked() ([]models.VoiceSession, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []models.VoiceSession{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading sessions file: %v", err)
	}
	if len(data) == 0 {
		return []models.VoiceSession{}, nil
	}

	var sessions []models.VoiceSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("error unmarshaling sessions: %v", err)
	}
	return sessions, nil
}

func (s *JSONFileStore) StoreSession(session *models.VoiceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessionsLocked()
	if err != nil {
		return err
	}

	if session.ID == 0 {
		session.ID = time.Now().UnixNano()
	}
	if session.Timestamp.IsZero() {
		session.Timestamp = time.Now()
	}

	sessions = append(sessions, *session)

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling sessions: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("error writing sessions file: %v", err)
	}
	return nil
}

func (s *JSONFileStore) GetRecentSessions(limit int) ([]models.VoiceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, err := s.loadSessionsLocked()
	if err != nil {
		return nil, err
	}

	// Newest first; the file is append-ordered.
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *JSONFileStore) GetSessionSummaries(limit int) ([]models.AnalysisSummary, error) {
	sessions, err := s.GetRecentSessions(limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.AnalysisSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, models.AnalysisSummary{
			ID:        sess.ID,
			Timestamp: sess.Timestamp,
			PatientID: sess.PatientID,
			RiskScore: sess.RiskScore,
			RiskLabel: sess.RiskLabel,
		})
	}
	return summaries, nil
}
