package db

import (
	"path/filepath"
	"testing"
	"time"

	"voice-screening/models"
)

func TestJSONFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewJSONFileStore(path)
	if err != nil {
		t.Fatalf("NewJSONFileStore failed: %v", err)
	}
	defer store.Close()

	empty, err := store.GetRecentSessions(10)
	if err != nil {
		t.Fatalf("reading empty store failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty store returned %d sessions", len(empty))
	}

	for i, score := range []float64{12.5, 48.0, 91.2} {
		session := &models.VoiceSession{
			PatientID:  "p1",
			RiskScore:  score,
			RiskLabel:  "Low",
			Timestamp:  time.Now().Add(time.Duration(i) * time.Second),
			Biomarkers: map[string]float64{"fo_mean": 150},
		}
		if err := store.StoreSession(session); err != nil {
			t.Fatalf("StoreSession failed: %v", err)
		}
		if session.ID == 0 {
			t.Error("StoreSession should assign an ID")
		}
	}

	sessions, err := store.GetRecentSessions(10)
	if err != nil {
		t.Fatalf("GetRecentSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	// Newest first.
	if sessions[0].RiskScore != 91.2 || sessions[2].RiskScore != 12.5 {
		t.Errorf("sessions not in reverse insertion order: %+v", sessions)
	}
	if sessions[0].Biomarkers["fo_mean"] != 150 {
		t.Errorf("biomarkers did not survive the round trip: %+v", sessions[0].Biomarkers)
	}

	limited, err := store.GetSessionSummaries(2)
	if err != nil {
		t.Fatalf("GetSessionSummaries failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit not applied: got %d summaries", len(limited))
	}
	if limited[0].RiskScore != 91.2 {
		t.Errorf("summary order wrong: %+v", limited)
	}
}
