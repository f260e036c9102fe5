package db

import (
	"context"
	"fmt"
	"time"

	"voice-screening/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoDatabase   = "voice_screening"
	mongoCollection = "voice_sessions"
	mongoTimeout    = 10 * time.Second
)

type MongoClient struct {
	client *mongo.Client
}

func NewMongoClient(uri string) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %s", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %s", err)
	}

	return &MongoClient{client: client}, nil
}

func (c *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (c *MongoClient) sessions() *mongo.Collection {
	return c.client.Database(mongoDatabase).Collection(mongoCollection)
}

func (c *MongoClient) StoreSession(session *models.VoiceSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	if session.ID == 0 {
		session.ID = time.Now().UnixNano()
	}
	if session.Timestamp.IsZero() {
		session.Timestamp = time.Now()
	}

	if _, err := c.sessions().InsertOne(ctx, session); err != nil {
		return fmt.Errorf("error storing session: %s", err)
	}
	return nil
}

func (c *MongoClient) GetRecentSessions(limit int) ([]models.VoiceSession, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := c.sessions().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying sessions: %s", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.VoiceSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("error decoding sessions: %s", err)
	}
	return sessions, nil
}

func (c *MongoClient) GetSessionSummaries(limit int) ([]models.AnalysisSummary, error) {
	sessions, err := c.GetRecentSessions(limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.AnalysisSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, models.AnalysisSummary{
			ID:        s.ID,
			Timestamp: s.Timestamp,
			PatientID: s.PatientID,
			RiskScore: s.RiskScore,
			RiskLabel: s.RiskLabel,
		})
	}
	return summaries, nil
}
