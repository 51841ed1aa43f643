package services

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/steel/backend/internal/models"
)

type MongoConnectionService struct {
	client         *mongo.Client
	db             *mongo.Database
	connectionsCol *mongo.Collection
	now            func() time.Time
}

func NewMongoConnectionService(ctx context.Context, mongoURI, dbName string) (*MongoConnectionService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	col := db.Collection("connections")

	// Best-effort indexes, one per side of the pair.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "profile_a", Value: 1}}},
		{Keys: bson.D{{Key: "profile_b", Value: 1}}},
	})

	log.Printf("MongoDB connected (connections): db=%s", dbName)
	return &MongoConnectionService{
		client:         client,
		db:             db,
		connectionsCol: col,
		now:            time.Now,
	}, nil
}

func (s *MongoConnectionService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoConnectionService) findPair(ctx context.Context, a, b string) (*models.Connection, error) {
	var conn models.Connection
	err := s.connectionsCol.FindOne(ctx, bson.M{"profile_a": a, "profile_b": b}).Decode(&conn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (s *MongoConnectionService) Request(ctx context.Context, from string, to string) (string, error) {
	existing, err := s.findPair(ctx, from, to)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	reverse, err := s.findPair(ctx, to, from)
	if err != nil {
		return "", err
	}
	if reverse != nil {
		return reverse.ID, nil
	}

	conn := &models.Connection{
		ID:          uuid.New().String(),
		ProfileA:    from,
		ProfileB:    to,
		Status:      models.ConnectionPending,
		InitiatedBy: from,
		CreatedAt:   s.now(),
	}
	if _, err := s.connectionsCol.InsertOne(ctx, conn); err != nil {
		return "", err
	}
	return conn.ID, nil
}

func (s *MongoConnectionService) Accept(ctx context.Context, connectionID string) error {
	res, err := s.connectionsCol.UpdateOne(ctx, bson.M{"_id": connectionID}, bson.M{
		"$set": bson.M{"status": models.ConnectionConnected, "connected_at": s.now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

func (s *MongoConnectionService) Block(ctx context.Context, connectionID string) error {
	res, err := s.connectionsCol.UpdateOne(ctx, bson.M{"_id": connectionID}, bson.M{
		"$set": bson.M{"status": models.ConnectionBlocked},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

func (s *MongoConnectionService) GetForProfile(ctx context.Context, profileID string) ([]models.Connection, error) {
	result := make([]models.Connection, 0)

	for _, filter := range []bson.M{
		{"profile_a": profileID},
		{"profile_b": profileID},
	} {
		cur, err := s.connectionsCol.Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		var side []models.Connection
		if err := cur.All(ctx, &side); err != nil {
			return nil, err
		}
		result = append(result, side...)
	}
	return result, nil
}
