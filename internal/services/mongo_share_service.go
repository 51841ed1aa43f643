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

type MongoShareService struct {
	client    *mongo.Client
	db        *mongo.Database
	sharesCol *mongo.Collection
	now       func() time.Time
}

func NewMongoShareService(ctx context.Context, mongoURI, dbName string) (*MongoShareService, error) {
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
	col := db.Collection("nfc_shares")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sharer_profile_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	})

	log.Printf("MongoDB connected (nfc_shares): db=%s", dbName)
	return &MongoShareService{
		client:    client,
		db:        db,
		sharesCol: col,
		now:       time.Now,
	}, nil
}

func (s *MongoShareService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoShareService) LogShare(ctx context.Context, req *models.LogShareRequest) (string, error) {
	ev := &models.ShareEvent{
		ID:                  uuid.New().String(),
		SharerProfileID:     req.SharerProfileID,
		RecipientProfileID:  req.RecipientProfileID,
		RecipientIdentifier: req.RecipientIdentifier,
		PrivacyMode:         req.PrivacyMode,
		WasVerified:         req.WasVerified,
		Location:            req.Location,
		EventTag:            req.EventTag,
		// Tracking flags always start false; they are flipped later.
		RecipientJoined:      false,
		ConnectBackRequested: false,
		Timestamp:            s.now(),
	}
	if _, err := s.sharesCol.InsertOne(ctx, ev); err != nil {
		return "", err
	}
	return ev.ID, nil
}

func (s *MongoShareService) setFlag(ctx context.Context, shareID string, field string) error {
	res, err := s.sharesCol.UpdateOne(ctx, bson.M{"_id": shareID}, bson.M{
		"$set": bson.M{field: true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrShareNotFound
	}
	return nil
}

func (s *MongoShareService) MarkRecipientJoined(ctx context.Context, shareID string) error {
	return s.setFlag(ctx, shareID, "recipient_joined")
}

func (s *MongoShareService) MarkConnectBack(ctx context.Context, shareID string) error {
	return s.setFlag(ctx, shareID, "connect_back_requested")
}

func (s *MongoShareService) GetBySharer(ctx context.Context, sharerProfileID string) ([]models.ShareEvent, error) {
	cur, err := s.sharesCol.Find(
		ctx,
		bson.M{"sharer_profile_id": sharerProfileID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	events := make([]models.ShareEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *MongoShareService) GetRecent(ctx context.Context, limit int) ([]models.ShareEvent, error) {
	if limit <= 0 {
		limit = DefaultRecentShareLimit
	}

	cur, err := s.sharesCol.Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	events := make([]models.ShareEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
