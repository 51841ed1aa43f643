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

type MongoVerificationService struct {
	client      *mongo.Client
	db          *mongo.Database
	sessionsCol *mongo.Collection
	sms         SMSSender
	now         func() time.Time
	pinFunc     func() string
}

func NewMongoVerificationService(ctx context.Context, mongoURI, dbName string, sms SMSSender) (*MongoVerificationService, error) {
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
	col := db.Collection("verification")

	// Best-effort indexes. Lookups always want the newest session per profile.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
	})

	log.Printf("MongoDB connected (verification): db=%s", dbName)
	return &MongoVerificationService{
		client:      client,
		db:          db,
		sessionsCol: col,
		sms:         sms,
		now:         time.Now,
		pinFunc:     generatePin,
	}, nil
}

func (s *MongoVerificationService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoVerificationService) CreateSession(ctx context.Context, phone string, profileID string) (*models.CreateSessionResult, error) {
	pin := s.pinFunc()
	pinHash, err := hashPin(pin)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &models.VerificationSession{
		ID:        uuid.New().String(),
		Phone:     phone,
		PinHash:   pinHash,
		ProfileID: profileID,
		Status:    models.VerificationPending,
		Attempts:  0,
		ExpiresAt: now.Add(PinExpiry),
		CreatedAt: now,
	}
	if _, err := s.sessionsCol.InsertOne(ctx, sess); err != nil {
		return nil, err
	}

	if s.sms != nil {
		if err := s.sms.SendPin(ctx, phone, pin); err != nil {
			// The session stays valid until it expires on its own.
			log.Printf("[Verification] SMS dispatch to %s failed: %v", phone, err)
		}
	}

	return &models.CreateSessionResult{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt}, nil
}

// latest fetches the newest session for the profile, or nil.
func (s *MongoVerificationService) latest(ctx context.Context, profileID string) (*models.VerificationSession, error) {
	var sess models.VerificationSession
	err := s.sessionsCol.FindOne(
		ctx,
		bson.M{"profile_id": profileID},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&sess)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (s *MongoVerificationService) GetStatus(ctx context.Context, profileID string) (*models.VerificationSession, error) {
	sess, err := s.latest(ctx, profileID)
	if err != nil || sess == nil {
		return nil, err
	}

	// Lazy expiry: report it, don't write it. The stored status flips on the
	// next verify attempt.
	if sess.Status == models.VerificationPending && s.now().After(sess.ExpiresAt) {
		sess.Status = models.VerificationExpired
	}
	return sess, nil
}

func (s *MongoVerificationService) VerifyPin(ctx context.Context, profileID string, pin string) (*models.VerifyResult, error) {
	sess, err := s.latest(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &models.VerifyResult{Success: false, ErrorCode: models.VerifyErrNoSession}, nil
	}

	d := decidePinAttempt(sess, pin, s.now())

	update := bson.M{}
	if d.addAttempt {
		update["$inc"] = bson.M{"attempts": 1}
	}
	if d.setStatus != "" {
		update["$set"] = bson.M{"status": d.setStatus}
	}
	if len(update) > 0 {
		if _, err := s.sessionsCol.UpdateOne(ctx, bson.M{"_id": sess.ID}, update); err != nil {
			return nil, err
		}
	}
	return d.result, nil
}
