package services

import (
	"context"
	"crypto/tls"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/steel/backend/internal/models"
)

type MongoWaitlistService struct {
	client      *mongo.Client
	db          *mongo.Database
	waitlistCol *mongo.Collection
	now         func() time.Time
}

func NewMongoWaitlistService(ctx context.Context, mongoURI, dbName string) (*MongoWaitlistService, error) {
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
	col := db.Collection("waitlist")

	// Best-effort indexes. Email is unique so a probe-then-insert race loses
	// at the store instead of producing a duplicate.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})

	log.Printf("MongoDB connected (waitlist): db=%s", dbName)
	return &MongoWaitlistService{
		client:      client,
		db:          db,
		waitlistCol: col,
		now:         time.Now,
	}, nil
}

func (s *MongoWaitlistService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoWaitlistService) findByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := s.waitlistCol.FindOne(ctx, bson.M{"email": email}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (s *MongoWaitlistService) Join(ctx context.Context, req *models.JoinWaitlistRequest) (*models.JoinWaitlistResult, error) {
	email := strings.ToLower(req.Email)

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &models.JoinWaitlistResult{ID: existing.ID, AlreadyExists: true}, nil
	}

	source := req.Source
	if source == "" {
		source = models.WaitlistSourceWebsite
	}

	entry := &models.WaitlistEntry{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       req.Name,
		Source:     source,
		ReferredBy: req.ReferredBy,
		CreatedAt:  s.now(),
	}
	if _, err := s.waitlistCol.InsertOne(ctx, entry); err != nil {
		// A race inserted the email between probe and insert; resolve to the
		// winner like any other duplicate join.
		if mongo.IsDuplicateKeyError(err) {
			if winner, err2 := s.findByEmail(ctx, email); err2 == nil && winner != nil {
				return &models.JoinWaitlistResult{ID: winner.ID, AlreadyExists: true}, nil
			}
		}
		return nil, err
	}

	return &models.JoinWaitlistResult{ID: entry.ID, AlreadyExists: false}, nil
}

func (s *MongoWaitlistService) CheckEmail(ctx context.Context, email string) (bool, error) {
	entry, err := s.findByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

func (s *MongoWaitlistService) GetAll(ctx context.Context) ([]models.WaitlistEntry, error) {
	cur, err := s.waitlistCol.Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	entries := make([]models.WaitlistEntry, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
