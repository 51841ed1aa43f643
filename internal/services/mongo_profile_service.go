package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/steel/backend/internal/models"
)

type MongoProfileService struct {
	client      *mongo.Client
	db          *mongo.Database
	profilesCol *mongo.Collection
	now         func() time.Time
}

func NewMongoProfileService(ctx context.Context, mongoURI, dbName string) (*MongoProfileService, error) {
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
	col := db.Collection("profiles")

	// Best-effort indexes. Slug is unique so a probe-then-insert race loses at
	// the store instead of producing a duplicate.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "member_id", Value: 1}}},
		{Keys: bson.D{{Key: "auth_id", Value: 1}}},
		{Keys: bson.D{{Key: "nfc_tag_id", Value: 1}}},
	})

	log.Printf("MongoDB connected (profiles): db=%s", dbName)
	return &MongoProfileService{
		client:      client,
		db:          db,
		profilesCol: col,
		now:         time.Now,
	}, nil
}

func (s *MongoProfileService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoProfileService) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	var prof models.Profile
	if err := s.profilesCol.FindOne(ctx, filter).Decode(&prof); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &prof, nil
}

func (s *MongoProfileService) GetBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *MongoProfileService) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoProfileService) GetByAuthID(ctx context.Context, authID string) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"auth_id": authID})
}

func (s *MongoProfileService) GetByNfcTag(ctx context.Context, tagID string) (*models.Profile, error) {
	return s.findOne(ctx, bson.M{"nfc_tag_id": tagID})
}

func (s *MongoProfileService) Create(ctx context.Context, req *models.CreateProfileRequest) (*models.Profile, error) {
	existing, err := s.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("slug %q is already taken: %w", req.Slug, ErrSlugTaken)
	}

	now := s.now()
	prof := &models.Profile{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Slug:         req.Slug,
		Title:        req.Title,
		Company:      req.Company,
		Bio:          req.Bio,
		Email:        req.Email,
		Phone:        req.Phone,
		Socials:      []models.SocialLink{},
		Tier:         req.Tier,
		MemberID:     req.MemberID,
		PrivacyMode:  req.PrivacyMode,
		RequirePin:   req.RequirePin,
		AuthProvider: req.AuthProvider,
		AuthID:       req.AuthID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.profilesCol.InsertOne(ctx, prof); err != nil {
		// A race created the slug between probe and insert; the unique index
		// caught it.
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("slug %q is already taken: %w", req.Slug, ErrSlugTaken)
		}
		return nil, err
	}
	return prof, nil
}

func (s *MongoProfileService) Update(ctx context.Context, id string, req *models.UpdateProfileRequest) error {
	set := bson.M{
		"updated_at": s.now(),
	}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Company != nil {
		set["company"] = *req.Company
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.AvatarURL != nil {
		set["avatar_url"] = *req.AvatarURL
	}
	if req.PrivacyMode != nil {
		set["privacy_mode"] = *req.PrivacyMode
	}
	if req.RequirePin != nil {
		set["require_pin"] = *req.RequirePin
	}
	if req.Socials != nil {
		set["socials"] = *req.Socials
	}

	res, err := s.profilesCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *MongoProfileService) BindNfcTag(ctx context.Context, id string, tagID string) error {
	res, err := s.profilesCol.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"nfc_tag_id": tagID, "updated_at": s.now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProfileNotFound
	}
	return nil
}
