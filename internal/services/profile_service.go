package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steel/backend/internal/models"
)

var (
	ErrSlugTaken       = errors.New("slug already taken")
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileService is the member directory. Lookups that find nothing return
// (nil, nil) rather than an error.
type ProfileService interface {
	GetBySlug(ctx context.Context, slug string) (*models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByAuthID(ctx context.Context, authID string) (*models.Profile, error)
	GetByNfcTag(ctx context.Context, tagID string) (*models.Profile, error)
	Create(ctx context.Context, req *models.CreateProfileRequest) (*models.Profile, error)
	Update(ctx context.Context, id string, req *models.UpdateProfileRequest) error
	BindNfcTag(ctx context.Context, id string, tagID string) error
}

// MemoryProfileService is an in-memory ProfileService used in dev mode and tests.
type MemoryProfileService struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile // keyed by ID
	bySlug   map[string]string          // slug -> ID
	now      func() time.Time
}

func NewMemoryProfileService() *MemoryProfileService {
	return &MemoryProfileService{
		profiles: make(map[string]*models.Profile),
		bySlug:   make(map[string]string),
		now:      time.Now,
	}
}

func (s *MemoryProfileService) GetBySlug(_ context.Context, slug string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, nil
	}
	prof := *s.profiles[id]
	return &prof, nil
}

func (s *MemoryProfileService) GetByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	prof := *p
	return &prof, nil
}

func (s *MemoryProfileService) GetByAuthID(_ context.Context, authID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.AuthID != "" && p.AuthID == authID {
			prof := *p
			return &prof, nil
		}
	}
	return nil, nil
}

// GetByNfcTag resolves a tap to a profile. If two profiles ever hold the same
// tag (binding is last-bind-wins, see BindNfcTag), the most recently updated
// one wins.
func (s *MemoryProfileService) GetByNfcTag(_ context.Context, tagID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Profile
	for _, p := range s.profiles {
		if p.NfcTagID != "" && p.NfcTagID == tagID {
			if found == nil || p.UpdatedAt.After(found.UpdatedAt) {
				found = p
			}
		}
	}
	if found == nil {
		return nil, nil
	}
	prof := *found
	return &prof, nil
}

func (s *MemoryProfileService) Create(_ context.Context, req *models.CreateProfileRequest) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[req.Slug]; exists {
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

	s.profiles[prof.ID] = prof
	s.bySlug[prof.Slug] = prof.ID

	result := *prof
	return &result, nil
}

func (s *MemoryProfileService) Update(_ context.Context, id string, req *models.UpdateProfileRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Company != nil {
		p.Company = *req.Company
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		p.AvatarURL = *req.AvatarURL
	}
	if req.PrivacyMode != nil {
		p.PrivacyMode = *req.PrivacyMode
	}
	if req.RequirePin != nil {
		p.RequirePin = *req.RequirePin
	}
	if req.Socials != nil {
		p.Socials = append([]models.SocialLink(nil), (*req.Socials)...)
	}
	p.UpdatedAt = s.now()

	return nil
}

// BindNfcTag points tagID at this profile. A tag already bound elsewhere is
// not rejected; rebinding is last-bind-wins.
func (s *MemoryProfileService) BindNfcTag(_ context.Context, id string, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.NfcTagID = tagID
	p.UpdatedAt = s.now()
	return nil
}
