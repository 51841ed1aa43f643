package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steel/backend/internal/models"
)

// WaitlistService is the deduplicated email register behind the landing page.
// Emails are compared lower-cased; joining twice resolves to the original
// entry instead of erroring.
type WaitlistService interface {
	Join(ctx context.Context, req *models.JoinWaitlistRequest) (*models.JoinWaitlistResult, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	GetAll(ctx context.Context) ([]models.WaitlistEntry, error)
}

// MemoryWaitlistService is an in-memory WaitlistService used in dev mode and
// tests.
type MemoryWaitlistService struct {
	mu      sync.RWMutex
	entries []*models.WaitlistEntry // insertion order; newest last
	byEmail map[string]*models.WaitlistEntry
	now     func() time.Time
}

func NewMemoryWaitlistService() *MemoryWaitlistService {
	return &MemoryWaitlistService{
		byEmail: make(map[string]*models.WaitlistEntry),
		now:     time.Now,
	}
}

func (s *MemoryWaitlistService) Join(_ context.Context, req *models.JoinWaitlistRequest) (*models.JoinWaitlistResult, error) {
	email := strings.ToLower(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byEmail[email]; ok {
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
	s.entries = append(s.entries, entry)
	s.byEmail[email] = entry

	return &models.JoinWaitlistResult{ID: entry.ID, AlreadyExists: false}, nil
}

func (s *MemoryWaitlistService) CheckEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (s *MemoryWaitlistService) GetAll(_ context.Context) ([]models.WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.WaitlistEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		result = append(result, *s.entries[i])
	}
	return result, nil
}
