package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steel/backend/internal/models"
)

var ErrShareNotFound = errors.New("share event not found")

// DefaultRecentShareLimit caps GetRecent when the caller does not ask for a
// specific count.
const DefaultRecentShareLimit = 50

// ShareService is the append-only tap log. After LogShare only the two
// viral-tracking flags ever change.
type ShareService interface {
	LogShare(ctx context.Context, req *models.LogShareRequest) (string, error)
	MarkRecipientJoined(ctx context.Context, shareID string) error
	MarkConnectBack(ctx context.Context, shareID string) error
	GetBySharer(ctx context.Context, sharerProfileID string) ([]models.ShareEvent, error)
	// GetRecent returns the newest events across all sharers. limit <= 0 means
	// DefaultRecentShareLimit.
	GetRecent(ctx context.Context, limit int) ([]models.ShareEvent, error)
}

// MemoryShareService is an in-memory ShareService used in dev mode and tests.
type MemoryShareService struct {
	mu     sync.RWMutex
	events []*models.ShareEvent // insertion order; newest last
	byID   map[string]*models.ShareEvent
	now    func() time.Time
}

func NewMemoryShareService() *MemoryShareService {
	return &MemoryShareService{
		byID: make(map[string]*models.ShareEvent),
		now:  time.Now,
	}
}

func (s *MemoryShareService) LogShare(_ context.Context, req *models.LogShareRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
	s.events = append(s.events, ev)
	s.byID[ev.ID] = ev
	return ev.ID, nil
}

func (s *MemoryShareService) MarkRecipientJoined(_ context.Context, shareID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.byID[shareID]
	if !ok {
		return ErrShareNotFound
	}
	ev.RecipientJoined = true
	return nil
}

func (s *MemoryShareService) MarkConnectBack(_ context.Context, shareID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.byID[shareID]
	if !ok {
		return ErrShareNotFound
	}
	ev.ConnectBackRequested = true
	return nil
}

func (s *MemoryShareService) GetBySharer(_ context.Context, sharerProfileID string) ([]models.ShareEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ShareEvent, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].SharerProfileID == sharerProfileID {
			result = append(result, *s.events[i])
		}
	}
	return result, nil
}

func (s *MemoryShareService) GetRecent(_ context.Context, limit int) ([]models.ShareEvent, error) {
	if limit <= 0 {
		limit = DefaultRecentShareLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ShareEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, *s.events[i])
	}
	return result, nil
}
