package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steel/backend/internal/models"
)

var ErrConnectionNotFound = errors.New("connection not found")

// ConnectionService keeps at most one record per unordered pair of profiles.
// Because the pair is stored as (profile_a, profile_b), every create path must
// probe both orderings before inserting; this is the one uniqueness invariant
// the store cannot enforce with a single-field index.
type ConnectionService interface {
	// Request returns the id of the existing connection between the two
	// profiles in either orientation, or inserts a pending one. Idempotent:
	// an existing record is returned untouched even if it is blocked.
	Request(ctx context.Context, from string, to string) (string, error)
	Accept(ctx context.Context, connectionID string) error
	Block(ctx context.Context, connectionID string) error
	GetForProfile(ctx context.Context, profileID string) ([]models.Connection, error)
}

// MemoryConnectionService is an in-memory ConnectionService used in dev mode
// and tests.
type MemoryConnectionService struct {
	mu          sync.RWMutex
	connections map[string]*models.Connection
	order       []string // insertion order for stable listings
	now         func() time.Time
}

func NewMemoryConnectionService() *MemoryConnectionService {
	return &MemoryConnectionService{
		connections: make(map[string]*models.Connection),
		now:         time.Now,
	}
}

// findPair returns the connection holding the pair in the given orientation.
// Caller holds the lock.
func (s *MemoryConnectionService) findPair(a, b string) *models.Connection {
	for _, id := range s.order {
		c := s.connections[id]
		if c.ProfileA == a && c.ProfileB == b {
			return c
		}
	}
	return nil
}

func (s *MemoryConnectionService) Request(_ context.Context, from string, to string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findPair(from, to); existing != nil {
		return existing.ID, nil
	}
	if reverse := s.findPair(to, from); reverse != nil {
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
	s.connections[conn.ID] = conn
	s.order = append(s.order, conn.ID)
	return conn.ID, nil
}

func (s *MemoryConnectionService) Accept(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connections[connectionID]
	if !ok {
		return ErrConnectionNotFound
	}
	now := s.now()
	c.Status = models.ConnectionConnected
	c.ConnectedAt = &now
	return nil
}

func (s *MemoryConnectionService) Block(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connections[connectionID]
	if !ok {
		return ErrConnectionNotFound
	}
	c.Status = models.ConnectionBlocked
	return nil
}

func (s *MemoryConnectionService) GetForProfile(_ context.Context, profileID string) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Connection, 0)
	for _, id := range s.order {
		c := s.connections[id]
		if c.ProfileA == profileID {
			result = append(result, *c)
		}
	}
	for _, id := range s.order {
		c := s.connections[id]
		if c.ProfileB == profileID {
			result = append(result, *c)
		}
	}
	return result, nil
}
