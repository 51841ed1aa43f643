package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/steel/backend/internal/models"
)

// PINs expire after 5 minutes, max 3 attempts.
const (
	PinExpiry      = 5 * time.Minute
	MaxPinAttempts = 3
)

// SMSSender delivers a PIN to a phone number. Delivery failure never
// invalidates the session; the PIN stays good until it expires.
type SMSSender interface {
	SendPin(ctx context.Context, phone string, pin string) error
}

// VerificationService runs the private-mode PIN flow:
//  1. Recipient taps the NFC tag
//  2. A PIN is sent to the sharer's phone
//  3. Sharer tells the recipient the PIN verbally
//  4. Recipient enters the PIN and the profile is revealed
type VerificationService interface {
	CreateSession(ctx context.Context, phone string, profileID string) (*models.CreateSessionResult, error)
	// GetStatus returns the newest session for the profile, or nil. A pending
	// session past its expiry is reported as expired without being written.
	GetStatus(ctx context.Context, profileID string) (*models.VerificationSession, error)
	VerifyPin(ctx context.Context, profileID string, pin string) (*models.VerifyResult, error)
}

// generatePin returns a 4-digit numeric PIN in [1000, 9999].
func generatePin() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand only fails if the platform entropy source is broken
		panic(err)
	}
	return fmt.Sprintf("%d", 1000+n.Int64())
}

func hashPin(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// pinDecision is what a verify attempt does to the stored session.
type pinDecision struct {
	result     *models.VerifyResult
	setStatus  string // "" means leave status alone
	addAttempt bool
}

// decidePinAttempt applies the verify rules to a fetched session. Checks run
// in a fixed order: expiry, then attempt cap, then the attempt itself. An
// attempt rejected for expiry or cap does not consume the counter; a compared
// attempt always does, match or not.
func decidePinAttempt(sess *models.VerificationSession, pin string, now time.Time) pinDecision {
	if now.After(sess.ExpiresAt) {
		return pinDecision{
			result:    &models.VerifyResult{Success: false, ErrorCode: models.VerifyErrExpired},
			setStatus: models.VerificationExpired,
		}
	}

	if sess.Attempts >= MaxPinAttempts {
		return pinDecision{
			result:    &models.VerifyResult{Success: false, ErrorCode: models.VerifyErrMaxAttempts},
			setStatus: models.VerificationExpired,
		}
	}

	attempts := sess.Attempts + 1

	if bcrypt.CompareHashAndPassword([]byte(sess.PinHash), []byte(pin)) == nil {
		return pinDecision{
			result:     &models.VerifyResult{Success: true},
			setStatus:  models.VerificationVerified,
			addAttempt: true,
		}
	}

	remaining := MaxPinAttempts - attempts
	return pinDecision{
		result: &models.VerifyResult{
			Success:           false,
			ErrorCode:         models.VerifyErrWrongPin,
			AttemptsRemaining: &remaining,
		},
		addAttempt: true,
	}
}

// MemoryVerificationService is an in-memory VerificationService used in dev
// mode and tests.
type MemoryVerificationService struct {
	mu       sync.Mutex
	sessions []*models.VerificationSession // insertion order; newest last
	sms      SMSSender
	now      func() time.Time
	pinFunc  func() string
}

func NewMemoryVerificationService(sms SMSSender) *MemoryVerificationService {
	return &MemoryVerificationService{
		sms:     sms,
		now:     time.Now,
		pinFunc: generatePin,
	}
}

func (s *MemoryVerificationService) CreateSession(ctx context.Context, phone string, profileID string) (*models.CreateSessionResult, error) {
	pin := s.pinFunc()
	pinHash, err := hashPin(pin)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
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
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()

	if s.sms != nil {
		if err := s.sms.SendPin(ctx, phone, pin); err != nil {
			// The session stays valid until it expires on its own.
			log.Printf("[Verification] SMS dispatch to %s failed: %v", phone, err)
		}
	}

	return &models.CreateSessionResult{SessionID: sess.ID, ExpiresAt: sess.ExpiresAt}, nil
}

// latest returns the newest session for the profile. Caller holds the lock.
func (s *MemoryVerificationService) latest(profileID string) *models.VerificationSession {
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].ProfileID == profileID {
			return s.sessions[i]
		}
	}
	return nil
}

func (s *MemoryVerificationService) GetStatus(_ context.Context, profileID string) (*models.VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.latest(profileID)
	if sess == nil {
		return nil, nil
	}

	view := *sess
	if view.Status == models.VerificationPending && s.now().After(view.ExpiresAt) {
		view.Status = models.VerificationExpired
	}
	return &view, nil
}

func (s *MemoryVerificationService) VerifyPin(_ context.Context, profileID string, pin string) (*models.VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.latest(profileID)
	if sess == nil {
		return &models.VerifyResult{Success: false, ErrorCode: models.VerifyErrNoSession}, nil
	}

	d := decidePinAttempt(sess, pin, s.now())
	if d.addAttempt {
		sess.Attempts++
	}
	if d.setStatus != "" {
		sess.Status = d.setStatus
	}
	return d.result, nil
}
