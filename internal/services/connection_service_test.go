package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/steel/backend/internal/models"
)

func newTestConnections(t *testing.T) (*MemoryConnectionService, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	svc := NewMemoryConnectionService()
	svc.now = clock.Now
	return svc, clock
}

func TestRequest_CreatesPending(t *testing.T) {
	svc, _ := newTestConnections(t)

	id, err := svc.Request(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if id == "" {
		t.Fatal("Request() returned empty id")
	}

	conns, _ := svc.GetForProfile(context.Background(), "alice")
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	c := conns[0]
	if c.Status != models.ConnectionPending {
		t.Errorf("Status = %q, want pending", c.Status)
	}
	if c.InitiatedBy != "alice" {
		t.Errorf("InitiatedBy = %q, want alice", c.InitiatedBy)
	}
	if c.ConnectedAt != nil {
		t.Errorf("ConnectedAt = %v, want nil before accept", c.ConnectedAt)
	}
}

func TestRequest_IdempotentBothOrders(t *testing.T) {
	svc, _ := newTestConnections(t)

	first, err := svc.Request(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Request(alice, bob) error = %v", err)
	}
	second, err := svc.Request(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("Request(bob, alice) error = %v", err)
	}
	if first != second {
		t.Errorf("reverse request created a new record: %s != %s", first, second)
	}

	third, _ := svc.Request(context.Background(), "alice", "bob")
	if third != first {
		t.Errorf("repeat request created a new record: %s != %s", third, first)
	}

	conns, _ := svc.GetForProfile(context.Background(), "alice")
	if len(conns) != 1 {
		t.Errorf("got %d records for the pair, want exactly 1", len(conns))
	}
}

func TestRequest_ExistingBlockedUnchanged(t *testing.T) {
	svc, _ := newTestConnections(t)

	id, _ := svc.Request(context.Background(), "alice", "bob")
	if err := svc.Block(context.Background(), id); err != nil {
		t.Fatalf("Block() error = %v", err)
	}

	again, err := svc.Request(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if again != id {
		t.Errorf("request after block created a new record: %s != %s", again, id)
	}

	conns, _ := svc.GetForProfile(context.Background(), "bob")
	if conns[0].Status != models.ConnectionBlocked {
		t.Errorf("Status = %q, want blocked left untouched", conns[0].Status)
	}
}

func TestAccept_SetsConnectedAt(t *testing.T) {
	svc, clock := newTestConnections(t)

	id, _ := svc.Request(context.Background(), "alice", "bob")
	clock.Advance(time.Minute)

	if err := svc.Accept(context.Background(), id); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	conns, _ := svc.GetForProfile(context.Background(), "alice")
	c := conns[0]
	if c.Status != models.ConnectionConnected {
		t.Errorf("Status = %q, want connected", c.Status)
	}
	if c.ConnectedAt == nil || !c.ConnectedAt.Equal(clock.Now()) {
		t.Errorf("ConnectedAt = %v, want %v", c.ConnectedAt, clock.Now())
	}

	// Repeated accept is harmless.
	if err := svc.Accept(context.Background(), id); err != nil {
		t.Errorf("second Accept() error = %v", err)
	}
}

func TestBlock_Idempotent(t *testing.T) {
	svc, _ := newTestConnections(t)

	id, _ := svc.Request(context.Background(), "alice", "bob")
	if err := svc.Block(context.Background(), id); err != nil {
		t.Fatalf("Block() error = %v", err)
	}
	if err := svc.Block(context.Background(), id); err != nil {
		t.Errorf("second Block() error = %v", err)
	}

	conns, _ := svc.GetForProfile(context.Background(), "alice")
	if conns[0].Status != models.ConnectionBlocked {
		t.Errorf("Status = %q, want blocked", conns[0].Status)
	}
}

func TestAccept_UnknownID(t *testing.T) {
	svc, _ := newTestConnections(t)

	if err := svc.Accept(context.Background(), "nope"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("Accept(unknown) error = %v, want ErrConnectionNotFound", err)
	}
	if err := svc.Block(context.Background(), "nope"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("Block(unknown) error = %v, want ErrConnectionNotFound", err)
	}
}

func TestGetForProfile_BothSides(t *testing.T) {
	svc, _ := newTestConnections(t)

	svc.Request(context.Background(), "alice", "bob")   // alice on side A
	svc.Request(context.Background(), "carol", "alice") // alice on side B
	svc.Request(context.Background(), "carol", "dave")  // no alice

	conns, err := svc.GetForProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetForProfile() error = %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("got %d connections, want 2", len(conns))
	}
	for _, c := range conns {
		if c.ProfileA != "alice" && c.ProfileB != "alice" {
			t.Errorf("connection %s does not involve alice", c.ID)
		}
	}
}
