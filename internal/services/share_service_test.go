package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/steel/backend/internal/models"
)

func newTestShares(t *testing.T) (*MemoryShareService, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	svc := NewMemoryShareService()
	svc.now = clock.Now
	return svc, clock
}

func TestLogShare_FlagsStartFalse(t *testing.T) {
	svc, clock := newTestShares(t)

	id, err := svc.LogShare(context.Background(), &models.LogShareRequest{
		SharerProfileID:     "sharer-1",
		RecipientIdentifier: "+15550001111",
		PrivacyMode:         models.PrivacyEvent,
		WasVerified:         true,
		EventTag:            "founders-dinner",
		Location:            &models.GeoPoint{Lat: 40.7128, Lng: -74.0060},
	})
	if err != nil {
		t.Fatalf("LogShare() error = %v", err)
	}

	events, _ := svc.GetBySharer(context.Background(), "sharer-1")
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.ID != id {
		t.Errorf("ID = %q, want %q", ev.ID, id)
	}
	if ev.RecipientJoined || ev.ConnectBackRequested {
		t.Error("tracking flags must start false")
	}
	if !ev.Timestamp.Equal(clock.Now()) {
		t.Errorf("Timestamp = %v, want server-assigned %v", ev.Timestamp, clock.Now())
	}
	if ev.PrivacyMode != models.PrivacyEvent || !ev.WasVerified || ev.EventTag != "founders-dinner" {
		t.Errorf("context fields not recorded: %+v", ev)
	}
	if ev.Location == nil || ev.Location.Lat != 40.7128 {
		t.Errorf("Location = %v, want the recorded point", ev.Location)
	}
}

func TestMarkFlags_Idempotent(t *testing.T) {
	svc, _ := newTestShares(t)

	id, _ := svc.LogShare(context.Background(), &models.LogShareRequest{
		SharerProfileID: "sharer-1",
		PrivacyMode:     models.PrivacyPublic,
	})

	for i := 0; i < 2; i++ {
		if err := svc.MarkRecipientJoined(context.Background(), id); err != nil {
			t.Fatalf("MarkRecipientJoined() #%d error = %v", i+1, err)
		}
		if err := svc.MarkConnectBack(context.Background(), id); err != nil {
			t.Fatalf("MarkConnectBack() #%d error = %v", i+1, err)
		}
	}

	events, _ := svc.GetBySharer(context.Background(), "sharer-1")
	if !events[0].RecipientJoined || !events[0].ConnectBackRequested {
		t.Errorf("flags = %+v, want both true", events[0])
	}

	if err := svc.MarkRecipientJoined(context.Background(), "nope"); !errors.Is(err, ErrShareNotFound) {
		t.Errorf("MarkRecipientJoined(unknown) error = %v, want ErrShareNotFound", err)
	}
}

func TestGetBySharer_NewestFirst(t *testing.T) {
	svc, clock := newTestShares(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := svc.LogShare(context.Background(), &models.LogShareRequest{
			SharerProfileID: "sharer-1",
			PrivacyMode:     models.PrivacyPublic,
		})
		ids = append(ids, id)
		clock.Advance(time.Minute)
	}
	svc.LogShare(context.Background(), &models.LogShareRequest{
		SharerProfileID: "other",
		PrivacyMode:     models.PrivacyPublic,
	})

	events, err := svc.GetBySharer(context.Background(), "sharer-1")
	if err != nil {
		t.Fatalf("GetBySharer() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, ev := range events {
		if want := ids[len(ids)-1-i]; ev.ID != want {
			t.Errorf("events[%d] = %s, want %s (newest first)", i, ev.ID, want)
		}
	}
}

func TestGetRecent_DefaultLimit(t *testing.T) {
	svc, clock := newTestShares(t)

	for i := 0; i < 60; i++ {
		svc.LogShare(context.Background(), &models.LogShareRequest{
			SharerProfileID: fmt.Sprintf("sharer-%d", i),
			PrivacyMode:     models.PrivacyPublic,
		})
		clock.Advance(time.Second)
	}

	events, err := svc.GetRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(events) != DefaultRecentShareLimit {
		t.Fatalf("got %d events, want default limit %d", len(events), DefaultRecentShareLimit)
	}
	if events[0].SharerProfileID != "sharer-59" {
		t.Errorf("events[0] sharer = %s, want the newest (sharer-59)", events[0].SharerProfileID)
	}

	five, _ := svc.GetRecent(context.Background(), 5)
	if len(five) != 5 {
		t.Errorf("GetRecent(5) returned %d events", len(five))
	}
}
