package notification

import (
	"context"
	"testing"
	"time"

	"companionhub/models"
)

func receive(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.Notification{}
}

func TestHubFanOut(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, _ := hub.Subscribe(ctx, UserChannel("u1"))
	b, _ := hub.Subscribe(ctx, UserChannel("u1"))
	other, _ := hub.Subscribe(ctx, UserChannel("u2"))

	hub.Publish(ctx, UserChannel("u1"), NewEvent(models.EventBookingCreated, "x"))

	if ev := receive(t, a); ev.Type != models.EventBookingCreated {
		t.Errorf("listener a got %q", ev.Type)
	}
	if ev := receive(t, b); ev.Type != models.EventBookingCreated {
		t.Errorf("listener b got %q", ev.Type)
	}
	select {
	case ev := <-other:
		t.Errorf("unrelated channel received %+v", ev)
	default:
	}
}

func TestHubUnsubscribeOnCancel(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch, _ := hub.Subscribe(ctx, ChatChannel("c1"))
	if n := hub.Listeners(ChatChannel("c1")); n != 1 {
		t.Fatalf("expected 1 listener, got %d", n)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	if n := hub.Listeners(ChatChannel("c1")); n != 0 {
		t.Errorf("expected listener removed, got %d", n)
	}

	// Publishing with no listeners is a no-op.
	hub.Publish(context.Background(), ChatChannel("c1"), NewEvent(models.EventChatMessage, nil))
}

func TestPublishToUsersSkipsBlank(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, _ := hub.Subscribe(ctx, UserChannel("u1"))
	PublishToUsers(ctx, hub, NewEvent(models.EventBookingStatus, nil), "", "u1")
	if ev := receive(t, ch); ev.Type != models.EventBookingStatus {
		t.Errorf("got %q", ev.Type)
	}
}
