package stream

import (
	"context"
	"testing"

	"github.com/rl1809/nft-marketplace/internal/core/domain"
)

func events(seqs ...uint64) []domain.Event {
	out := make([]domain.Event, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, domain.Event{Seq: s, Type: domain.EventItemListed})
	}
	return out
}

func TestHub_DeliversInOrder(t *testing.T) {
	hub := NewHub(8, nil)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(context.Background(), events(1, 2))
	hub.Publish(context.Background(), events(3))

	for want := uint64(1); want <= 3; want++ {
		ev := <-ch
		if ev.Seq != want {
			t.Fatalf("expected seq %d, got %d", want, ev.Seq)
		}
	}
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	hub := NewHub(2, nil)
	slow, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(context.Background(), events(1, 2, 3))

	if hub.Subscribers() != 0 {
		t.Errorf("expected slow subscriber removed, got %d subscribers", hub.Subscribers())
	}

	count := 0
	for range slow {
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 buffered events before close, got %d", count)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(1, nil)
	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}
	if hub.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", hub.Subscribers())
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(1, nil)
	ch, _ := hub.Subscribe()
	hub.Close()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after hub close")
	}

	late, _ := hub.Subscribe()
	if _, ok := <-late; ok {
		t.Error("expected subscription after close to be closed")
	}
}
