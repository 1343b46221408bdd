package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// captureAuditRepo hands every insert to the test through a channel.
type captureAuditRepo struct {
	inserted chan domain.TransitionEvent
}

func newCaptureAuditRepo() *captureAuditRepo {
	return &captureAuditRepo{inserted: make(chan domain.TransitionEvent, channelBuffer)}
}

func (r *captureAuditRepo) InsertTransition(_ context.Context, ev *domain.TransitionEvent) error {
	r.inserted <- *ev
	return nil
}

func (r *captureAuditRepo) FindByPackage(context.Context, string) ([]*domain.TransitionEvent, error) {
	return nil, nil
}

func transitionEvent(packageID string, seq int) domain.TransitionEvent {
	return domain.TransitionEvent{
		PackageID: packageID,
		From:      domain.StatePublished,
		To:        domain.StateSuggested,
		Actor:     "actor",
		Timestamp: time.Unix(int64(seq), 0).UTC(),
	}
}

// Record must return promptly even when no worker is draining the queue:
// overflow is dropped, never buffered unboundedly and never blocked on.
func TestRecordNeverBlocksWhenQueueFull(t *testing.T) {
	d := NewDispatcher(1, newCaptureAuditRepo(), discardLogger)
	// Workers intentionally not started.

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < channelBuffer+100; i++ {
			d.Record(transitionEvent("pkg-1", i))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Errorf("queued events = %d, want %d", got, channelBuffer)
	}
}

func TestDispatcherDeliversEventsInOrder(t *testing.T) {
	repo := newCaptureAuditRepo()
	d := NewDispatcher(1, repo, discardLogger)

	first := transitionEvent("pkg-1", 1)
	second := transitionEvent("pkg-1", 2)
	d.Record(first)
	d.Record(second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i, want := range []domain.TransitionEvent{first, second} {
		select {
		case got := <-repo.inserted:
			if got != want {
				t.Errorf("event %d = %+v, want %+v", i, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not written", i)
		}
	}
}

func TestShardIndexIsDeterministic(t *testing.T) {
	d := NewDispatcher(4, newCaptureAuditRepo(), discardLogger)

	for _, id := range []string{"pkg-1", "pkg-2", "another-package"} {
		first := d.shardIndex(id)
		if first < 0 || first >= len(d.workers) {
			t.Fatalf("shardIndex(%q) = %d, out of range", id, first)
		}
		if second := d.shardIndex(id); second != first {
			t.Errorf("shardIndex(%q) = %d then %d", id, first, second)
		}
	}
}
