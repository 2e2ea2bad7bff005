package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (r *recordingRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func TestDispatcher_PersistsInOrderPerSubject(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	actions := []domain.AuditAction{domain.AuditPlaceCreated, domain.AuditPlaceUpdated, domain.AuditPlaceDeleted}
	for _, subject := range []string{"p1", "p2"} {
		for _, a := range actions {
			d.Publish(domain.AuditEvent{ID: subject + string(a), Action: a, SubjectID: subject})
		}
	}

	cancel()
	d.Wait()

	got := repo.snapshot()
	if len(got) != 6 {
		t.Fatalf("expected 6 events, got %d", len(got))
	}
	for _, subject := range []string{"p1", "p2"} {
		var seen []domain.AuditAction
		for _, e := range got {
			if e.SubjectID == subject {
				seen = append(seen, e.Action)
			}
		}
		for i := range actions {
			if seen[i] != actions[i] {
				t.Fatalf("subject %s: expected %v, got %v", subject, actions, seen)
			}
		}
	}
}

func TestDispatcher_InsertFailureIsNotFatal(t *testing.T) {
	repo := &recordingRepo{err: errors.New("db down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Publish(domain.AuditEvent{ID: "e1", Action: domain.AuditUserRegistered, SubjectID: "u1"})
	d.Publish(domain.AuditEvent{ID: "e2", Action: domain.AuditUserUpdated, SubjectID: "u1"})

	cancel()
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, &recordingRepo{}, zerolog.Nop())

	// Not started: the buffer fills and the rest is dropped.
	for i := 0; i < channelBuffer+10; i++ {
		d.Publish(domain.AuditEvent{SubjectID: "u1"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("place-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("place-42") != first {
			t.Fatal("shard index must be deterministic")
		}
	}
	if first < 0 || first >= defaultWorkers {
		t.Fatalf("shard index out of range: %d", first)
	}
}
