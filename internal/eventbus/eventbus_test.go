package eventbus

import (
	"context"
	"testing"
)

type testEvent struct{ n int }

func TestPublishSubscribe(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	unsub := Subscribe(func(ctx context.Context, e testEvent) {
		got = append(got, e.n)
	})

	Publish(context.Background(), testEvent{n: 1})
	Publish(context.Background(), testEvent{n: 2})
	unsub()
	Publish(context.Background(), testEvent{n: 3})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2], got %v", got)
	}
}

func TestUnsubscribeRemovesOnlyOwnRegistration(t *testing.T) {
	Use(New())
	defer Use(nil)

	// Two handlers for the same event type; removing the second must not
	// take out the first, even though both registrations pass through the
	// same wrapping closure.
	var a, b int
	unsubA := Subscribe(func(ctx context.Context, e testEvent) { a++ })
	defer unsubA()
	unsubB := Subscribe(func(ctx context.Context, e testEvent) { b++ })

	unsubB()
	Publish(context.Background(), testEvent{})

	if b != 0 {
		t.Fatalf("removed handler ran %d times", b)
	}
	if a != 1 {
		t.Fatalf("expected surviving handler to run once, ran %d times", a)
	}
}

func TestPublishWithoutBus(t *testing.T) {
	Use(nil)
	// Must not panic and the returned unsubscribe must be callable.
	unsub := Subscribe(func(ctx context.Context, e testEvent) {})
	Publish(context.Background(), testEvent{})
	unsub()
}
