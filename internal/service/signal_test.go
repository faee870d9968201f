package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/formhive/formhive"
)

func eventMessage(t *testing.T, event formhive.Event) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &redis.Message{Channel: ChannelEvents, Payload: string(payload)}
}

func TestForwardEventsFiltersByListenSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan *redis.Message, 4)
	input := make(chan []uint)
	output := make(chan formhive.Event)

	done := make(chan struct{})
	go func() {
		forwardEvents(ctx, messages, input, output)
		close(done)
	}()

	input <- []uint{42}

	messages <- eventMessage(t, formhive.Event{Type: formhive.EventSubmissionCreated, FormID: 7, SubmissionID: 1})
	messages <- eventMessage(t, formhive.Event{Type: formhive.EventSubmissionCreated, FormID: 42, SubmissionID: 2})

	select {
	case event := <-output:
		if event.FormID != 42 {
			t.Fatalf("expected event for form 42, got form %d", event.FormID)
		}
		if event.SubmissionID != 2 {
			t.Fatalf("expected submission 2, got %d", event.SubmissionID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event forwarded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop on cancel")
	}
}

func TestForwardEventsDeliversFormDeleted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan *redis.Message, 1)
	input := make(chan []uint)
	output := make(chan formhive.Event)

	go forwardEvents(ctx, messages, input, output)

	input <- []uint{9}
	messages <- eventMessage(t, formhive.Event{Type: formhive.EventFormDeleted, FormID: 9, UserID: 3})

	select {
	case event := <-output:
		if event.Type != formhive.EventFormDeleted {
			t.Fatalf("expected type %q, got %q", formhive.EventFormDeleted, event.Type)
		}
		if event.UserID != 3 {
			t.Fatalf("expected user 3, got %d", event.UserID)
		}
	case <-time.After(time.Second):
		t.Fatal("deletion event not forwarded")
	}
}

func TestForwardEventsStopsWhileEventInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	messages := make(chan *redis.Message, 1)
	input := make(chan []uint)
	output := make(chan formhive.Event)

	done := make(chan struct{})
	go func() {
		forwardEvents(ctx, messages, input, output)
		close(done)
	}()

	input <- []uint{42}

	// Nobody reads output, so the forwarder blocks mid-send. The session
	// going away must still unblock it.
	messages <- eventMessage(t, formhive.Event{Type: formhive.EventSubmissionCreated, FormID: 42, SubmissionID: 5})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder stuck sending after cancel")
	}
}

func TestForwardEventsStopsOnInputClose(t *testing.T) {
	ctx := context.Background()

	messages := make(chan *redis.Message)
	input := make(chan []uint)
	output := make(chan formhive.Event)

	done := make(chan struct{})
	go func() {
		forwardEvents(ctx, messages, input, output)
		close(done)
	}()

	close(input)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop on input close")
	}
}
