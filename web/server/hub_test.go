package server

import "testing"

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := newHub[int]()
	a, unsubA := h.subscribe(1)
	b, unsubB := h.subscribe(1)
	defer unsubB()

	h.publish(7)
	if got := <-a; got != 7 {
		t.Errorf("Subscriber a got %d", got)
	}
	if got := <-b; got != 7 {
		t.Errorf("Subscriber b got %d", got)
	}

	unsubA()
	if h.len() != 1 {
		t.Errorf("Expected 1 subscriber after unsubscribe, got %d", h.len())
	}
	h.publish(8)
	select {
	case v := <-a:
		t.Errorf("Unsubscribed channel received %d", v)
	default:
	}
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := newHub[int]()
	ch, unsub := h.subscribe(1)
	defer unsub()

	// The second value is dropped rather than blocking
	h.publish(1)
	h.publish(2)
	if got := <-ch; got != 1 {
		t.Errorf("Expected the first value, got %d", got)
	}
	select {
	case v := <-ch:
		t.Errorf("Expected nothing buffered, got %d", v)
	default:
	}
}
