package events

import (
	"errors"
	"sync"
	"testing"
)

func TestPublishInvokesListenerWithContext(t *testing.T) {
	b := NewBus()
	var got *Context
	b.Subscribe(ObjectSaved, func(ctx *Context) { got = ctx })

	b.Publish(ObjectSaved, Simple("uuid-1", "class", "Widget"))

	if got == nil || got.UUID != "uuid-1" || got.Fields["class"] != "Widget" {
		t.Fatalf("listener received unexpected context: %+v", got)
	}
}

func TestPublishPassesNilContextOnContextBuildFailure(t *testing.T) {
	b := NewBus()
	var got *Context
	called := false
	b.Subscribe(ObjectSaved, func(ctx *Context) {
		called = true
		got = ctx
	})

	b.Publish(ObjectSaved, func() (*Context, error) {
		return nil, errors.New("boom")
	})

	if !called {
		t.Fatal("listener should still be invoked with a nil context")
	}
	if got != nil {
		t.Errorf("listener context should be nil on builder failure, got %+v", got)
	}
}

func TestPublishRecoversFromPanickingListener(t *testing.T) {
	b := NewBus()
	secondCalled := false
	b.Subscribe(ObjectSaved, func(ctx *Context) { panic("boom") })
	b.Subscribe(ObjectSaved, func(ctx *Context) { secondCalled = true })

	b.Publish(ObjectSaved, Simple("uuid-1"))

	if !secondCalled {
		t.Error("a panicking listener should not prevent later listeners from running")
	}
}

func TestUnsubscribeRemovesOnlyThatListener(t *testing.T) {
	b := NewBus()
	var calls []string
	sub1 := b.Subscribe(ObjectSaved, func(ctx *Context) { calls = append(calls, "one") })
	b.Subscribe(ObjectSaved, func(ctx *Context) { calls = append(calls, "two") })

	b.Unsubscribe(sub1)
	b.Publish(ObjectSaved, Simple("uuid-1"))

	if len(calls) != 1 || calls[0] != "two" {
		t.Fatalf("calls = %v, want only [two]", calls)
	}
}

func TestDispatchIsSequentialNotConcurrent(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	order := []int{}
	for i := 0; i < 5; i++ {
		i := i
		b.Subscribe(ObjectSaved, func(ctx *Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	b.Publish(ObjectSaved, Simple("uuid-1"))
	for i, v := range order {
		if v != i {
			t.Fatalf("dispatch order = %v, want sequential 0..4", order)
		}
	}
}

func TestListenerCount(t *testing.T) {
	b := NewBus()
	if b.ListenerCount(ObjectSaved) != 0 {
		t.Fatal("expected zero listeners initially")
	}
	b.Subscribe(ObjectSaved, func(ctx *Context) {})
	if b.ListenerCount(ObjectSaved) != 1 {
		t.Fatal("expected one listener after Subscribe")
	}
}
