// Package events implements the store's named-event dispatcher:
// listeners subscribe to a named event, are invoked
// sequentially and synchronously on publish, and are isolated from each
// other — a panicking or erroring listener is caught and logged, never
// allowed to abort dispatch or the operation that triggered it.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/cuemby/silo/pkg/log"
)

// Name identifies an event kind.
type Name string

const (
	StoreBefore         Name = "store.before"
	StoreAfter          Name = "store.after"
	LoadBefore          Name = "load.before"
	LoadAfter           Name = "load.after"
	DeleteBefore        Name = "delete.before"
	DeleteAfter         Name = "delete.after"
	ObjectSaved         Name = "object.saved"
	MetadataSaved       Name = "metadata.saved"
	StubCreated         Name = "stub.created"
	StubRemoved         Name = "stub.removed"
	CacheHit            Name = "cache.hit"
	CacheCleared        Name = "cache.cleared"
	CacheEntryAdded     Name = "cache.entry_added"
	CacheEntryRemoved   Name = "cache.entry_removed"
	SafeModeOn          Name = "safemode.on"
	SafeModeOff         Name = "safemode.off"
	LifetimeChanged     Name = "lifetime.changed"
	ObjectExpired       Name = "object.expired"
	ClassAliasCreated   Name = "class.alias_created"
	ClassNameChanged    Name = "classname.changed"
	LockAcquired        Name = "lock.acquired"
	LockReleased        Name = "lock.released"
	FailureChecksum     Name = "failure.checksum_mismatch"
	FailureInvalidData  Name = "failure.invalid_format"
	FailureLock         Name = "failure.lock"
	FailureIO           Name = "failure.io"
)

// Context is the value built per event and handed to each listener. It
// carries the UUID the event concerns plus free-form fields.
type Context struct {
	UUID   string
	Fields map[string]any
}

// Listener receives a Context, or nil if the context builder for this
// publish failed: context-builder failures are logged and the listener
// receives a null context rather than aborting dispatch.
type Listener func(ctx *Context)

// Subscription is the handle returned by Subscribe, used to remove a
// listener by reference identity rather than by value comparison (Go
// func values aren't comparable).
type Subscription struct {
	id   uint64
	name Name
}

type entry struct {
	id uint64
	fn Listener
}

// Bus dispatches named events to subscribed listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Name][]entry
	nextID    uint64
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Name][]entry)}
}

// Subscribe registers fn to run whenever name is published.
func (b *Bus) Subscribe(name Name, fn Listener) *Subscription {
	id := atomic.AddUint64(&b.nextID, 1)
	b.mu.Lock()
	b.listeners[name] = append(b.listeners[name], entry{id: id, fn: fn})
	b.mu.Unlock()
	return &Subscription{id: id, name: name}
}

// Unsubscribe removes the listener sub identifies, if still registered.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.listeners[sub.name]
	for i, e := range list {
		if e.id == sub.id {
			b.listeners[sub.name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish builds a Context via build (nil means no context) and invokes
// every listener subscribed to name, in registration order, sequentially.
// A panicking listener, or a listener the caller doesn't otherwise
// protect, is recovered and logged; dispatch continues with the next
// listener regardless. A failing context builder is logged and every
// listener receives a nil Context.
func (b *Bus) Publish(name Name, build func() (*Context, error)) {
	var ctx *Context
	if build != nil {
		c, err := build()
		if err != nil {
			logger := log.WithEvent(string(name))
			logger.Warn().Err(err).Msg("event context builder failed")
		} else {
			ctx = c
		}
	}

	b.mu.RLock()
	list := append([]entry(nil), b.listeners[name]...)
	b.mu.RUnlock()

	for _, e := range list {
		dispatch(name, e.fn, ctx)
	}
}

func dispatch(name Name, fn Listener, ctx *Context) {
	defer func() {
		if r := recover(); r != nil {
			logger := log.WithEvent(string(name))
			logger.Error().
				Interface("panic", r).
				Msg("event listener panicked; dispatch continues")
		}
	}()
	fn(ctx)
}

// ListenerCount returns the number of listeners currently subscribed to
// name, mainly useful for tests.
func (b *Bus) ListenerCount(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}

func fieldsCtx(uuid string, kv ...any) *Context {
	f := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return &Context{UUID: uuid, Fields: f}
}

// Simple is a convenience for Publish calls whose context never fails to
// build: it wraps a Context in the (Context, error) shape Publish wants.
func Simple(uuid string, kv ...any) func() (*Context, error) {
	return func() (*Context, error) {
		return fieldsCtx(uuid, kv...), nil
	}
}
