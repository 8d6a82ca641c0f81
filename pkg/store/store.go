// Package store implements the public persistence engine: a facade
// (Store) wiring the lock manager, safe-mode handler, object/metadata
// caches, event bus, class registry, and atomic file I/O into the
// store/load/delete operations this package exposes.
package store

import (
	"sync"
	"time"

	"github.com/cuemby/silo/pkg/cache"
	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/fsio"
	"github.com/cuemby/silo/pkg/lock"
	"github.com/cuemby/silo/pkg/log"
	"github.com/cuemby/silo/pkg/record"
	"github.com/cuemby/silo/pkg/safemode"
)

// Store is the facade every caller of this package holds: one Store
// per storage root. It is safe for concurrent use.
type Store struct {
	cfg      Config
	fsys     fsio.FileSystem
	locks    *lock.Manager
	safe     *safemode.Handler
	registry *Registry
	bus      *events.Bus
	logger   zerologAdapter

	objCache  *cache.Cache[any]
	metaCache *cache.Cache[*record.Metadata]

	mu         sync.Mutex
	identity   map[any]string
	inProgress map[string]bool
}

// zerologAdapter narrows this package's logging surface to what it
// actually calls, matching the component-logger pattern pkg/lock uses.
type zerologAdapter struct{}

func (zerologAdapter) warn(msg string, id string, err error) {
	logger := log.WithComponent("store")
	logger.Warn().Str("uuid", id).Err(err).Msg(msg)
}

// New builds a Store rooted at cfg.Root, wiring registry to resolve
// persisted class names and bus to receive every lifecycle event this
// Store emits. Passing a nil bus is not allowed; callers that don't
// need listeners should pass events.NewBus().
func New(cfg Config, registry *Registry, bus *events.Bus) (*Store, error) {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = lock.DefaultTimeout
	}
	if cfg.MaxNestingDepth <= 0 {
		cfg.MaxNestingDepth = 64
	}
	if cfg.ClassRenameMap == nil {
		cfg.ClassRenameMap = map[string]string{}
	}

	fsys := fsio.OS{}
	if err := fsys.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, newErr(IO, "", err)
	}

	safe := safemode.New(cfg.Root)

	s := &Store{
		cfg:        cfg,
		fsys:       fsys,
		safe:       safe,
		registry:   registry,
		bus:        bus,
		objCache:   cache.New[any](cfg.ObjectCacheSize, cfg.CacheTTL),
		metaCache:  cache.New[*record.Metadata](cfg.MetadataCacheSize, cfg.CacheTTL),
		identity:   map[any]string{},
		inProgress: map[string]bool{},
	}
	s.locks = lock.New(cfg.Root, cfg.LockTimeout, safe.Enabled)
	return s, nil
}

// Exists reports whether id names a record currently on disk,
// satisfying uid.Exister for Unique's collision check and graph.Loader
// callers probing before a dereference.
func (s *Store) Exists(id string) bool {
	return fsio.Exists(s.fsys, s.dataPath(id))
}

// SafeMode reports whether the store is currently in safe-mode.
func (s *Store) SafeMode() bool { return s.safe.Enabled() }

// EnterSafeMode forces safe-mode on, independent of any integrity
// failure, for operator-initiated maintenance via the CLI `safemode`
// command.
func (s *Store) EnterSafeMode(reason string) error {
	if err := s.safe.Enable(reason); err != nil {
		return newErr(IO, "", err)
	}
	s.bus.Publish(events.SafeModeOn, events.Simple("", "reason", reason))
	return nil
}

// ExitSafeMode clears safe-mode.
func (s *Store) ExitSafeMode() error {
	if err := s.safe.Disable(); err != nil {
		return newErr(IO, "", err)
	}
	s.bus.Publish(events.SafeModeOff, events.Simple(""))
	return nil
}

// ClearCache empties both the object and metadata caches, and resets
// the in-progress and identity maps serialize.go uses to track
// recursion within a store call and the identity it assigned to values
// without their own identity across calls.
func (s *Store) ClearCache() {
	s.objCache.Clear()
	s.metaCache.Clear()
	s.mu.Lock()
	s.identity = map[any]string{}
	s.inProgress = map[string]bool{}
	s.mu.Unlock()
	s.bus.Publish(events.CacheCleared, events.Simple(""))
}

func (s *Store) enableSafeModeOnCorruption(id string, cause error) {
	_ = s.safe.Enable(cause.Error())
	s.bus.Publish(events.SafeModeOn, events.Simple(id, "reason", cause.Error()))
}

func (s *Store) cacheObject(id string, v any) {
	s.objCache.Put(id, v)
	s.bus.Publish(events.CacheEntryAdded, events.Simple(id, "kind", "object"))
}

func mapLockErr(err error, id string) *Error {
	lockErr, ok := err.(*lock.Error)
	if !ok {
		return newErr(IO, id, err)
	}
	switch lockErr.Kind {
	case lock.Timeout:
		return newErr(LockTimeout, id, lockErr)
	case lock.Refused:
		return newErr(LockRefused, id, lockErr)
	case lock.ReleaseFailed:
		return newErr(LockReleaseFailed, id, lockErr)
	default:
		return newErr(IO, id, lockErr)
	}
}

// withExclusive acquires an exclusive lock on id, checking safe-mode
// first so writes get the more specific SafeMode error rather than
// whatever the lock manager's own refusal would report, then runs fn
// and always releases.
func (s *Store) withExclusive(id string, fn func() error) error {
	if s.safe.Enabled() {
		return newErr(SafeMode, id, nil)
	}
	h, err := s.locks.Acquire(id, lock.Exclusive)
	if err != nil {
		return mapLockErr(err, id)
	}
	defer func() {
		if relErr := s.locks.Release(h); relErr != nil {
			s.logger.warn("failed to release lock", id, relErr)
		}
	}()
	s.bus.Publish(events.LockAcquired, events.Simple(id, "mode", "exclusive"))
	err = fn()
	s.bus.Publish(events.LockReleased, events.Simple(id, "mode", "exclusive"))
	return err
}

func (s *Store) withShared(id string, fn func() error) error {
	h, err := s.locks.Acquire(id, lock.Shared)
	if err != nil {
		return mapLockErr(err, id)
	}
	defer func() {
		if relErr := s.locks.Release(h); relErr != nil {
			s.logger.warn("failed to release lock", id, relErr)
		}
	}()
	s.bus.Publish(events.LockAcquired, events.Simple(id, "mode", "shared"))
	err = fn()
	s.bus.Publish(events.LockReleased, events.Simple(id, "mode", "shared"))
	return err
}

// nowUnix is the monotonic-ish wall-clock stamp recorded on metadata
// as timestampCreation, expressed as seconds-since-epoch to
// match the float64 the original metadata schema uses.
func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
