// Package lock implements the per-record advisory lock manager:
// shared/exclusive locks over a file per UUID, acquired by polling
// at a fixed interval until granted or a timeout elapses, with
// per-process bookkeeping of held handles that ReleaseAll releases in
// one call.
package lock

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/cuemby/silo/pkg/log"
)

// Mode is the lock mode requested.
type Mode int

const (
	Shared Mode = iota
	Exclusive
)

func (m Mode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

const (
	// DefaultTimeout is the default acquisition deadline.
	DefaultTimeout = 10 * time.Second
	// PollInterval is how often acquisition is retried while waiting.
	PollInterval = 100 * time.Millisecond
)

// Handle represents a lock held by this process on one UUID.
type Handle struct {
	uuid string
	mode Mode
	file *os.File
	path string
}

// UUID returns the identifier this handle locks.
func (h *Handle) UUID() string { return h.uuid }

// Mode returns the mode this handle holds.
func (h *Handle) Mode() Mode { return h.mode }

// Manager grants shared/exclusive locks over files named
// <dir>/<uuid>.lock. One Manager is meant to be shared by every call on a
// single storage handle; per-process state (the held map) lives here, not
// in any global.
type Manager struct {
	dir      string
	timeout  time.Duration
	refused  func() bool // consults safe-mode; nil means never refuse
	mu       sync.Mutex
	held     map[string]*Handle
	logger   zeroLogger
}

// zeroLogger is the narrow logging surface Manager needs, satisfied by
// defaultLogger, which forwards to the "lock" component logger of
// pkg/log without putting zerolog types into this file's signatures.
type zeroLogger interface {
	Debug(msg string, uuid string, mode string)
	Warn(msg string, uuid string, err error)
}

type defaultLogger struct{}

func (defaultLogger) Debug(msg, uuid, mode string) {
	logger := log.WithComponent("lock")
	logger.Debug().Str("uuid", uuid).Str("mode", mode).Msg(msg)
}
func (defaultLogger) Warn(msg, uuid string, err error) {
	logger := log.WithComponent("lock")
	logger.Warn().Str("uuid", uuid).Err(err).Msg(msg)
}

// New creates a Manager rooted at dir (the store passes its storage
// root, so lock files sit beside the records as <root>/<uuid>.lock).
// refused, if non-nil, is consulted on every Acquire; when it returns
// true the acquisition fails immediately with an *Error of Kind
// Refused. The store uses it to refuse every lock while safe-mode is
// active.
func New(dir string, timeout time.Duration, refused func() bool) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		dir:     dir,
		timeout: timeout,
		refused: refused,
		held:    make(map[string]*Handle),
		logger:  defaultLogger{},
	}
}

// Acquire blocks (polling at PollInterval) until the lock on id is
// granted in the requested mode or the timeout elapses.
func (m *Manager) Acquire(id string, mode Mode) (*Handle, error) {
	if m.refused != nil && m.refused() {
		return nil, &Error{Kind: Refused, UUID: id, Mode: mode}
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, &Error{Kind: IOFailure, UUID: id, Mode: mode, Err: err}
	}
	path := filepath.Join(m.dir, id+".lock")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &Error{Kind: IOFailure, UUID: id, Mode: mode, Err: err}
	}

	flockMode := unix.LOCK_SH
	if mode == Exclusive {
		flockMode = unix.LOCK_EX
	}

	deadline := time.Now().Add(m.timeout)
	for {
		err := unix.Flock(int(f.Fd()), flockMode|unix.LOCK_NB)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, &Error{Kind: Timeout, UUID: id, Mode: mode}
		}
		time.Sleep(PollInterval)
	}

	h := &Handle{uuid: id, mode: mode, file: f, path: path}
	m.mu.Lock()
	m.held[id] = h
	m.mu.Unlock()
	m.logger.Debug("lock acquired", id, mode.String())
	return h, nil
}

// Release releases a previously acquired handle: unlocks, closes, and
// unlinks the lock file. It is safe to call more than once.
func (m *Manager) Release(h *Handle) error {
	if h == nil || h.file == nil {
		return nil
	}
	m.mu.Lock()
	delete(m.held, h.uuid)
	m.mu.Unlock()

	_ = unix.Flock(int(h.file.Fd()), unix.LOCK_UN)
	closeErr := h.file.Close()
	h.file = nil
	rmErr := os.Remove(h.path)
	if rmErr != nil && !os.IsNotExist(rmErr) {
		m.logger.Warn("lock release failed to unlink", h.uuid, rmErr)
		return &Error{Kind: ReleaseFailed, UUID: h.uuid, Mode: h.mode, Err: rmErr}
	}
	if closeErr != nil {
		return &Error{Kind: ReleaseFailed, UUID: h.uuid, Mode: h.mode, Err: closeErr}
	}
	return nil
}

// ReleaseAll releases every handle currently held by this Manager. A
// failure releasing one handle does not stop attempts on the others;
// all errors encountered are returned together.
func (m *Manager) ReleaseAll() []error {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.held))
	for _, h := range m.held {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := m.Release(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsLockedByOther reports whether id's lock file exists and this process
// does not currently hold it.
func (m *Manager) IsLockedByOther(id string) bool {
	path := filepath.Join(m.dir, id+".lock")
	if _, err := os.Stat(path); err != nil {
		return false
	}
	m.mu.Lock()
	_, held := m.held[id]
	m.mu.Unlock()
	return !held
}

// Kind classifies a lock failure.
type Kind int

const (
	Timeout Kind = iota
	Refused
	ReleaseFailed
	IOFailure
)

// Error is returned by Acquire/Release on failure, tagged with Kind so
// callers can distinguish timeout, refusal, release failure, and I/O
// failure without string-matching Error().
type Error struct {
	Kind Kind
	UUID string
	Mode Mode
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Timeout:
		return "lock: timed out acquiring " + e.Mode.String() + " lock on " + e.UUID
	case Refused:
		return "lock: refused (safe-mode) for " + e.UUID
	case ReleaseFailed:
		return "lock: failed to release " + e.Mode.String() + " lock on " + e.UUID
	default:
		return "lock: io failure on " + e.UUID
	}
}

func (e *Error) Unwrap() error { return e.Err }
