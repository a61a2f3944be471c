// Package onboard implements the first-run flow: a welcome step, the
// command-line install step, and the hand-off to model downloads.
package onboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/nchapman/onboard/internal/config"
	"github.com/nchapman/onboard/internal/fileutil"
)

const lockRetryDelay = 50 * time.Millisecond

// State is what onboarding persists between runs.
type State struct {
	FirstRunCompleted bool      `json:"first_run_completed"`
	CompletedAt       time.Time `json:"completed_at,omitzero"`
}

// Store reads and writes State as JSON, serialized across processes by a
// lock file.
type Store struct {
	path     string
	lockPath string
}

func NewStore(path, lockPath string) *Store {
	return &Store{path: path, lockPath: lockPath}
}

// DefaultStore uses the paths under ~/.onboard.
func DefaultStore() *Store {
	return NewStore(config.StatePath(), config.LockPath())
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored state, or the zero State when none was saved.
func (s *Store) Load(ctx context.Context) (State, error) {
	var st State
	err := s.withLock(ctx, true, func() error {
		var err error
		st, err = s.read()
		return err
	})
	return st, err
}

// Save overwrites the stored state.
func (s *Store) Save(ctx context.Context, st State) error {
	return s.withLock(ctx, false, func() error {
		return fileutil.AtomicWriteJSON(s.path, st)
	})
}

// Update performs a read-modify-write under the exclusive lock. The state is
// written back only when fn reports a change.
func (s *Store) Update(ctx context.Context, fn func(*State) (bool, error)) error {
	return s.withLock(ctx, false, func() error {
		st, err := s.read()
		if err != nil {
			return err
		}
		changed, err := fn(&st)
		if err != nil || !changed {
			return err
		}
		return fileutil.AtomicWriteJSON(s.path, st)
	})
}

func (s *Store) read() (State, error) {
	var st State
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return st, nil
}

func (s *Store) withLock(ctx context.Context, shared bool, fn func() error) error {
	fl := flock.New(s.lockPath)

	var locked bool
	var err error
	if shared {
		locked, err = fl.TryRLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = fl.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", s.lockPath, err)
	}
	if !locked {
		return fmt.Errorf("acquire lock %s: %w", s.lockPath, ctx.Err())
	}
	defer fl.Unlock()

	return fn()
}

// LoadState reads the state from the default store.
func LoadState(ctx context.Context) (State, error) {
	return DefaultStore().Load(ctx)
}

// SaveState writes the state to the default store.
func SaveState(ctx context.Context, st State) error {
	return DefaultStore().Save(ctx, st)
}
