package onboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nchapman/onboard/internal/logs"
)

// Step is a screen of the onboarding flow.
type Step int

const (
	StepWelcome Step = iota
	StepCLI
	StepDownloadModels
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepCLI:
		return "cli"
	case StepDownloadModels:
		return "download-models"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// InitialStep picks where onboarding starts: the welcome screen until the
// first run has been completed, model downloads afterwards.
func InitialStep(st State) Step {
	if st.FirstRunCompleted {
		return StepDownloadModels
	}
	return StepWelcome
}

// Flow tracks the current step and performs the install transition.
type Flow struct {
	store     *Store
	installer Installer

	mu   sync.Mutex
	step Step
}

// NewFlow loads persisted state and positions the flow at its initial step.
func NewFlow(ctx context.Context, store *Store, installer Installer) (*Flow, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Flow{
		store:     store,
		installer: installer,
		step:      InitialStep(st),
	}, nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Next leaves the welcome screen. Other steps only move through Install.
func (f *Flow) Next() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepWelcome {
		f.step = StepCLI
	}
	return f.step
}

// Install runs the installer from the CLI step. On success the first run is
// recorded and the flow moves to model downloads; on failure it stays put.
func (f *Flow) Install(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepCLI {
		return fmt.Errorf("install is not available at step %s", f.step)
	}
	if err := CompleteInstall(ctx, f.store, f.installer); err != nil {
		logs.Error("could not install", "err", err)
		return err
	}
	f.step = StepDownloadModels
	return nil
}

// CompleteInstall runs installer and marks the first run completed. The
// flag is written once; later installs leave the stored state untouched.
func CompleteInstall(ctx context.Context, store *Store, installer Installer) error {
	if err := installer.Install(ctx); err != nil {
		return fmt.Errorf("install CLI: %w", err)
	}
	return store.Update(ctx, func(st *State) (bool, error) {
		if st.FirstRunCompleted {
			return false, nil
		}
		st.FirstRunCompleted = true
		st.CompletedAt = time.Now().UTC()
		return true, nil
	})
}
