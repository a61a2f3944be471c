// Package pull drives a model download: it opens the daemon's pull stream,
// decodes progress events, aggregates per-artifact bytes, and decides how
// the download ended.
package pull

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nchapman/onboard/internal/logs"
	"github.com/nchapman/onboard/internal/ollama"
	"github.com/nchapman/onboard/internal/progress"
	"github.com/nchapman/onboard/internal/stream"
)

// State is the lifecycle of a session.
type State int32

const (
	StateIdle State = iota
	StateDownloading
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDownloading:
		return "downloading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Puller opens a streamed pull. *ollama.Client implements it.
type Puller interface {
	Pull(ctx context.Context, name string) (io.ReadCloser, error)
}

// Lister lists local models. *ollama.Client implements it.
type Lister interface {
	ListModels(ctx context.Context) ([]ollama.Model, error)
}

// Options configures a Session. Hooks run on the session goroutine, one at a
// time. OnProgress, OnStatus, OnMalformed and OnComplete must not call Cancel
// or Start; OnDone may call Start to begin the next pull.
type Options struct {
	// IdleTimeout aborts the stream when no bytes arrive for this long.
	// Zero disables it.
	IdleTimeout time.Duration

	Logger *log.Logger

	OnProgress  func(progress.Snapshot)
	OnStatus    func(status string)
	OnMalformed func(*MalformedLineError)

	// OnComplete fires once per successful pull with the refreshed model
	// list, unless the pull was cancelled first.
	OnComplete func(models []ollama.Model, err error)

	// OnDone fires once when a session ends, whatever the outcome.
	OnDone func(Result)

	// OnBusyChange reports the in-progress indicator turning on and off.
	OnBusyChange func(busy bool)
}

// Result is the outcome of one pull.
type Result struct {
	SessionID string
	Model     string
	State     State
	Err       error
	Snapshot  progress.Snapshot

	// Models is the re-listed model set after a completed pull, and ListErr
	// the error from that re-list.
	Models  []ollama.Model
	ListErr error

	Started  time.Time
	Finished time.Time
}

func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

type run struct {
	id     string
	cancel context.CancelCauseFunc
	done   chan struct{}
	result Result
}

// Session runs at most one pull at a time and can be reused for later pulls.
type Session struct {
	puller Puller
	lister Lister
	opts   Options
	agg    *progress.Aggregator

	state atomic.Int32
	busy  atomic.Bool

	mu      sync.Mutex
	current *run

	// publishMu serializes observer hooks against Cancel.
	publishMu sync.Mutex
	cancelled bool
}

func NewSession(puller Puller, lister Lister, opts Options) *Session {
	return &Session{
		puller: puller,
		lister: lister,
		opts:   opts,
		agg:    progress.NewAggregator(),
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// InProgress reports whether a pull is running.
func (s *Session) InProgress() bool {
	return s.busy.Load()
}

// Snapshot returns the progress of the current or most recent pull.
func (s *Session) Snapshot() progress.Snapshot {
	return s.agg.Snapshot()
}

// Start begins pulling name in the background. It returns
// ErrAlreadyInProgress, leaving the running pull untouched, if a pull is
// already downloading.
func (s *Session) Start(ctx context.Context, name string) error {
	for {
		cur := s.state.Load()
		if State(cur) == StateDownloading {
			return ErrAlreadyInProgress
		}
		if s.state.CompareAndSwap(cur, int32(StateDownloading)) {
			break
		}
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	r := &run{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.agg.Reset()

	// Publishing the run and clearing the cancelled flag happen together so
	// a concurrent Cancel targets either the previous run or this one.
	s.mu.Lock()
	s.publishMu.Lock()
	s.cancelled = false
	s.current = r
	s.publishMu.Unlock()
	s.busy.Store(true)
	s.mu.Unlock()

	if s.opts.OnBusyChange != nil {
		s.opts.OnBusyChange(true)
	}

	go s.run(runCtx, r, name)
	return nil
}

// Wait blocks until the current pull ends and returns its result. Without
// any pull it returns an idle result immediately.
func (s *Session) Wait() Result {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()

	if r == nil {
		return Result{State: StateIdle}
	}
	<-r.done
	return r.result
}

// Pull runs a pull to completion.
func (s *Session) Pull(ctx context.Context, name string) (Result, error) {
	if err := s.Start(ctx, name); err != nil {
		return Result{}, err
	}
	res := s.Wait()
	return res, res.Err
}

// Cancel abandons the running pull and releases its connection. Once Cancel
// returns, no further progress, status, malformed-line or completion hooks
// are called.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.publishMu.Lock()
	s.cancelled = true
	r := s.current
	s.publishMu.Unlock()
	s.mu.Unlock()

	if r != nil {
		r.cancel(context.Canceled)
	}
}

func (s *Session) run(ctx context.Context, r *run, name string) {
	logger := s.logger("session", r.id, "model", name)
	res := Result{
		SessionID: r.id,
		Model:     name,
		State:     StateDownloading,
		Started:   time.Now(),
	}

	defer func() {
		r.cancel(nil)
		res.Finished = time.Now()
		if res.State != StateCompleted {
			res.Snapshot = s.agg.Snapshot()
		}
		r.result = res

		// The terminal state is visible before any hook runs, so a hook
		// may start the next pull. A completed pull stored it already and
		// may have been followed by a new Start.
		if res.State != StateCompleted {
			s.state.Store(int32(res.State))
		}

		s.mu.Lock()
		cleared := s.current == r
		if cleared {
			s.busy.Store(false)
		}
		s.mu.Unlock()

		if cleared && s.opts.OnBusyChange != nil {
			s.opts.OnBusyChange(false)
		}
		if s.opts.OnDone != nil {
			s.opts.OnDone(res)
		}
		close(r.done)
	}()

	fail := func(err error) {
		res.State = StateFailed
		res.Err = err
		logger.Error("pull failed", "err", err, "elapsed", time.Since(res.Started).Round(time.Millisecond))
	}

	logger.Info("starting pull")

	body, err := s.puller.Pull(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			fail(s.interruptError(ctx))
		} else {
			fail(err)
		}
		return
	}
	if body == nil {
		fail(&ollama.Error{
			Kind:    ollama.KindUnsupportedTransport,
			Op:      "pull",
			Message: "response has no streamable body",
		})
		return
	}
	defer body.Close()

	// Closing the body unblocks a pending Read on cancellation.
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	var src io.Reader = body
	var idle *idleReader
	if s.opts.IdleTimeout > 0 {
		idle = newIdleReader(body, s.opts.IdleTimeout, func() { r.cancel(ErrIdleTimeout) })
		defer idle.Stop()
		src = idle
	}

	succeeded := false
	for line, err := range stream.NewDecoder(src).Lines() {
		if err != nil {
			fail(s.streamError(ctx, err))
			return
		}

		ev, err := ParseEvent(line)
		if err != nil {
			var mle *MalformedLineError
			errors.As(err, &mle)
			logger.Warn("skipping malformed line", "err", err)
			s.emit(func() {
				if s.opts.OnMalformed != nil {
					s.opts.OnMalformed(mle)
				}
			})
			continue
		}

		if ev.Error != "" {
			fail(&RemoteError{Message: ev.Error})
			return
		}

		if ev.IsProgress() {
			u := s.agg.Apply(ev.Digest, ev.Total, ev.Completed)
			if u.Regressed {
				logger.Warn("progress went backwards",
					"digest", u.Digest,
					"previous", u.Previous.Completed,
					"completed", u.Current.Completed)
			}
			snap := s.agg.Snapshot()
			s.emit(func() {
				if s.opts.OnProgress != nil {
					s.opts.OnProgress(snap)
				}
			})
		}

		switch {
		case ev.IsSuccess():
			succeeded = true
		case ev.Status != "" && !ev.IsProgress():
			logger.Debug("status", "status", ev.Status)
			s.emit(func() {
				if s.opts.OnStatus != nil {
					s.opts.OnStatus(ev.Status)
				}
			})
		}
	}

	if idle != nil {
		idle.Stop()
	}
	if ctx.Err() != nil {
		fail(s.interruptError(ctx))
		return
	}
	if !succeeded {
		fail(ErrIncompleteStream)
		return
	}

	// Once Completed is stored another Start may reset the aggregator, so
	// the snapshot is taken first.
	res.State = StateCompleted
	res.Snapshot = s.agg.Snapshot()
	s.state.Store(int32(StateCompleted))
	logger.Info("pull completed",
		"artifacts", res.Snapshot.Len(),
		"elapsed", time.Since(res.Started).Round(time.Millisecond))

	if s.lister == nil {
		return
	}
	models, err := s.lister.ListModels(ctx)
	if err != nil {
		logger.Warn("failed to refresh model list", "err", err)
	}
	res.Models = models
	res.ListErr = err
	s.emit(func() {
		if s.opts.OnComplete != nil {
			s.opts.OnComplete(models, err)
		}
	})
}

// emit runs an observer hook unless the session has been cancelled.
func (s *Session) emit(fn func()) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if s.cancelled {
		return
	}
	fn()
}

// streamError classifies an error from reading the stream.
func (s *Session) streamError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return s.interruptError(ctx)
	}
	if errors.Is(err, bufio.ErrTooLong) {
		return &ollama.Error{Kind: ollama.KindProtocol, Op: "pull", Message: "stream line too long", Cause: err}
	}
	return &ollama.Error{Kind: ollama.KindTransport, Op: "pull", Message: "stream interrupted", Cause: err}
}

// interruptError describes why ctx ended: idle timeout or cancellation.
func (s *Session) interruptError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrIdleTimeout) {
		return fmt.Errorf("%w (%s)", ErrIdleTimeout, s.opts.IdleTimeout)
	}
	return &ollama.Error{Kind: ollama.KindTransport, Op: "pull", Message: "cancelled", Cause: cause}
}

// logger returns Options.Logger, or the application logger, carrying keyvals.
func (s *Session) logger(keyvals ...any) *log.Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger.With(keyvals...)
	}
	return logs.With(keyvals...)
}
