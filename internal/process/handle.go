package process

import (
	"errors"
	"os/exec"
	"sync"
	"time"
)

// Handle is a reference to one spawned (or adopted) root process.
//
// The done channel is closed by whoever reaps the process. For handles made
// by ExecSpawner that is a background Wait; handles created with NewHandle
// stay open until MarkExited is called.
type Handle struct {
	pid       int
	startedAt time.Time

	exitOnce sync.Once
	done     chan struct{}
	exitErr  error

	stopOnce sync.Once
}

// NewHandle wraps a PID that this package did not spawn.
func NewHandle(pid int) *Handle {
	return &Handle{
		pid:       pid,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// PID returns the root process ID.
func (h *Handle) PID() int {
	return h.pid
}

// StartedAt returns when the handle was created.
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// Done is closed once the root process has been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Exited reports whether the root process has been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the root's exit code, or -1 while it is still running.
// A process killed by a signal reports -1 as well.
func (h *Handle) ExitCode() int {
	if !h.Exited() {
		return -1
	}
	if h.exitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(h.exitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// MarkExited records the result of reaping the root. Only the first call
// has an effect.
func (h *Handle) MarkExited(err error) {
	h.exitOnce.Do(func() {
		h.exitErr = err
		close(h.done)
	})
}

// StopOnce runs fn exactly once for this handle. Concurrent callers block
// until the first fn has returned.
func (h *Handle) StopOnce(fn func()) {
	h.stopOnce.Do(fn)
}
