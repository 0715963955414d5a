package process

import "log/slog"

// Terminator force-kills process trees in a single pass. It does not wait
// for exits; reaping is left to the handle's owner.
type Terminator struct {
	tree   Tree
	logger *slog.Logger
}

// NewTerminator creates a Terminator over tree.
func NewTerminator(tree Tree, logger *slog.Logger) *Terminator {
	return &Terminator{tree: tree, logger: logger}
}

// Terminate kills every descendant of h (deepest first), then h itself,
// then h's process group. Failures are logged, never returned: a stop must
// always complete.
//
// When the root has already been reaped its PID may belong to someone else,
// so only the group sweep runs.
func (t *Terminator) Terminate(h *Handle) {
	pid := h.PID()

	descendants, err := t.tree.Descendants(pid)
	if err != nil {
		t.logger.Warn("Failed to list descendants", "pid", pid, "error", err)
	}
	for i := len(descendants) - 1; i >= 0; i-- {
		t.kill(descendants[i])
	}

	if h.Exited() {
		t.logger.Debug("Root already exited, skipping direct kill", "pid", pid)
	} else {
		t.kill(pid)
	}

	if gk, ok := t.tree.(GroupKiller); ok {
		if err := gk.KillGroup(pid); err != nil && !IsNotFound(err) {
			t.logger.Warn("Failed to kill process group", "pgid", pid, "error", err)
		}
	}

	t.logger.Info("Process tree terminated", "pid", pid, "descendants", len(descendants))
}

func (t *Terminator) kill(pid int) {
	if err := t.tree.Kill(pid); err != nil {
		if IsNotFound(err) {
			t.logger.Debug("Process already gone", "pid", pid)
			return
		}
		t.logger.Warn("Failed to kill process", "pid", pid, "error", err)
	}
}
