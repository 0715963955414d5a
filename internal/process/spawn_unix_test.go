//go:build !windows

package process

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

// alive treats zombies as dead: they hold no resources and only wait to be
// reaped by their parent.
func alive(pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		return false
	}
	for _, s := range status {
		if s == process.Zombie {
			return false
		}
	}
	return true
}

func TestExecSpawnerStreamsOutputAndReaps(t *testing.T) {
	var out syncBuffer
	outputLogger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	parser := func(line string) (string, string) {
		if rest, ok := strings.CutPrefix(line, "[warning] "); ok {
			return "warning", rest
		}
		return "info", line
	}

	s := NewExecSpawner(testLogger(), outputLogger, parser)
	h, err := s.Spawn(context.Background(), "sh", []string{"-c", "echo hello; echo '[warning] careful' >&2; exit 3"})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if h.PID() <= 0 {
		t.Fatalf("invalid pid %d", h.PID())
	}

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process was not reaped")
	}
	if code := h.ExitCode(); code != 3 {
		t.Errorf("ExitCode() = %d, want 3", code)
	}

	ok := waitFor(t, time.Second, func() bool {
		s := out.String()
		return strings.Contains(s, "hello") && strings.Contains(s, "level=WARN msg=careful")
	})
	if !ok {
		t.Errorf("output not forwarded to logger: %q", out.String())
	}
}

func TestExecSpawnerMissingBinary(t *testing.T) {
	s := NewExecSpawner(testLogger(), nil, nil)
	if _, err := s.Spawn(context.Background(), "/nonexistent/transcoder", nil); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestExecSpawnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewExecSpawner(testLogger(), nil, nil)
	if _, err := s.Spawn(ctx, "sh", []string{"-c", "true"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// A stub transcoder that forks a long-lived child, like ffmpeg helpers do.
const forkingStub = `for last; do :; done
sleep 30 &
echo $! > "$(dirname "$last")/child.pid"
wait
`

func TestTerminateKillsWholeRealTree(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "stub.sh")
	if err := os.WriteFile(script, []byte(forkingStub), 0o755); err != nil {
		t.Fatal(err)
	}
	pidFile := filepath.Join(dir, "child.pid")

	s := NewExecSpawner(testLogger(), nil, nil)
	h, err := s.Spawn(context.Background(), "sh", []string{script, filepath.Join(dir, "index.m3u8")})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	var childPID int
	ok := waitFor(t, 2*time.Second, func() bool {
		data, err := os.ReadFile(pidFile)
		if err != nil {
			return false
		}
		childPID, err = strconv.Atoi(strings.TrimSpace(string(data)))
		return err == nil && childPID > 0
	})
	if !ok {
		t.Fatal("stub never reported its child pid")
	}
	if !alive(childPID) {
		t.Fatalf("child %d not running before terminate", childPID)
	}

	NewTerminator(SystemTree{}, testLogger()).Terminate(h)

	if !waitFor(t, 2*time.Second, h.Exited) {
		t.Error("root was not reaped after Terminate")
	}
	if !waitFor(t, 2*time.Second, func() bool { return !alive(childPID) }) {
		t.Errorf("grandchild %d survived termination", childPID)
	}
}

func TestSystemTreeKillMissingProcessIsNotFound(t *testing.T) {
	s := NewExecSpawner(testLogger(), nil, nil)
	h, err := s.Spawn(context.Background(), "sh", []string{"-c", "exit 0"})
	if err != nil {
		t.Fatal(err)
	}
	<-h.Done()

	err = SystemTree{}.Kill(h.PID())
	if err != nil && !IsNotFound(err) {
		t.Errorf("killing a reaped pid returned %v, want not-found", err)
	}
}
