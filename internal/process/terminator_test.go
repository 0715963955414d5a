package process

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTree is an in-memory process table.
type fakeTree struct {
	mu          sync.Mutex
	children    map[int][]int
	descErr     error
	killErr     map[int]error
	killed      []int
	groupKilled []int
}

func newFakeTree(children map[int][]int) *fakeTree {
	return &fakeTree{children: children, killErr: map[int]error{}}
}

func (f *fakeTree) Descendants(pid int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.descErr != nil {
		return nil, f.descErr
	}
	var out []int
	queue := []int{pid}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, c := range f.children[p] {
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out, nil
}

func (f *fakeTree) Kill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	return f.killErr[pid]
}

func (f *fakeTree) KillGroup(pgid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupKilled = append(f.groupKilled, pgid)
	return nil
}

func TestTerminateKillsDeepestFirst(t *testing.T) {
	tree := newFakeTree(map[int][]int{
		100: {101, 102},
		101: {103},
	})

	NewTerminator(tree, testLogger()).Terminate(NewHandle(100))

	want := []int{103, 102, 101, 100}
	if !reflect.DeepEqual(tree.killed, want) {
		t.Errorf("kill order = %v, want %v", tree.killed, want)
	}
	if !reflect.DeepEqual(tree.groupKilled, []int{100}) {
		t.Errorf("group sweep = %v, want [100]", tree.groupKilled)
	}
}

func TestTerminateTreatsVanishedProcessesAsSuccess(t *testing.T) {
	tree := newFakeTree(map[int][]int{200: {201, 202}})
	tree.killErr[201] = os.ErrProcessDone
	tree.killErr[202] = errors.New("permission denied")

	NewTerminator(tree, testLogger()).Terminate(NewHandle(200))

	// A failure on one process never stops the sweep.
	want := []int{202, 201, 200}
	if !reflect.DeepEqual(tree.killed, want) {
		t.Errorf("kill order = %v, want %v", tree.killed, want)
	}
}

func TestTerminateSkipsRootAfterExit(t *testing.T) {
	tree := newFakeTree(map[int][]int{300: {301}})
	h := NewHandle(300)
	h.MarkExited(nil)

	NewTerminator(tree, testLogger()).Terminate(h)

	if !reflect.DeepEqual(tree.killed, []int{301}) {
		t.Errorf("killed = %v, want only the orphaned child", tree.killed)
	}
	if !reflect.DeepEqual(tree.groupKilled, []int{300}) {
		t.Errorf("group sweep = %v, want [300]", tree.groupKilled)
	}
}

func TestTerminateStillKillsRootWhenListingFails(t *testing.T) {
	tree := newFakeTree(nil)
	tree.descErr = errors.New("proc unreadable")

	NewTerminator(tree, testLogger()).Terminate(NewHandle(400))

	if !reflect.DeepEqual(tree.killed, []int{400}) {
		t.Errorf("killed = %v, want [400]", tree.killed)
	}
}

func TestHandleStopOnceRunsOnceForConcurrentCallers(t *testing.T) {
	h := NewHandle(500)

	var runs atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	finished := make(chan struct{}, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.StopOnce(func() {
				runs.Add(1)
				<-release
			})
			finished <- struct{}{}
		}()
	}

	select {
	case <-finished:
		t.Fatal("a caller returned before the first stop completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()

	if n := runs.Load(); n != 1 {
		t.Errorf("stop ran %d times, want 1", n)
	}
}

func TestHandleExitState(t *testing.T) {
	h := NewHandle(600)
	if h.Exited() {
		t.Fatal("new handle should not be exited")
	}
	if code := h.ExitCode(); code != -1 {
		t.Errorf("ExitCode() = %d before exit, want -1", code)
	}

	h.MarkExited(nil)
	h.MarkExited(errors.New("ignored"))

	if !h.Exited() {
		t.Fatal("handle should be exited")
	}
	if code := h.ExitCode(); code != 0 {
		t.Errorf("ExitCode() = %d, want 0", code)
	}
}
