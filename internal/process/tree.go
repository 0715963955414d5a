package process

import (
	"errors"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// Tree discovers and kills processes.
type Tree interface {
	// Descendants returns every transitive child of pid, parents before
	// their children.
	Descendants(pid int) ([]int, error)
	// Kill force-kills a single process.
	Kill(pid int) error
}

// GroupKiller is implemented by trees that can signal a whole process group.
type GroupKiller interface {
	KillGroup(pgid int) error
}

// SystemTree is the host's process table, read through gopsutil.
type SystemTree struct{}

// Descendants takes one snapshot of the process table and walks it
// breadth-first from pid. Processes that vanish mid-scan are skipped.
func (SystemTree) Descendants(pid int) ([]int, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	children := make(map[int][]int, len(procs))
	for _, p := range procs {
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		children[int(ppid)] = append(children[int(ppid)], int(p.Pid))
	}

	var result []int
	seen := map[int]bool{pid: true}
	queue := []int{pid}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range children[parent] {
			if seen[child] {
				continue
			}
			seen[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result, nil
}

// Kill sends SIGKILL (TerminateProcess on Windows) to pid.
func (SystemTree) Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Kill()
}

// KillGroup kills the process group led by pgid.
func (SystemTree) KillGroup(pgid int) error {
	return killGroup(pgid)
}

// IsNotFound reports whether err means the target process no longer exists.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, process.ErrorProcessNotRunning) ||
		isNoSuchProcess(err)
}
