//go:build windows

package process

import "syscall"

func newProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// killGroup is a no-op; descendant discovery already covers the tree.
func killGroup(int) error {
	return nil
}

func isNoSuchProcess(error) bool {
	return false
}
