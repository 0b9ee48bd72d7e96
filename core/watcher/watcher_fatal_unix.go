//go:build !windows

package watcher

import (
	"errors"
	"syscall"
)

// isFatalWatchError matches inotify resource exhaustion: the watch limit
// (ENOSPC) and the per-process or system file descriptor limits.
func isFatalWatchError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
