package policy

import (
	"os"

	"github.com/metascrub/metascrub/pkg/types"
)

// OutputChecker decides whether a planned output is already current,
// so a second run over the same tree does not redo finished work.
type OutputChecker struct{}

func NewOutputChecker() *OutputChecker {
	return &OutputChecker{}
}

// IsCurrent reports whether destPath exists and is at least as new as
// the source file. A cleaned file older than its source is treated as
// stale and gets rewritten.
func (d *OutputChecker) IsCurrent(src types.FileEntry, destPath string) (bool, error) {
	destInfo, err := os.Stat(destPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return !destInfo.ModTime().Before(src.ModTime), nil
}
