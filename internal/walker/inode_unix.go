//go:build unix

package walker

import (
	"fmt"
	"os"
	"syscall"
)

// inodeKey identifies a directory by device and inode, so two symlink
// routes to the same real directory collapse to one visit.
func inodeKey(info os.FileInfo, fallback string) string {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%d:%d", st.Dev, st.Ino)
	}
	return fallback
}
