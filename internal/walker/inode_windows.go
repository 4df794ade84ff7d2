//go:build !unix

package walker

import "os"

// inodeKey falls back to the resolved path where Sys() exposes no
// device/inode pair; resolved paths are unique per real directory, which
// is enough to break symlink cycles.
func inodeKey(_ os.FileInfo, fallback string) string {
	return fallback
}
