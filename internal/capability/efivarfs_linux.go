package capability

import "golang.org/x/sys/unix"

// isEfivarfs reports whether path is the root of an efivarfs mount.
func isEfivarfs(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	return uint32(st.Type) == uint32(unix.EFIVARFS_MAGIC)
}
