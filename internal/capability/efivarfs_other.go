//go:build !linux

package capability

func isEfivarfs(string) bool {
	return false
}
