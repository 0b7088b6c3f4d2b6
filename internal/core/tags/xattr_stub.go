//go:build !linux

package tags

// mirrorAttributes needs extended attribute syscalls; elsewhere the mirror
// is a silent no-op.
func mirrorAttributes(path string, rec TagRecord) error {
	return nil
}
