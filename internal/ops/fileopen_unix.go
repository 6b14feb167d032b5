//go:build !windows

package ops

import (
	stderrors "errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/empowerguard/moodjournal/internal/errors"
)

// openNoFollow opens path with O_NOFOLLOW so a symlink planted after
// ValidatePath fails with ELOOP instead of being followed.
func openNoFollow(path string, flag int, perm os.FileMode, verb string) (*os.File, error) {
	fd, err := unix.Open(path, flag|unix.O_NOFOLLOW|unix.O_CLOEXEC, uint32(perm))
	switch {
	case err == nil:
		return os.NewFile(uintptr(fd), path), nil
	case stderrors.Is(err, unix.ELOOP):
		return nil, errors.NewInvalidRequest("cannot " + verb + " symlink")
	case stderrors.Is(err, unix.ENOENT) && flag&os.O_CREATE == 0:
		return nil, errors.NewFileNotFound(path)
	default:
		return nil, err
	}
}

func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return openNoFollow(path, flag, perm, "write to")
}

func openFileNoFollowRead(path string) (*os.File, error) {
	return openNoFollow(path, os.O_RDONLY, 0, "read from")
}
