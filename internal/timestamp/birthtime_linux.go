//go:build linux

package timestamp

import "golang.org/x/sys/unix"

// fileTimes reads birth time where the filesystem records it, else change time.
func fileTimes(path string) (int64, Source, error) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME|unix.STATX_CTIME|unix.STATX_MTIME, &stx); err != nil {
		return 0, "", err
	}
	switch {
	case stx.Mask&unix.STATX_BTIME != 0 && stx.Btime.Sec > 0:
		return stx.Btime.Sec, SourceBirthTime, nil
	case stx.Mask&unix.STATX_CTIME != 0:
		return stx.Ctime.Sec, SourceChangeTime, nil
	default:
		return stx.Mtime.Sec, SourceModTime, nil
	}
}
