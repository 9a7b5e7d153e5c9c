//go:build !linux

package timestamp

import "os"

func fileTimes(path string) (int64, Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, "", err
	}
	return info.ModTime().Unix(), SourceModTime, nil
}
