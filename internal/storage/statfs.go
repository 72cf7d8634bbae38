package storage

import "golang.org/x/sys/unix"

// diskFreeSpace reports the fragment size and available bytes of the
// volume holding path.
func diskFreeSpace(path string) (blockSize, availBytes int64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	blockSize = int64(st.Frsize)
	if blockSize <= 0 {
		blockSize = int64(st.Bsize)
	}
	availBytes = int64(st.Bavail) * blockSize
	return blockSize, availBytes, nil
}
