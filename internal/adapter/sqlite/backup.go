package sqlite

import (
	"io"
	"os"
	"path/filepath"
)

// Snapshot copies the backing file to a temporary sibling in the same
// directory and returns its path. The sibling placement keeps the later
// rename atomic on the same filesystem.
func (s *Store) Snapshot() (string, error) {
	src, err := os.Open(s.path)
	if err != nil {
		return "", storageErr("snapshot", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", storageErr("snapshot", err)
	}

	backup, err := os.CreateTemp(filepath.Dir(s.path), ".backup-*.db")
	if err != nil {
		return "", storageErr("snapshot", err)
	}
	if _, err := io.Copy(backup, src); err != nil {
		backup.Close()
		os.Remove(backup.Name())
		return "", storageErr("snapshot", err)
	}
	// CreateTemp opens the file 0600; a restore renames the snapshot into
	// place, so it must carry the backing file's mode.
	if err := backup.Chmod(info.Mode()); err != nil {
		backup.Close()
		os.Remove(backup.Name())
		return "", storageErr("snapshot", err)
	}
	if err := backup.Close(); err != nil {
		os.Remove(backup.Name())
		return "", storageErr("snapshot", err)
	}
	return backup.Name(), nil
}

// Restore replaces the backing file with the snapshot at backup. After a
// restore the file is byte-for-byte what it was when the snapshot was taken.
func (s *Store) Restore(backup string) error {
	return storageErr("restore", os.Rename(backup, s.path))
}

// Discard removes a snapshot that is no longer needed.
func (s *Store) Discard(backup string) error {
	return storageErr("discard", os.Remove(backup))
}
