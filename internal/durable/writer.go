// Package durable implements the two write primitives the store builds on:
// an atomic full-file write via temp-file+fsync+rename, and an
// fsync'd append. Modeled on the teacher's export-manifest writer, which
// uses the same temp-file-in-target-dir-then-rename discipline for a single
// file; this generalises it to any payload and adds the append primitive.
package durable

import (
	"os"
	"path/filepath"

	"github.com/kgraph/kgcore/internal/kgerr"
)

// WriteFull writes data to path atomically: write to a uniquely named
// <dir>/<base>.tmp.<random> file, fsync, rename over the target. If rename fails (e.g. a platform-locked
// target), it falls back to writing the target directly, which leaves the
// prior file intact only up to that fallback's own write.
func WriteFull(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.")
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "create temp file for %s", path)
	}
	tmpPath := tmp.Name()
	cleanupTemp := true
	defer func() {
		_ = tmp.Close()
		if cleanupTemp {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "write temp file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "fsync temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "close temp file for %s", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanupTemp = false
		if ferr := writeDirect(path, data, perm); ferr != nil {
			return kgerr.Wrap(kgerr.StorageWrite, ferr, "fallback direct write to %s after rename failure: %v", path, err)
		}
		_ = os.Remove(tmpPath)
		return nil
	}
	// Permission fixup failure is non-fatal; the write already succeeded.
	_ = os.Chmod(path, perm)
	return nil
}

// writeDirect opens the target directly for write, fsyncs, and closes. Used
// only as the fallback when atomic rename fails.
func writeDirect(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// Append opens target for append, writing a leading newline first if the
// file is already non-empty, then fsyncs and closes. A failure here may
// leave a partially written trailing line; the loader discards it if it
// fails to parse.
func Append(path string, line []byte, perm os.FileMode) error {
	info, statErr := os.Stat(path)
	nonEmpty := statErr == nil && info.Size() > 0

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "open %s for append", path)
	}
	defer f.Close()

	if nonEmpty {
		if _, err := f.Write([]byte("\n")); err != nil {
			return kgerr.Wrap(kgerr.StorageWrite, err, "append newline to %s", path)
		}
	}
	if _, err := f.Write(line); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "append line to %s", path)
	}
	if err := f.Sync(); err != nil {
		return kgerr.Wrap(kgerr.StorageWrite, err, "fsync %s after append", path)
	}
	return nil
}

// ReadAllTolerant reads every line of path, returning each non-empty line;
// it does not itself discard unparseable trailing lines (that's the
// caller's decode-time decision, since only the caller knows the schema),
// but it exists here because it shares the durable package's I/O error
// wrapping conventions.
func ReadAllTolerant(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kgerr.Wrap(kgerr.StorageRead, err, "read %s", path)
	}
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines, nil
}
