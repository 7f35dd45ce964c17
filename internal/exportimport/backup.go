package exportimport

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kgraph/kgcore/internal/durable"
	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// Backup writes a JSON snapshot of g to "<dir>/backup-<unix-timestamp>.json"
// using the same atomic write the store uses for compaction (§4.B), so a
// backup is never left half-written. Returns the backup's full path.
func Backup(dir string, g *kgtypes.Graph, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, g); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "backup-"+strconv.FormatInt(now.Unix(), 10)+".json")
	if err := durable.WriteFull(path, buf.Bytes(), 0o644); err != nil {
		return "", kgerr.Wrap(kgerr.FileOperation, err, "write backup to %s", path)
	}
	return path, nil
}

// Restore reads a backup written by Backup and decodes it back into a
// Graph, ready to hand to a store.Backend's Save.
func Restore(path string) (*kgtypes.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.FileOperation, err, "read backup %s", path)
	}
	return DecodeJSON(bytes.NewReader(data))
}
