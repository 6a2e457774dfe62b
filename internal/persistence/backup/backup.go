// Package backup archives the override blob before destructive
// replacements (imports), as zstd-compressed files with a JSON header
// line, so a bad import can always be rolled back by hand.
package backup

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	Reason    string `json:"reason"`
}

const headerVersion = 1

// Write stores blob under dir as overrides-<unixnano>.json.zst and
// returns the path. Nanosecond names keep rapid successive imports from
// overwriting each other's backup.
func Write(dir, reason string, blob []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("overrides-%d.json.zst", now.UnixNano()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", err
	}
	defer enc.Close()

	bw := bufio.NewWriter(enc)
	defer bw.Flush()

	hb, _ := json.Marshal(Header{
		Version:   headerVersion,
		CreatedAt: now.UTC().Format(time.RFC3339),
		Reason:    reason,
	})
	if _, err := bw.Write(hb); err != nil {
		return "", err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return "", err
	}
	if _, err := bw.Write(blob); err != nil {
		return "", err
	}
	return path, nil
}

// Read returns the header and blob of a backup file.
func Read(path string) (Header, []byte, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return hdr, nil, err
	}
	line, blob, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return hdr, nil, fmt.Errorf("backup %s: missing header line", filepath.Base(path))
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("backup %s: bad header: %w", filepath.Base(path), err)
	}
	return hdr, blob, nil
}

// Latest returns the most recent backup path under dir, or "" when none
// exist.
func Latest(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTS int64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "overrides-") || !strings.HasSuffix(name, ".json.zst") {
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(name, "overrides-"), ".json.zst")
		ts, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || ts > bestTS {
			bestTS = ts
			best = filepath.Join(dir, name)
		}
	}
	return best
}

// Prune keeps the newest keep backups and removes the rest.
func Prune(dir string, keep int) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	type backupFile struct {
		name string
		ts   int64
	}
	var files []backupFile
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "overrides-") || !strings.HasSuffix(name, ".json.zst") {
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(name, "overrides-"), ".json.zst")
		ts, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, backupFile{name: name, ts: ts})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ts < files[j].ts })
	if len(files) <= keep {
		return nil
	}
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(filepath.Join(dir, f.name)); err != nil {
			return err
		}
	}
	return nil
}
