package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	blob := []byte(`{"version":"1.1.0","scenes":{}}`)
	at := time.Unix(1700000000, 0)

	path, err := Write(dir, "import", blob, at)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "overrides-1700000000000000000.json.zst" {
		t.Fatalf("path = %s", path)
	}

	hdr, got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if hdr.Version != headerVersion || hdr.Reason != "import" {
		t.Fatalf("header = %+v", hdr)
	}
	if hdr.CreatedAt != at.UTC().Format(time.RFC3339) {
		t.Fatalf("created_at = %q", hdr.CreatedAt)
	}
	if string(got) != string(blob) {
		t.Fatalf("blob = %q, want %q", got, blob)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "overrides-1.json.zst")
	if err := os.WriteFile(p, []byte("not zstd at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Read(p); err == nil {
		t.Fatal("expected error for non-zstd file")
	}
}

func TestLatestPicksNewest(t *testing.T) {
	dir := t.TempDir()
	if Latest(dir) != "" {
		t.Fatal("empty dir should have no latest")
	}
	for _, ts := range []int64{100, 300, 200} {
		if _, err := Write(dir, "import", []byte("{}"), time.Unix(ts, 0)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := Latest(dir)
	if filepath.Base(got) != "overrides-300000000000.json.zst" {
		t.Fatalf("Latest = %s", got)
	}
}

func TestWritesInSameSecondKeepBoth(t *testing.T) {
	dir := t.TempDir()
	at := time.Unix(1700000000, 0)

	first, err := Write(dir, "import", []byte(`{"n":1}`), at)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, err := Write(dir, "import", []byte(`{"n":2}`), at.Add(time.Millisecond))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if first == second {
		t.Fatalf("backups collided on %s", first)
	}

	_, blob, err := Read(first)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(blob) != `{"n":1}` {
		t.Fatalf("first backup overwritten: %s", blob)
	}
	if filepath.Base(Latest(dir)) != filepath.Base(second) {
		t.Fatalf("Latest = %s, want %s", Latest(dir), second)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for ts := int64(1); ts <= 5; ts++ {
		if _, err := Write(dir, "import", []byte("{}"), time.Unix(ts, 0)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if err := Prune(dir, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(ents) != 2 {
		t.Fatalf("kept %d backups, want 2", len(ents))
	}
	if filepath.Base(Latest(dir)) != "overrides-5000000000.json.zst" {
		t.Fatalf("newest backup pruned: %s", Latest(dir))
	}

	if err := Prune(filepath.Join(dir, "missing"), 2); err != nil {
		t.Fatalf("Prune on missing dir: %v", err)
	}
}
