package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func readEntries(t *testing.T, dataDir string) []Entry {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(dataDir, "audit", "*.jsonl.zst"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	var out []Entry
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		dec, err := zstd.NewReader(f)
		if err != nil {
			t.Fatalf("zstd %s: %v", p, err)
		}
		sc := bufio.NewScanner(dec)
		for sc.Scan() {
			var e Entry
			if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
				t.Fatalf("line %q: %v", sc.Text(), err)
			}
			out = append(out, e)
		}
		if err := sc.Err(); err != nil {
			t.Fatalf("scan %s: %v", p, err)
		}
		dec.Close()
		_ = f.Close()
	}
	return out
}

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)

	entries := []Entry{
		{Actor: "admin", Op: "point.add", SceneID: "museum", PointID: "vase-1"},
		{Actor: "admin", Op: "scene.create", SceneID: "teahouse", Detail: "name=Teahouse"},
		{Actor: "admin", Op: "import", Detail: "scenes=4"},
	}
	for _, e := range entries {
		if err := l.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEntries(t, dir)
	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}
	for i, e := range got {
		if e.Op != entries[i].Op || e.SceneID != entries[i].SceneID {
			t.Fatalf("entry %d = %+v, want %+v", i, e, entries[i])
		}
		if e.Time == "" {
			t.Fatalf("entry %d missing timestamp", i)
		}
	}
}

func TestReopenAppends(t *testing.T) {
	dir := t.TempDir()

	l := NewLogger(dir)
	if err := l.Write(Entry{Op: "point.add", SceneID: "museum"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l2 := NewLogger(dir)
	if err := l2.Write(Entry{Op: "point.delete", SceneID: "museum"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := l2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEntries(t, dir)
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}
}

func TestExplicitTimeKept(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)
	if err := l.Write(Entry{Time: "2026-01-02T03:04:05Z", Op: "scene.meta"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEntries(t, dir)
	if len(got) != 1 || got[0].Time != "2026-01-02T03:04:05Z" {
		t.Fatalf("entries = %+v", got)
	}
}
