// Package audit records every admin mutation as compressed JSONL, one
// file per hour, so an operator can reconstruct how a deployment's scene
// configuration got to its current state.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Entry is one recorded admin action.
type Entry struct {
	Time    string `json:"time"`
	Actor   string `json:"actor,omitempty"`
	Op      string `json:"op"`
	SceneID string `json:"scene_id,omitempty"`
	PointID string `json:"point_id,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Logger writes entries as zstd-compressed JSONL with hourly rotation.
type Logger struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewLogger(dataDir string) *Logger {
	return &Logger{
		baseDir: filepath.Join(dataDir, "audit"),
		prefix:  "admin",
	}
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

// Write appends one entry, stamping it if the caller left Time empty.
func (l *Logger) Write(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	if e.Time == "" {
		e.Time = now.Format(time.RFC3339)
	}
	hour := now.Format("2006-01-02-15")
	if hour != l.curHour {
		if err := l.rotateLocked(hour); err != nil {
			return err
		}
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

func (l *Logger) rotateLocked(hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	path := l.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 128*1024)
	l.curHour = hour
	return nil
}

func (l *Logger) closeLocked() error {
	var err1 error
	if l.w != nil {
		_ = l.w.Flush()
	}
	if l.enc != nil {
		err1 = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.w = nil
	return err1
}

func (l *Logger) pathForHour(hour string) string {
	return filepath.Join(l.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", l.prefix, hour))
}
