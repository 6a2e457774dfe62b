// Package progress keeps the visitor's exploration read-model: visited
// points, chat activity and unlocked achievements, in a small SQLite
// database. Writes go through an async loop so a slow disk never stalls
// the tour; the in-memory scene state stays the source of truth.
package progress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot is the queryable progress state.
type Snapshot struct {
	VisitedPoints  []string `json:"visitedPoints"`
	ScenesExplored []string `json:"scenesExplored"`
	Conversations  int      `json:"conversationsCount"`
	Achievements   []string `json:"achievementsUnlocked"`
	FirstVisit     string   `json:"firstVisit,omitempty"`
	LastVisit      string   `json:"lastVisit,omitempty"`
}

type reqKind int

const (
	reqVisit reqKind = iota + 1
	reqConversation
	reqAchievement
	reqFlush
)

type req struct {
	kind    reqKind
	sceneID string
	pointID string
	achID   string
	at      string
	done    chan struct{}
}

// Tracker owns the database. Record methods never block; if the writer
// falls behind, entries are dropped rather than stalling a session.
type Tracker struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func Open(path string) (*Tracker, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	t := &Tracker{
		db: db,
		ch: make(chan req, 4096),
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.loop()
	}()
	return t, nil
}

func initSchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visits (
			scene_id TEXT NOT NULL,
			point_id TEXT NOT NULL,
			first_visited_at TEXT NOT NULL,
			PRIMARY KEY (scene_id, point_id)
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scene_id TEXT NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			unlocked_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) Close() error {
	var err error
	t.once.Do(func() {
		t.closed.Store(true)
		close(t.ch)
		t.wg.Wait()
		err = t.db.Close()
	})
	return err
}

// RecordVisit notes that a point was reached for the first time this or
// any session. Duplicate visits are absorbed by the primary key.
func (t *Tracker) RecordVisit(sceneID, pointID string) {
	t.enqueue(req{kind: reqVisit, sceneID: sceneID, pointID: pointID, at: now()})
}

// RecordConversation counts one visitor question to the guide.
func (t *Tracker) RecordConversation(sceneID string) {
	t.enqueue(req{kind: reqConversation, sceneID: sceneID, at: now()})
}

func (t *Tracker) enqueue(r req) {
	if t == nil || t.closed.Load() {
		return
	}
	select {
	case t.ch <- r:
	default:
		// Drop when saturated; progress is advisory, the tour is not.
	}
}

func (t *Tracker) loop() {
	for r := range t.ch {
		switch r.kind {
		case reqVisit:
			_, _ = t.db.Exec(
				`INSERT OR IGNORE INTO visits (scene_id, point_id, first_visited_at) VALUES (?, ?, ?)`,
				r.sceneID, r.pointID, r.at)
			t.evaluateAchievements()
		case reqConversation:
			_, _ = t.db.Exec(
				`INSERT INTO conversations (scene_id, at) VALUES (?, ?)`,
				r.sceneID, r.at)
			t.evaluateAchievements()
		case reqAchievement:
			_, _ = t.db.Exec(
				`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`,
				r.achID, r.at)
		case reqFlush:
			close(r.done)
		}
	}
}

func (t *Tracker) evaluateAchievements() {
	snap, err := t.snapshotLocked()
	if err != nil {
		return
	}
	for _, a := range Catalog {
		if a.Condition(snap) {
			_, _ = t.db.Exec(
				`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`,
				a.ID, now())
		}
	}
}

// Flush waits until every write enqueued before the call has been
// applied. Intended for tests and shutdown paths.
func (t *Tracker) Flush() {
	if t == nil || t.closed.Load() {
		return
	}
	done := make(chan struct{})
	select {
	case t.ch <- req{kind: reqFlush, done: done}:
		<-done
	default:
	}
}

// Snapshot reads the current progress state.
func (t *Tracker) Snapshot() (Snapshot, error) {
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() (Snapshot, error) {
	snap := Snapshot{}

	rows, err := t.db.Query(`SELECT scene_id, point_id, first_visited_at FROM visits ORDER BY first_visited_at, point_id`)
	if err != nil {
		return snap, err
	}
	scenes := map[string]bool{}
	for rows.Next() {
		var sceneID, pointID, at string
		if err := rows.Scan(&sceneID, &pointID, &at); err != nil {
			_ = rows.Close()
			return snap, err
		}
		snap.VisitedPoints = append(snap.VisitedPoints, pointID)
		if !scenes[sceneID] {
			scenes[sceneID] = true
			snap.ScenesExplored = append(snap.ScenesExplored, sceneID)
		}
		if snap.FirstVisit == "" || at < snap.FirstVisit {
			snap.FirstVisit = at
		}
		if at > snap.LastVisit {
			snap.LastVisit = at
		}
	}
	if err := rows.Close(); err != nil {
		return snap, err
	}

	if err := t.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&snap.Conversations); err != nil {
		return snap, err
	}

	arows, err := t.db.Query(`SELECT id FROM achievements ORDER BY unlocked_at, id`)
	if err != nil {
		return snap, err
	}
	for arows.Next() {
		var id string
		if err := arows.Scan(&id); err != nil {
			_ = arows.Close()
			return snap, err
		}
		snap.Achievements = append(snap.Achievements, id)
	}
	return snap, arows.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
