// Package tour owns the live visitor session: the materialized state of
// the active scene, the admin mutation surface over the override store,
// and the import/export flows. All access is linearized under one mutex
// so every mutation observes a fully settled state.
package tour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"culturewalk.ai/internal/manifest"
	"culturewalk.ai/internal/overrides"
	"culturewalk.ai/internal/persistence/audit"
	"culturewalk.ai/internal/persistence/backup"
	"culturewalk.ai/internal/progress"
	"culturewalk.ai/internal/scene"
)

var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrSceneExists   = errors.New("scene id already in use")
	ErrPointNotFound = errors.New("point not found")
	ErrBadPoint      = errors.New("point id required")
)

// DefaultTransitionWindow bounds how long a scene switch keeps the
// session in the transitioning state.
const DefaultTransitionWindow = 1500 * time.Millisecond

const maxChatHistory = 200

// ChatMessage is one entry of the session conversation history.
type ChatMessage struct {
	ID        string `json:"messageId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// View is a consistent snapshot of the session for transport handshakes
// and scene broadcasts.
type View struct {
	SceneID       string
	Meta          scene.Meta
	Points        []scene.Point
	Available     []string
	Spawn         scene.Vec3
	Transitioning bool
}

// ImportResult reports what an accepted import did. MissingModels is
// advisory: referenced assets not present in the manifest.
type ImportResult struct {
	Scenes        int      `json:"scenes"`
	MissingModels []string `json:"missingModels,omitempty"`
	Backup        string   `json:"backup,omitempty"`
}

// Options wires the session's collaborators. Only Backend is required.
type Options struct {
	Backend          overrides.Backend
	Logger           *log.Logger
	Clock            func() time.Time
	Models           manifest.Source
	BackupDir        string
	Audit            *audit.Logger
	Tracker          *progress.Tracker
	DefaultScene     string
	TransitionWindow time.Duration
}

// Session is the single shared tour state. One instance serves every
// connection; the mutex makes each operation atomic with respect to the
// override store and the materialized scene.
type Session struct {
	cat     *scene.Catalog
	backend overrides.Backend
	logger  *log.Logger
	clock   func() time.Time

	models    manifest.Source
	backupDir string
	auditLog  *audit.Logger
	tracker   *progress.Tracker

	transitionWindow time.Duration

	mu    sync.Mutex
	store *overrides.Store

	currentScene string
	points       []scene.Point
	meta         map[string]scene.Meta
	available    []string

	currentPointID  string
	selectedPointID string
	playerPos       scene.Vec3
	messages        []ChatMessage

	transitioningUntil time.Time
}

// New loads the override store and materializes the starting scene. A
// missing or corrupt blob degrades to built-in defaults, never to an
// error.
func New(cat *scene.Catalog, opts Options) *Session {
	s := &Session{
		cat:              cat,
		backend:          opts.Backend,
		logger:           opts.Logger,
		clock:            opts.Clock,
		models:           opts.Models,
		backupDir:        opts.BackupDir,
		auditLog:         opts.Audit,
		tracker:          opts.Tracker,
		transitionWindow: opts.TransitionWindow,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.transitionWindow <= 0 {
		s.transitionWindow = DefaultTransitionWindow
	}

	s.store = overrides.Load(s.backend, s.cat, s.logger)
	s.meta = overrides.MaterializeMeta(s.cat, s.store)
	s.available = overrides.AvailableScenes(s.cat, s.store)

	start := opts.DefaultScene
	if start == "" || !s.knownSceneLocked(start) {
		start = scene.FallbackScene
	}
	s.enterSceneLocked(start, false)
	return s
}

// reloadLocked re-reads the persisted blob so the mutation applies on
// top of whatever is on disk, not on a possibly stale in-memory copy.
func (s *Session) reloadLocked() *overrides.Store {
	return overrides.Load(s.backend, s.cat, s.logger)
}

// commitLocked persists st and refreshes every derived view. Visited
// flags of surviving points are preserved across the re-materialization.
func (s *Session) commitLocked(st *overrides.Store) error {
	if err := overrides.Save(s.backend, s.cat, st); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	s.store = st
	s.meta = overrides.MaterializeMeta(s.cat, s.store)
	s.available = overrides.AvailableScenes(s.cat, s.store)

	visited := map[string]bool{}
	for _, p := range s.points {
		if p.Visited {
			visited[p.ID] = true
		}
	}
	s.points = overrides.MaterializeScene(s.cat, s.store, s.currentScene)
	for i := range s.points {
		if visited[s.points[i].ID] {
			s.points[i].Visited = true
		}
	}
	if s.currentPointID != "" && s.findPointLocked(s.currentPointID) == nil {
		s.currentPointID = ""
	}
	if s.selectedPointID != "" && s.findPointLocked(s.selectedPointID) == nil {
		s.selectedPointID = ""
	}
	return nil
}

// enterSceneLocked makes sceneID active: fresh point list, spawn reset,
// cleared conversation, and a bounded transition window.
func (s *Session) enterSceneLocked(sceneID string, transition bool) {
	s.currentScene = sceneID
	s.points = overrides.MaterializeScene(s.cat, s.store, sceneID)
	s.currentPointID = ""
	s.selectedPointID = ""
	s.messages = nil
	s.playerPos = scene.SpawnPosition
	if transition {
		s.transitioningUntil = s.clock().Add(s.transitionWindow)
	}
}

func (s *Session) knownSceneLocked(id string) bool {
	for _, have := range s.available {
		if have == id {
			return true
		}
	}
	return false
}

func (s *Session) findPointLocked(id string) *scene.Point {
	for i := range s.points {
		if s.points[i].ID == id {
			return &s.points[i]
		}
	}
	return nil
}

// syncItemsLocked keeps the scene's item list in step with its
// materialized point names after a point mutation.
func (s *Session) syncItemsLocked(st *overrides.Store, sceneID string) {
	pts := overrides.MaterializeScene(s.cat, st, sceneID)
	names := make([]string, 0, len(pts))
	for _, p := range pts {
		names = append(names, p.Name)
	}
	m, ok := st.Meta[sceneID]
	if !ok {
		m = scene.Meta{ID: sceneID, Name: sceneID}
	}
	m.Items = names
	st.Meta[sceneID] = m
}

func (s *Session) record(actor, op, sceneID, pointID, detail string) {
	if s.auditLog == nil {
		return
	}
	err := s.auditLog.Write(audit.Entry{
		Actor:   actor,
		Op:      op,
		SceneID: sceneID,
		PointID: pointID,
		Detail:  detail,
	})
	if err != nil && s.logger != nil {
		s.logger.Printf("tour: audit %s: %v", op, err)
	}
}

// View returns a consistent snapshot of the active scene.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	pts := make([]scene.Point, len(s.points))
	copy(pts, s.points)
	avail := make([]string, len(s.available))
	copy(avail, s.available)
	return View{
		SceneID:       s.currentScene,
		Meta:          s.meta[s.currentScene],
		Points:        pts,
		Available:     avail,
		Spawn:         scene.SpawnPosition,
		Transitioning: s.clock().Before(s.transitioningUntil),
	}
}

// CurrentScene returns the active scene id.
func (s *Session) CurrentScene() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentScene
}

// Points returns a copy of the materialized point list.
func (s *Session) Points() []scene.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scene.Point, len(s.points))
	copy(out, s.points)
	return out
}

// ScenePoints materializes any known scene without switching to it.
func (s *Session) ScenePoints(sceneID string) ([]scene.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownSceneLocked(sceneID) {
		return nil, ErrSceneNotFound
	}
	if sceneID == s.currentScene {
		out := make([]scene.Point, len(s.points))
		copy(out, s.points)
		return out, nil
	}
	return overrides.MaterializeScene(s.cat, s.store, sceneID), nil
}

// Meta returns the effective metadata of a scene.
func (s *Session) Meta(sceneID string) (scene.Meta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meta[sceneID]
	return m, ok
}

// IsBuiltinScene reports whether sceneID is part of the fixed catalog.
func (s *Session) IsBuiltinScene(sceneID string) bool {
	return s.cat.IsBuiltin(sceneID)
}

// AvailableScenes returns the selectable scene ids in display order.
func (s *Session) AvailableScenes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.available))
	copy(out, s.available)
	return out
}

// IsTransitioning reports whether a scene switch is still settling.
func (s *Session) IsTransitioning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock().Before(s.transitioningUntil)
}

// SwitchScene activates a scene and returns the fresh view.
func (s *Session) SwitchScene(sceneID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownSceneLocked(sceneID) {
		return View{}, ErrSceneNotFound
	}
	s.enterSceneLocked(sceneID, true)
	return s.viewLocked(), nil
}

// AddScenePoint adds a point to a scene. An id collision with an
// existing custom point replaces it wholesale; a collision with a
// built-in point shadows it on the next materialization.
func (s *Session) AddScenePoint(actor, sceneID string, raw scene.RawPoint) (scene.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw.ID == "" {
		return scene.Point{}, ErrBadPoint
	}
	if !s.knownSceneLocked(sceneID) {
		return scene.Point{}, ErrSceneNotFound
	}

	p := scene.NormalizePoint(raw)
	st := s.reloadLocked()
	replaced := false
	for i := range st.Custom[sceneID] {
		if st.Custom[sceneID][i].ID == p.ID {
			st.Custom[sceneID][i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		st.Custom[sceneID] = append(st.Custom[sceneID], p)
	}
	s.syncItemsLocked(st, sceneID)
	if err := s.commitLocked(st); err != nil {
		return scene.Point{}, err
	}
	s.record(actor, "point.add", sceneID, p.ID, p.Name)
	return p, nil
}

// PointPatch is a partial point update. Absent fields keep their value;
// a present position or rotation replaces the whole vector. The
// collision field distinguishes absent (keep) from null (automatic).
type PointPatch struct {
	Name            *string         `json:"name,omitempty"`
	Position        *scene.RawVec   `json:"position,omitempty"`
	Rotation        *scene.RawVec   `json:"rotation,omitempty"`
	Scale           *float64        `json:"scale,omitempty"`
	Radius          *float64        `json:"radius,omitempty"`
	CollisionRadius json.RawMessage `json:"collisionRadius,omitempty"`
	Description     *string         `json:"description,omitempty"`
	AIContext       *string         `json:"aiContext,omitempty"`
	ModelPath       *string         `json:"modelPath,omitempty"`
}

func applyPatch(p scene.Point, patch PointPatch) (scene.Point, error) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Position != nil {
		// A supplied position replaces the old one wholesale; absent
		// components default to zero, never to the previous value.
		p.Position = scene.NormalizeVec(patch.Position, scene.Vec3{})
	}
	if patch.Rotation != nil {
		rot := scene.NormalizeVec(patch.Rotation, scene.Vec3{})
		p.Rotation = &rot
	}
	if patch.Scale != nil {
		v := *patch.Scale
		p.Scale = &v
	}
	if patch.Radius != nil {
		p.Radius = *patch.Radius
	}
	if len(patch.CollisionRadius) > 0 {
		if string(patch.CollisionRadius) == "null" {
			p.Collision = scene.Collision{Mode: scene.CollisionAuto}
		} else {
			v, err := strconv.ParseFloat(string(patch.CollisionRadius), 64)
			if err != nil {
				return p, fmt.Errorf("collisionRadius: %w", err)
			}
			p.Collision = scene.CollisionFromWire(&v)
		}
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.AIContext != nil {
		p.AIContext = *patch.AIContext
	}
	if patch.ModelPath != nil {
		p.ModelPath = *patch.ModelPath
	}
	return p, nil
}

// UpdateScenePoint patches an effective point. Updating a built-in point
// synthesizes a full custom copy carrying the patch, so the baseline
// stays untouched.
func (s *Session) UpdateScenePoint(actor, sceneID, pointID string, patch PointPatch) (scene.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownSceneLocked(sceneID) {
		return scene.Point{}, ErrSceneNotFound
	}

	st := s.reloadLocked()
	effective := overrides.MaterializeScene(s.cat, st, sceneID)
	var base *scene.Point
	for i := range effective {
		if effective[i].ID == pointID {
			base = &effective[i]
			break
		}
	}
	if base == nil {
		return scene.Point{}, ErrPointNotFound
	}

	updated, err := applyPatch(*base, patch)
	if err != nil {
		return scene.Point{}, err
	}
	replaced := false
	for i := range st.Custom[sceneID] {
		if st.Custom[sceneID][i].ID == pointID {
			st.Custom[sceneID][i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		st.Custom[sceneID] = append(st.Custom[sceneID], updated)
	}
	s.syncItemsLocked(st, sceneID)
	if err := s.commitLocked(st); err != nil {
		return scene.Point{}, err
	}
	s.record(actor, "point.update", sceneID, pointID, updated.Name)
	return updated, nil
}

// DeleteScenePoint removes a point. A built-in id is suppressed via the
// deleted list; a custom-only id is simply dropped.
func (s *Session) DeleteScenePoint(actor, sceneID, pointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownSceneLocked(sceneID) {
		return ErrSceneNotFound
	}

	st := s.reloadLocked()
	found := false
	custom := st.Custom[sceneID]
	for i := range custom {
		if custom[i].ID == pointID {
			st.Custom[sceneID] = append(custom[:i], custom[i+1:]...)
			found = true
			break
		}
	}
	if s.cat.HasPoint(sceneID, pointID) {
		found = true
		already := false
		for _, id := range st.Deleted[sceneID] {
			if id == pointID {
				already = true
				break
			}
		}
		if !already {
			st.Deleted[sceneID] = append(st.Deleted[sceneID], pointID)
		}
	}
	if !found {
		return ErrPointNotFound
	}
	s.syncItemsLocked(st, sceneID)
	if err := s.commitLocked(st); err != nil {
		return err
	}
	s.record(actor, "point.delete", sceneID, pointID, "")
	return nil
}

// NewScene describes a scene to create.
type NewScene struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	DefaultPrompt string `json:"defaultPrompt"`
}

// CreateScene registers a new custom scene with a seeded intro point and
// switches to it. An id already present in the registry is rejected.
func (s *Session) CreateScene(actor string, req NewScene) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		return View{}, ErrSceneNotFound
	}
	if s.knownSceneLocked(req.ID) {
		return View{}, ErrSceneExists
	}

	name := req.Name
	if name == "" {
		name = req.ID
	}
	desc := req.Description
	if desc == "" {
		desc = "Admin-created custom scene"
	}
	icon := req.Icon
	if icon == "" {
		icon = "🎭"
	}
	intro := scene.Point{
		ID:        fmt.Sprintf("%s-intro-%d", req.ID, s.clock().UnixMilli()),
		Name:      name,
		Radius:    5,
		AIContext: req.DefaultPrompt,
	}
	if intro.AIContext == "" {
		intro.AIContext = "You are a friendly local guide for " + name + "."
	}

	st := s.reloadLocked()
	st.Custom[req.ID] = []scene.Point{intro}
	st.Meta[req.ID] = scene.Meta{
		ID:            req.ID,
		Name:          name,
		Description:   desc,
		Icon:          icon,
		DefaultPrompt: req.DefaultPrompt,
	}
	if err := s.commitLocked(st); err != nil {
		return View{}, err
	}
	s.record(actor, "scene.create", req.ID, "", name)
	s.enterSceneLocked(req.ID, true)
	return s.viewLocked(), nil
}

// MetaPatch is a partial scene metadata update.
type MetaPatch struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Icon          *string   `json:"icon,omitempty"`
	Items         *[]string `json:"items,omitempty"`
	DefaultPrompt *string   `json:"defaultPrompt,omitempty"`
}

// UpdateSceneMeta patches the effective metadata of a scene. Absent
// fields keep their current effective value.
func (s *Session) UpdateSceneMeta(actor, sceneID string, patch MetaPatch) (scene.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.knownSceneLocked(sceneID) {
		return scene.Meta{}, ErrSceneNotFound
	}

	st := s.reloadLocked()
	merged := overrides.MaterializeMeta(s.cat, st)
	m := merged[sceneID]
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.Icon != nil {
		m.Icon = *patch.Icon
	}
	if patch.Items != nil {
		m.Items = append([]string(nil), (*patch.Items)...)
	}
	if patch.DefaultPrompt != nil {
		m.DefaultPrompt = *patch.DefaultPrompt
	}
	if m.ID == "" {
		m.ID = sceneID
	}
	if m.Icon == "" {
		m.Icon = "🎭"
	}
	st.Meta[sceneID] = m
	if err := s.commitLocked(st); err != nil {
		return scene.Meta{}, err
	}
	s.record(actor, "scene.meta", sceneID, "", m.Name)
	return m, nil
}

// DeleteScene removes a custom scene and every override attached to it.
// Built-in and unknown scenes report false without touching anything. If
// the deleted scene was active, the session falls back to the default
// scene.
func (s *Session) DeleteScene(actor, sceneID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat.IsBuiltin(sceneID) || !s.knownSceneLocked(sceneID) {
		return false, nil
	}

	st := s.reloadLocked()
	delete(st.Custom, sceneID)
	delete(st.Deleted, sceneID)
	delete(st.Meta, sceneID)
	st.Meta = overrides.MergeMeta(s.cat, st.Meta, st.Custom)
	if err := s.commitLocked(st); err != nil {
		return false, err
	}
	s.record(actor, "scene.delete", sceneID, "", "")
	if s.currentScene == sceneID {
		s.enterSceneLocked(scene.FallbackScene, true)
	}
	return true, nil
}

// ExportOverrides snapshots the persisted overrides into the portable
// payload, tagged with the active scene.
func (s *Session) ExportOverrides() overrides.ExportPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.reloadLocked()
	s.store = st
	return overrides.Export(st, s.currentScene, s.clock())
}

// ImportOverrides validates raw, backs up the current blob and replaces
// the whole store with the payload's contents. A *overrides.PayloadError
// means nothing was applied. Missing model references are advisory and
// never block the import.
func (s *Session) ImportOverrides(ctx context.Context, actor string, raw []byte) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := overrides.ParsePayload(raw)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	if s.models != nil {
		files, err := s.models.Files(ctx)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("tour: model manifest unavailable: %v", err)
			}
		} else {
			res.MissingModels = overrides.MissingModels(payload, files)
		}
	}

	if s.backupDir != "" {
		if blob, ok, err := s.backend.Read(); err == nil && ok {
			path, err := backup.Write(s.backupDir, "import", blob, s.clock())
			if err != nil {
				if s.logger != nil {
					s.logger.Printf("tour: backup before import: %v", err)
				}
			} else {
				res.Backup = path
			}
		}
	}

	st := overrides.StoreFromPayload(s.cat, payload)
	if err := s.commitLocked(st); err != nil {
		return ImportResult{}, err
	}
	res.Scenes = len(s.available)
	if !s.knownSceneLocked(s.currentScene) {
		s.enterSceneLocked(scene.FallbackScene, true)
	} else {
		s.enterSceneLocked(s.currentScene, true)
	}
	s.record(actor, "import", "", "", fmt.Sprintf("%d scenes", res.Scenes))
	return res, nil
}

// UpdatePlayerPosition records the visitor position and returns the
// point whose trigger radius was newly entered, if any. During a scene
// transition nothing triggers.
func (s *Session) UpdatePlayerPosition(pos scene.Vec3) *scene.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerPos = pos
	if s.clock().Before(s.transitioningUntil) {
		return nil
	}

	var nearest *scene.Point
	nearestSq := 0.0
	for i := range s.points {
		p := &s.points[i]
		if p.Radius <= 0 {
			continue
		}
		dsq := scene.DistanceSq(pos, p.Position)
		if dsq > p.Radius*p.Radius {
			continue
		}
		if nearest == nil || dsq < nearestSq {
			nearest = p
			nearestSq = dsq
		}
	}
	if nearest == nil {
		s.currentPointID = ""
		return nil
	}
	if nearest.ID == s.currentPointID {
		return nil
	}
	s.currentPointID = nearest.ID
	nearest.Visited = true
	if s.tracker != nil {
		s.tracker.RecordVisit(s.currentScene, nearest.ID)
	}
	out := *nearest
	return &out
}

// PlayerPosition returns the last recorded visitor position.
func (s *Session) PlayerPosition() scene.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerPos
}

// SelectPoint marks a point as the focused one and returns it.
func (s *Session) SelectPoint(pointID string) (scene.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPointLocked(pointID)
	if p == nil {
		return scene.Point{}, ErrPointNotFound
	}
	s.selectedPointID = pointID
	return *p, nil
}

// CurrentPoint returns the point the visitor is standing in, if any.
func (s *Session) CurrentPoint() (scene.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findPointLocked(s.currentPointID); p != nil {
		return *p, true
	}
	return scene.Point{}, false
}

// MarkPointVisited flags a point without requiring proximity.
func (s *Session) MarkPointVisited(pointID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findPointLocked(pointID); p != nil {
		p.Visited = true
	}
}

// AppendMessage records one conversation entry and returns it stamped
// with an id and timestamp. User messages count toward the progress
// tracker.
func (s *Session) AppendMessage(role, content string) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.clock().UTC().Format(time.RFC3339),
	}
	s.messages = append(s.messages, msg)
	if n := len(s.messages); n > maxChatHistory {
		s.messages = s.messages[n-maxChatHistory:]
	}
	if role == "user" && s.tracker != nil {
		s.tracker.RecordConversation(s.currentScene)
	}
	return msg
}

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}
