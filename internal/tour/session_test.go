package tour

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"reflect"
	"strings"
	"testing"
	"time"

	"culturewalk.ai/internal/manifest"
	"culturewalk.ai/internal/overrides"
	"culturewalk.ai/internal/scene"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T) (*Session, *overrides.MemoryBackend, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	b := overrides.NewMemoryBackend()
	s := New(scene.Builtin(), Options{
		Backend: b,
		Logger:  log.New(io.Discard, "", 0),
		Clock:   clk.Now,
	})
	return s, b, clk
}

func persistedBlob(t *testing.T, b *overrides.MemoryBackend) map[string]json.RawMessage {
	t.Helper()
	raw, ok, err := b.Read()
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !ok {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("blob not valid JSON: %v", err)
	}
	return m
}

func TestStartsOnFallbackScene(t *testing.T) {
	s, _, _ := newTestSession(t)
	if got := s.CurrentScene(); got != scene.FallbackScene {
		t.Fatalf("current scene = %q, want %q", got, scene.FallbackScene)
	}
	if got := len(s.Points()); got != 3 {
		t.Fatalf("point count = %d, want 3", got)
	}
}

func TestAddPointAppendsAndPersists(t *testing.T) {
	s, b, _ := newTestSession(t)
	p, err := s.AddScenePoint("admin", "museum", scene.RawPoint{
		ID: "vase-1", Name: "Ming Vase",
		Position: &scene.RawVec{X: f(2), Y: f(0), Z: f(-2)},
		Radius:   3,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	pts := s.Points()
	if len(pts) != 4 {
		t.Fatalf("point count = %d, want 4", len(pts))
	}
	if pts[3].ID != "vase-1" {
		t.Fatalf("new point not appended, last id = %q", pts[3].ID)
	}
	if p.Position != (scene.Vec3{X: 2, Y: 0, Z: -2}) {
		t.Fatalf("position = %+v", p.Position)
	}
	blob := persistedBlob(t, b)
	if !strings.Contains(string(blob["custom"]), "vase-1") {
		t.Fatalf("custom section missing vase-1: %s", blob["custom"])
	}
	m, _ := s.Meta("museum")
	if len(m.Items) != 4 || m.Items[3] != "Ming Vase" {
		t.Fatalf("items not synced: %v", m.Items)
	}
}

func TestAddPointRequiresID(t *testing.T) {
	s, _, _ := newTestSession(t)
	if _, err := s.AddScenePoint("admin", "museum", scene.RawPoint{Name: "nameless"}); !errors.Is(err, ErrBadPoint) {
		t.Fatalf("err = %v, want ErrBadPoint", err)
	}
}

func TestUpdateBuiltinPointStaysInPlace(t *testing.T) {
	s, b, _ := newTestSession(t)
	name := "Great Ding"
	got, err := s.UpdateScenePoint("admin", "museum", "bronze-ding", PointPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Great Ding" {
		t.Fatalf("name = %q", got.Name)
	}
	// untouched fields survive the synthesized custom copy
	if got.Position != (scene.Vec3{X: -6, Y: 0, Z: -4}) || got.Radius != 3 {
		t.Fatalf("base fields lost: %+v", got)
	}
	pts := s.Points()
	if len(pts) != 3 || pts[0].ID != "bronze-ding" || pts[0].Name != "Great Ding" {
		t.Fatalf("point not replaced in place: %+v", pts[0])
	}
	blob := persistedBlob(t, b)
	if !strings.Contains(string(blob["custom"]), "Great Ding") {
		t.Fatalf("override not persisted: %s", blob["custom"])
	}
}

func TestUpdatePointPositionReplacesWholesale(t *testing.T) {
	s, _, _ := newTestSession(t)
	got, err := s.UpdateScenePoint("admin", "museum", "bronze-ding",
		PointPatch{Position: &scene.RawVec{X: f(1)}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// absent components zero out rather than inheriting {-6,0,-4}
	if got.Position != (scene.Vec3{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("position = %+v, want {1 0 0}", got.Position)
	}
}

func TestUpdateCollisionNullMeansAuto(t *testing.T) {
	s, _, _ := newTestSession(t)
	fixed := json.RawMessage("2.5")
	got, err := s.UpdateScenePoint("admin", "museum", "bronze-ding", PointPatch{CollisionRadius: fixed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Collision != (scene.Collision{Mode: scene.CollisionFixed, Radius: 2.5}) {
		t.Fatalf("collision = %+v", got.Collision)
	}
	got, err = s.UpdateScenePoint("admin", "museum", "bronze-ding", PointPatch{CollisionRadius: json.RawMessage("null")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Collision.Mode != scene.CollisionAuto {
		t.Fatalf("collision mode = %v, want auto", got.Collision.Mode)
	}
	// absent field leaves the setting alone
	name := "x"
	got, err = s.UpdateScenePoint("admin", "museum", "bronze-ding", PointPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Collision.Mode != scene.CollisionAuto {
		t.Fatalf("collision mode changed by unrelated patch: %v", got.Collision.Mode)
	}
}

func TestDeleteBuiltinPointTombstones(t *testing.T) {
	s, b, _ := newTestSession(t)
	if err := s.DeleteScenePoint("admin", "museum", "bronze-ding"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, p := range s.Points() {
		if p.ID == "bronze-ding" {
			t.Fatalf("deleted point still materialized")
		}
	}
	blob := persistedBlob(t, b)
	if !strings.Contains(string(blob["deleted"]), "bronze-ding") {
		t.Fatalf("deleted list missing tombstone: %s", blob["deleted"])
	}
}

func TestDeleteCustomPointLeavesNoTombstone(t *testing.T) {
	s, b, _ := newTestSession(t)
	if _, err := s.AddScenePoint("admin", "museum", scene.RawPoint{ID: "vase-1", Name: "Ming Vase", Radius: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.DeleteScenePoint("admin", "museum", "vase-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := len(s.Points()); got != 3 {
		t.Fatalf("point count = %d, want 3", got)
	}
	blob := persistedBlob(t, b)
	if strings.Contains(string(blob["deleted"]), "vase-1") {
		t.Fatalf("custom-only deletion left a tombstone: %s", blob["deleted"])
	}
}

func TestDeleteUnknownPoint(t *testing.T) {
	s, _, _ := newTestSession(t)
	if err := s.DeleteScenePoint("admin", "museum", "no-such"); !errors.Is(err, ErrPointNotFound) {
		t.Fatalf("err = %v, want ErrPointNotFound", err)
	}
}

func TestCreateSceneSwitchesAndSeedsIntro(t *testing.T) {
	s, _, _ := newTestSession(t)
	v, err := s.CreateScene("admin", NewScene{ID: "teaHouse", Name: "Tea House"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.SceneID != "teaHouse" {
		t.Fatalf("active scene = %q", v.SceneID)
	}
	if len(v.Points) != 1 || !strings.HasPrefix(v.Points[0].ID, "teaHouse-intro-") {
		t.Fatalf("intro point missing: %+v", v.Points)
	}
	if v.Points[0].Radius != 5 || v.Points[0].Name != "Tea House" {
		t.Fatalf("intro point fields: %+v", v.Points[0])
	}
	if v.Meta.Icon == "" {
		t.Fatalf("icon not defaulted")
	}
	// the items list stays derived from the point set, never pre-seeded
	if len(v.Meta.Items) != 0 {
		t.Fatalf("items pre-seeded: %v", v.Meta.Items)
	}
	found := false
	for _, id := range s.AvailableScenes() {
		if id == "teaHouse" {
			found = true
		}
	}
	if !found {
		t.Fatalf("teaHouse not registered: %v", s.AvailableScenes())
	}

	if _, err := s.CreateScene("admin", NewScene{ID: "teaHouse"}); !errors.Is(err, ErrSceneExists) {
		t.Fatalf("duplicate err = %v, want ErrSceneExists", err)
	}
	if _, err := s.CreateScene("admin", NewScene{ID: "museum"}); !errors.Is(err, ErrSceneExists) {
		t.Fatalf("builtin collision err = %v, want ErrSceneExists", err)
	}
}

func TestDeleteSceneRefusesBuiltin(t *testing.T) {
	s, _, _ := newTestSession(t)
	ok, err := s.DeleteScene("admin", "museum")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Fatalf("built-in scene reported deleted")
	}
	ok, err = s.DeleteScene("admin", "no-such")
	if err != nil || ok {
		t.Fatalf("unknown scene: ok=%v err=%v", ok, err)
	}
}

func TestDeleteActiveSceneFallsBack(t *testing.T) {
	s, _, _ := newTestSession(t)
	if _, err := s.CreateScene("admin", NewScene{ID: "teaHouse", Name: "Tea House"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err := s.DeleteScene("admin", "teaHouse")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Fatalf("custom scene not deleted")
	}
	if got := s.CurrentScene(); got != scene.FallbackScene {
		t.Fatalf("fallback scene = %q, want %q", got, scene.FallbackScene)
	}
	for _, id := range s.AvailableScenes() {
		if id == "teaHouse" {
			t.Fatalf("deleted scene still listed")
		}
	}
}

func TestUpdateSceneMetaPartial(t *testing.T) {
	s, _, _ := newTestSession(t)
	name := "Hall of Bronzes"
	m, err := s.UpdateSceneMeta("admin", "museum", MetaPatch{Name: &name})
	if err != nil {
		t.Fatalf("update meta: %v", err)
	}
	if m.Name != "Hall of Bronzes" {
		t.Fatalf("name = %q", m.Name)
	}
	// untouched fields keep the built-in values
	if m.Icon != "🏛️" || len(m.Items) != 3 {
		t.Fatalf("unrelated fields changed: %+v", m)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _, _ := newTestSession(t)
	if _, err := s.AddScenePoint("admin", "museum", scene.RawPoint{ID: "vase-1", Name: "Ming Vase", Radius: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.DeleteScenePoint("admin", "museum", "terracotta-guard"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	first := s.ExportOverrides()
	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	fresh, _, _ := newTestSession(t)
	if _, err := fresh.ImportOverrides(context.Background(), "admin", raw); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(fresh.Points(), s.Points()) {
		t.Fatalf("materialized points differ after import\n got %+v\nwant %+v", fresh.Points(), s.Points())
	}

	second := fresh.ExportOverrides()
	if !reflect.DeepEqual(second.Custom, first.Custom) {
		t.Fatalf("custom drifted: %+v vs %+v", second.Custom, first.Custom)
	}
	if !reflect.DeepEqual(second.Deleted, first.Deleted) {
		t.Fatalf("deleted drifted: %+v vs %+v", second.Deleted, first.Deleted)
	}
	if !reflect.DeepEqual(second.Meta, first.Meta) {
		t.Fatalf("meta drifted: %+v vs %+v", second.Meta, first.Meta)
	}
	if second.Version != overrides.ExportVersion {
		t.Fatalf("version = %q", second.Version)
	}
}

func TestImportRejectsBadPayload(t *testing.T) {
	s, _, _ := newTestSession(t)
	before := s.Points()
	_, err := s.ImportOverrides(context.Background(), "admin", []byte(`{"version":1}`))
	var perr *overrides.PayloadError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *overrides.PayloadError", err)
	}
	if !reflect.DeepEqual(s.Points(), before) {
		t.Fatalf("rejected import mutated state")
	}
}

func TestImportReportsMissingModels(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	b := overrides.NewMemoryBackend()
	s := New(scene.Builtin(), Options{
		Backend: b,
		Logger:  log.New(io.Discard, "", 0),
		Clock:   clk.Now,
		Models:  manifest.StaticSource{"/models/present.glb": {}},
	})
	payload := overrides.ExportPayload{
		Version: overrides.ExportVersion,
		Custom: map[string][]scene.RawPoint{
			"museum": {
				{ID: "a", Name: "A", ModelPath: "/models/present.glb"},
				{ID: "b", Name: "B", ModelPath: "/models/absent.glb"},
			},
		},
		Deleted: map[string][]string{},
		Meta:    map[string]scene.Meta{},
	}
	raw, _ := json.Marshal(payload)
	res, err := s.ImportOverrides(context.Background(), "admin", raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.MissingModels) != 1 || res.MissingModels[0] != "/models/absent.glb" {
		t.Fatalf("missing models = %v", res.MissingModels)
	}
	// advisory only: the point with the absent model still lands
	found := false
	for _, p := range s.Points() {
		if p.ID == "b" {
			found = true
		}
	}
	if !found {
		t.Fatalf("advisory warning blocked the import")
	}
}

func TestProximityTriggersOnce(t *testing.T) {
	s, _, _ := newTestSession(t)
	at := scene.Vec3{X: -6, Y: 0, Z: -4} // bronze-ding, radius 3
	p := s.UpdatePlayerPosition(at)
	if p == nil || p.ID != "bronze-ding" {
		t.Fatalf("trigger = %+v, want bronze-ding", p)
	}
	if !p.Visited {
		t.Fatalf("triggered point not marked visited")
	}
	if p := s.UpdatePlayerPosition(at); p != nil {
		t.Fatalf("re-triggered without leaving: %+v", p)
	}
	if p := s.UpdatePlayerPosition(scene.Vec3{X: 50, Y: 0, Z: 50}); p != nil {
		t.Fatalf("triggered far away: %+v", p)
	}
	if p := s.UpdatePlayerPosition(at); p == nil || p.ID != "bronze-ding" {
		t.Fatalf("no trigger after re-entry: %+v", p)
	}
}

func TestTransitionSuppressesTriggers(t *testing.T) {
	s, _, clk := newTestSession(t)
	if _, err := s.SwitchScene("redMansion"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !s.IsTransitioning() {
		t.Fatalf("not transitioning right after switch")
	}
	at := scene.Vec3{X: 0, Y: 0, Z: -10} // moon-gate
	if p := s.UpdatePlayerPosition(at); p != nil {
		t.Fatalf("triggered during transition: %+v", p)
	}
	clk.advance(2 * time.Second)
	if s.IsTransitioning() {
		t.Fatalf("transition window did not expire")
	}
	if p := s.UpdatePlayerPosition(at); p == nil || p.ID != "moon-gate" {
		t.Fatalf("no trigger after window: %+v", p)
	}
}

func TestSwitchSceneResetsSession(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.AppendMessage("user", "hello")
	s.UpdatePlayerPosition(scene.Vec3{X: -6, Y: 0, Z: -4})
	v, err := s.SwitchScene("silkRoad")
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if v.SceneID != "silkRoad" || len(v.Points) != 3 {
		t.Fatalf("view = %+v", v)
	}
	for _, p := range v.Points {
		if p.Visited {
			t.Fatalf("visited flag survived scene switch")
		}
	}
	if len(s.Messages()) != 0 {
		t.Fatalf("chat history survived scene switch")
	}
	if s.PlayerPosition() != scene.SpawnPosition {
		t.Fatalf("player not respawned: %+v", s.PlayerPosition())
	}
	if _, err := s.SwitchScene("no-such"); !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("err = %v, want ErrSceneNotFound", err)
	}
}

func TestVisitedSurvivesPointMutation(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.UpdatePlayerPosition(scene.Vec3{X: -6, Y: 0, Z: -4})
	if _, err := s.AddScenePoint("admin", "museum", scene.RawPoint{ID: "vase-1", Name: "Ming Vase", Radius: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, p := range s.Points() {
		if p.ID == "bronze-ding" && !p.Visited {
			t.Fatalf("visited flag lost across mutation")
		}
	}
}

func TestMessagesCapped(t *testing.T) {
	s, _, _ := newTestSession(t)
	for i := 0; i < maxChatHistory+10; i++ {
		s.AppendMessage("user", "m")
	}
	if got := len(s.Messages()); got != maxChatHistory {
		t.Fatalf("history length = %d, want %d", got, maxChatHistory)
	}
}

func f(v float64) *float64 { return &v }
