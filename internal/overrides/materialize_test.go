package overrides

import (
	"reflect"
	"testing"

	"culturewalk.ai/internal/scene"
)

func emptyStore(cat *scene.Catalog) *Store {
	return Load(NewMemoryBackend(), cat, discard())
}

func TestMaterializeBaseline(t *testing.T) {
	cat := scene.Builtin()
	pts := MaterializeScene(cat, emptyStore(cat), "museum")
	if len(pts) != 3 {
		t.Fatalf("point count = %d", len(pts))
	}
	for _, p := range pts {
		if p.Visited {
			t.Fatalf("materialized point pre-visited: %+v", p)
		}
	}
}

func TestMaterializeCustomWinsInPlace(t *testing.T) {
	cat := scene.Builtin()
	st := emptyStore(cat)
	st.Custom["museum"] = []scene.Point{
		{ID: "celadon-vase", Name: "Replaced Vase", Radius: 9},
		{ID: "new-exhibit", Name: "New Exhibit", Radius: 2},
	}
	pts := MaterializeScene(cat, st, "museum")
	if len(pts) != 4 {
		t.Fatalf("point count = %d", len(pts))
	}
	// replacement keeps the base slot, not the append position
	if pts[1].ID != "celadon-vase" || pts[1].Name != "Replaced Vase" || pts[1].Radius != 9 {
		t.Fatalf("in-place replacement failed: %+v", pts[1])
	}
	// replacement is wholesale: base fields are gone
	if pts[1].ModelPath != "" {
		t.Fatalf("replacement inherited base fields: %+v", pts[1])
	}
	if pts[3].ID != "new-exhibit" {
		t.Fatalf("new custom not appended: %+v", pts[3])
	}
}

func TestMaterializeDeletedSuppressesBaseOnly(t *testing.T) {
	cat := scene.Builtin()
	st := emptyStore(cat)
	st.Deleted["museum"] = []string{"bronze-ding", "never-existed"}
	pts := MaterializeScene(cat, st, "museum")
	if len(pts) != 2 {
		t.Fatalf("point count = %d", len(pts))
	}
	for _, p := range pts {
		if p.ID == "bronze-ding" {
			t.Fatalf("deleted point materialized")
		}
	}

	// a custom point with a deleted id still shows: deletion filters the
	// baseline, not the overrides
	st.Custom["museum"] = []scene.Point{{ID: "bronze-ding", Name: "Back"}}
	pts = MaterializeScene(cat, st, "museum")
	found := false
	for _, p := range pts {
		if p.ID == "bronze-ding" && p.Name == "Back" {
			found = true
		}
	}
	if !found {
		t.Fatalf("custom point masked by deletion: %+v", pts)
	}
}

func TestMaterializeUnknownScene(t *testing.T) {
	cat := scene.Builtin()
	if pts := MaterializeScene(cat, emptyStore(cat), "nope"); len(pts) != 0 {
		t.Fatalf("unknown scene materialized points: %+v", pts)
	}
}

func TestAvailableScenesStableUnion(t *testing.T) {
	cat := scene.Builtin()
	st := emptyStore(cat)
	st.Custom["zeta"] = []scene.Point{{ID: "p"}}
	st.Meta["alpha"] = scene.Meta{ID: "alpha", Name: "Alpha"}

	got := AvailableScenes(cat, st)
	want := []string{"museum", "redMansion", "silkRoad", "alpha", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("scenes = %v, want %v", got, want)
	}

	// deterministic across calls
	if again := AvailableScenes(cat, st); !reflect.DeepEqual(again, got) {
		t.Fatalf("order unstable: %v vs %v", again, got)
	}
}
