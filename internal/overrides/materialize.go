package overrides

import (
	"sort"

	"culturewalk.ai/internal/scene"
)

// MaterializeScene computes the effective point list for one scene:
// catalog base minus deleted ids, overlaid with the custom points. A
// custom point always fully replaces a base point sharing its id, in
// place; customs with new ids append in their stored order. Every emitted
// point starts unvisited.
func MaterializeScene(cat *scene.Catalog, st *Store, sceneID string) []scene.Point {
	deleted := map[string]bool{}
	for _, id := range st.Deleted[sceneID] {
		deleted[id] = true
	}

	var out []scene.Point
	index := map[string]int{}
	for _, p := range cat.Points(sceneID) {
		if deleted[p.ID] {
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	for _, p := range st.Custom[sceneID] {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	for i := range out {
		out[i].Visited = false
	}
	return out
}

// MaterializeMeta returns the effective metadata for every known scene.
// A scene that has points but no meta still gets a synthesized entry so
// it stays navigable.
func MaterializeMeta(cat *scene.Catalog, st *Store) map[string]scene.Meta {
	return MergeMeta(cat, st.Meta, st.Custom)
}

// AvailableScenes derives the selectable scene ids: the union of built-in
// ids, catalog ids, meta override keys and custom override keys, in a
// stable order (catalog display order first, extras sorted). Pure and
// deterministic for a given input pair.
func AvailableScenes(cat *scene.Catalog, st *Store) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range cat.SceneIDs() {
		seen[id] = true
		out = append(out, id)
	}
	var extra []string
	for id := range st.Meta {
		if !seen[id] {
			seen[id] = true
			extra = append(extra, id)
		}
	}
	for id := range st.Custom {
		if !seen[id] {
			seen[id] = true
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
