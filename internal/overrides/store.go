// Package overrides implements the persisted admin-edit layer: per scene,
// the added/edited points, the suppressed built-in point ids and the
// metadata overrides. The store is always read and written as one blob;
// materialization merges it over the built-in catalog.
package overrides

import (
	"encoding/json"
	"log"

	"culturewalk.ai/internal/scene"
)

// Store is the in-memory override aggregate, keyed by scene id. Custom
// points are fully-specified records, never partial diffs. Meta holds the
// effective merged metadata for every known scene; persistence strips the
// entries that still match the built-in defaults.
type Store struct {
	Custom  map[string][]scene.Point
	Deleted map[string][]string
	Meta    map[string]scene.Meta
}

// blob is the persisted shape. Per-scene sections decode leniently so a
// single malformed list does not take down the rest of the store.
type blob struct {
	Custom  map[string]json.RawMessage `json:"custom,omitempty"`
	Deleted map[string]json.RawMessage `json:"deleted,omitempty"`
	Meta    map[string]scene.Meta      `json:"meta,omitempty"`
}

const (
	customSceneName = "Custom scene"
	customSceneDesc = "Admin-created custom scene"
	customSceneIcon = "🧭"
)

// Load reads the persisted blob from b. Missing or corrupt data yields an
// empty-but-valid store with built-in metadata defaults; corruption is
// logged, never propagated.
func Load(b Backend, cat *scene.Catalog, logger *log.Logger) *Store {
	raw, ok, err := b.Read()
	if err != nil {
		if logger != nil {
			logger.Printf("overrides: read blob: %v (using defaults)", err)
		}
		return normalize(nil, cat, logger)
	}
	if !ok {
		return normalize(nil, cat, logger)
	}
	var parsed blob
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if logger != nil {
			logger.Printf("overrides: corrupt blob: %v (using defaults)", err)
		}
		return normalize(nil, cat, logger)
	}
	return normalize(&parsed, cat, logger)
}

// Save strips defaults and empties, serializes every point through the
// normalizer's serializer and writes one JSON blob.
func Save(b Backend, cat *scene.Catalog, st *Store) error {
	persisted := blob{
		Custom:  map[string]json.RawMessage{},
		Deleted: map[string]json.RawMessage{},
		Meta:    stripDefaultMeta(cat, st.Meta),
	}
	for id, list := range st.Custom {
		if len(list) == 0 {
			continue
		}
		raws := make([]scene.RawPoint, len(list))
		for i, p := range list {
			raws[i] = scene.SerializePoint(p)
		}
		enc, err := json.Marshal(raws)
		if err != nil {
			return err
		}
		persisted.Custom[id] = enc
	}
	for id, ids := range st.Deleted {
		if len(ids) == 0 {
			continue
		}
		enc, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		persisted.Deleted[id] = enc
	}
	if len(persisted.Custom) == 0 {
		persisted.Custom = nil
	}
	if len(persisted.Deleted) == 0 {
		persisted.Deleted = nil
	}
	if len(persisted.Meta) == 0 {
		persisted.Meta = nil
	}
	data, err := json.Marshal(persisted)
	if err != nil {
		return err
	}
	return b.Write(data)
}

func normalize(parsed *blob, cat *scene.Catalog, logger *log.Logger) *Store {
	st := &Store{
		Custom:  map[string][]scene.Point{},
		Deleted: map[string][]string{},
	}
	if parsed != nil {
		for id, raw := range parsed.Custom {
			var list []scene.RawPoint
			if err := json.Unmarshal(raw, &list); err != nil {
				if logger != nil {
					logger.Printf("overrides: scene %q: bad custom list: %v (skipped)", id, err)
				}
				continue
			}
			pts := make([]scene.Point, len(list))
			for i, rp := range list {
				pts[i] = scene.NormalizePoint(rp)
			}
			st.Custom[id] = pts
		}
		for id, raw := range parsed.Deleted {
			var ids []string
			if err := json.Unmarshal(raw, &ids); err != nil {
				if logger != nil {
					logger.Printf("overrides: scene %q: bad deleted list: %v (skipped)", id, err)
				}
				continue
			}
			st.Deleted[id] = ids
		}
	}
	var metaIn map[string]scene.Meta
	if parsed != nil {
		metaIn = parsed.Meta
	}
	st.Meta = MergeMeta(cat, metaIn, st.Custom)
	return st
}

// MergeMeta computes the effective metadata map: built-in defaults,
// wholesale-replaced by override entries (missing sub-fields default from
// the override itself, not from the built-in), plus synthesized
// placeholder entries for scenes that exist only through custom points.
func MergeMeta(cat *scene.Catalog, metaIn map[string]scene.Meta, custom map[string][]scene.Point) map[string]scene.Meta {
	merged := map[string]scene.Meta{}
	for _, id := range cat.SceneIDs() {
		if m, ok := cat.Meta(id); ok {
			merged[id] = m
		}
	}
	for id, m := range metaIn {
		out := scene.Meta{
			ID:            m.ID,
			Name:          m.Name,
			Description:   m.Description,
			Icon:          m.Icon,
			Items:         m.Items,
			DefaultPrompt: m.DefaultPrompt,
		}
		if out.ID == "" {
			out.ID = id
		}
		if out.Name == "" {
			out.Name = out.ID
		}
		if out.Description == "" {
			out.Description = customSceneDesc
		}
		merged[id] = out
	}
	for id := range custom {
		if _, ok := merged[id]; !ok {
			merged[id] = scene.Meta{
				ID:          id,
				Name:        customSceneName + " " + id,
				Description: customSceneDesc,
				Icon:        customSceneIcon,
			}
		}
	}
	return merged
}

// stripDefaultMeta drops entries that are field-for-field identical to the
// built-in defaults, so untouched scenes cost nothing in storage.
func stripDefaultMeta(cat *scene.Catalog, meta map[string]scene.Meta) map[string]scene.Meta {
	out := map[string]scene.Meta{}
	for id, m := range meta {
		defaults, ok := cat.Meta(id)
		if !ok {
			out[id] = m
			continue
		}
		if defaults.Name != m.Name || defaults.Description != m.Description ||
			defaults.Icon != m.Icon || defaults.DefaultPrompt != m.DefaultPrompt ||
			!itemsEqual(defaults.Items, m.Items) {
			out[id] = m
		}
	}
	return out
}

func itemsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
