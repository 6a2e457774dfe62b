// Package scene holds the point/vector model and the built-in scene
// catalog: the fixed baseline definitions that admin overrides layer on
// top of without ever modifying.
package scene

import "sort"

// Meta is the descriptive record of a scene.
type Meta struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon,omitempty"`
	Items         []string `json:"items,omitempty"`
	DefaultPrompt string   `json:"defaultPrompt,omitempty"`
}

// Equal reports field-for-field equality, with nil and empty Items
// treated the same.
func (m Meta) Equal(o Meta) bool {
	if m.ID != o.ID || m.Name != o.Name || m.Description != o.Description ||
		m.Icon != o.Icon || m.DefaultPrompt != o.DefaultPrompt {
		return false
	}
	if len(m.Items) != len(o.Items) {
		return false
	}
	for i := range m.Items {
		if m.Items[i] != o.Items[i] {
			return false
		}
	}
	return true
}

// Catalog is the read-only baseline: built-in points and meta per scene
// id. Lookups for unknown ids return empty results, never an error.
type Catalog struct {
	points map[string][]Point
	meta   map[string]Meta
	order  []string // built-in ids in display order
}

// Points returns a copy of the built-in point list for a scene, or an
// empty slice for unknown ids.
func (c *Catalog) Points(sceneID string) []Point {
	base := c.points[sceneID]
	out := make([]Point, len(base))
	copy(out, base)
	return out
}

// Meta returns the built-in meta for a scene, if any.
func (c *Catalog) Meta(sceneID string) (Meta, bool) {
	m, ok := c.meta[sceneID]
	return m, ok
}

// IsBuiltin reports whether sceneID is one of the fixed built-in scenes.
// Built-in scenes cannot be deleted.
func (c *Catalog) IsBuiltin(sceneID string) bool {
	_, ok := c.meta[sceneID]
	return ok
}

// HasPoint reports whether the built-in point list of sceneID contains id.
func (c *Catalog) HasPoint(sceneID, id string) bool {
	for _, p := range c.points[sceneID] {
		if p.ID == id {
			return true
		}
	}
	return false
}

// SceneIDs returns the union of built-in meta ids and point-data ids in
// stable order: display order first, then any extras sorted.
func (c *Catalog) SceneIDs() []string {
	seen := make(map[string]bool, len(c.order))
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		seen[id] = true
		out = append(out, id)
	}
	var extra []string
	for id := range c.points {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// FallbackScene is where a visitor lands when their scene disappears.
const FallbackScene = "museum"

// SpawnPosition is the player spawn used on every scene (re)entry.
var SpawnPosition = Vec3{X: 0, Y: 1.6, Z: 10}

// Builtin returns the catalog shipped with the application: a museum
// hall, a literary garden and a historic trade route.
func Builtin() *Catalog {
	scale := func(v float64) *float64 { return &v }
	return &Catalog{
		order: []string{"museum", "redMansion", "silkRoad"},
		meta: map[string]Meta{
			"museum": {
				ID:            "museum",
				Name:          "Museum Hall",
				Description:   "Walk among ancient artifacts and hear their stories",
				Icon:          "🏛️",
				Items:         []string{"Bronze Ding", "Celadon Vase", "Terracotta Guard"},
				DefaultPrompt: "You are a museum docent. Explain each artifact's origin, craft and historical context in a warm, concise voice.",
			},
			"redMansion": {
				ID:            "redMansion",
				Name:          "Grand View Garden",
				Description:   "Stroll the garden of the classic novel and its poetry",
				Icon:          "🏮",
				Items:         []string{"Moon Gate", "Lotus Pond", "Poetry Pavilion"},
				DefaultPrompt: "You are a literary guide to an eighteenth-century garden estate. Connect each spot to the scenes and verses set there.",
			},
			"silkRoad": {
				ID:            "silkRoad",
				Name:          "Silk Road",
				Description:   "Cross the old trade route where east met west",
				Icon:          "🐫",
				Items:         []string{"Camel Caravan", "Desert Beacon", "Oasis Market"},
				DefaultPrompt: "You are a caravan storyteller on the ancient silk road. Describe the goods, peoples and journeys that passed each landmark.",
			},
		},
		points: map[string][]Point{
			"museum": {
				{
					ID: "bronze-ding", Name: "Bronze Ding",
					Position: Vec3{X: -6, Y: 0, Z: -4}, Radius: 3,
					Description: "A ritual food vessel cast three thousand years ago.",
					AIContext:   "Western Zhou bronze ding tripod, taotie motif, used in ancestral rites.",
					ModelPath:   "/models/museum/bronze-ding.glb",
				},
				{
					ID: "celadon-vase", Name: "Celadon Vase",
					Position: Vec3{X: 0, Y: 0, Z: -8}, Radius: 3, Scale: scale(1.2),
					Description: "Song dynasty celadon with a crackled jade glaze.",
					AIContext:   "Longquan kiln celadon vase, Song dynasty, famed for its kingfisher-green glaze.",
					ModelPath:   "/models/museum/celadon-vase.glb",
				},
				{
					ID: "terracotta-guard", Name: "Terracotta Guard",
					Position: Vec3{X: 6, Y: 0, Z: -4}, Radius: 3.5,
					Description: "A soldier from the buried army of the first emperor.",
					AIContext:   "Qin terracotta warrior, individually modeled face, originally painted.",
					ModelPath:   "/models/museum/terracotta-guard.glb",
				},
			},
			"redMansion": {
				{
					ID: "moon-gate", Name: "Moon Gate",
					Position: Vec3{X: 0, Y: 0, Z: -10}, Radius: 4,
					Description: "The circular gate into the garden.",
					AIContext:   "Moon gate marking the entrance to the grand view garden; frames the scenery like a scroll painting.",
					ModelPath:   "/models/redmansion/moon-gate.glb",
				},
				{
					ID: "lotus-pond", Name: "Lotus Pond",
					Position: Vec3{X: -8, Y: 0, Z: -2}, Radius: 5,
					Description: "Still water where the cousins floated wine cups.",
					AIContext:   "Lotus pond of the garden, site of summer poetry gatherings in the novel.",
					ModelPath:   "/models/redmansion/lotus-pond.glb",
				},
				{
					ID: "poetry-pavilion", Name: "Poetry Pavilion",
					Position: Vec3{X: 7, Y: 0, Z: -6}, Radius: 4,
					Description: "An open pavilion for verse competitions.",
					AIContext:   "Pavilion where the poetry club of the novel met; couplets hang from its pillars.",
					ModelPath:   "/models/redmansion/poetry-pavilion.glb",
				},
			},
			"silkRoad": {
				{
					ID: "camel-caravan", Name: "Camel Caravan",
					Position: Vec3{X: -5, Y: 0, Z: -6}, Radius: 4,
					Description: "Bactrian camels loaded with silk and spice.",
					AIContext:   "A merchant caravan of bactrian camels carrying silk bales westward.",
					ModelPath:   "/models/silkroad/camel-caravan.glb",
				},
				{
					ID: "desert-beacon", Name: "Desert Beacon",
					Position: Vec3{X: 4, Y: 0, Z: -12}, Radius: 4.5,
					Description: "A beacon tower guarding the route.",
					AIContext:   "Han dynasty beacon tower; smoke by day and fire by night warned of raiders.",
					ModelPath:   "/models/silkroad/desert-beacon.glb",
				},
				{
					ID: "oasis-market", Name: "Oasis Market",
					Position: Vec3{X: 9, Y: 0, Z: -3}, Radius: 5,
					Description: "Stalls of an oasis town bazaar.",
					AIContext:   "Oasis market where sogdian traders exchanged glass, jade and paper.",
					ModelPath:   "/models/silkroad/oasis-market.glb",
				},
			},
		},
	}
}
