package scene

import (
	"encoding/json"
	"math"
)

// CollisionMode says how the physical collision distance of a point is
// derived. The wire form is a nullable number: absent means auto, zero
// means no collision, positive means a fixed radius.
type CollisionMode int

const (
	CollisionAuto CollisionMode = iota
	CollisionNone
	CollisionFixed
)

// Collision is the resolved collision setting of a point.
type Collision struct {
	Mode   CollisionMode
	Radius float64 // meaningful only for CollisionFixed
}

// CollisionFromWire decodes the legacy nullable-number convention.
func CollisionFromWire(v *float64) Collision {
	switch {
	case v == nil || math.IsNaN(*v) || math.IsInf(*v, 0):
		return Collision{Mode: CollisionAuto}
	case *v == 0:
		return Collision{Mode: CollisionNone}
	default:
		return Collision{Mode: CollisionFixed, Radius: *v}
	}
}

// Wire encodes the collision setting back to its nullable-number form.
func (c Collision) Wire() *float64 {
	switch c.Mode {
	case CollisionNone:
		zero := 0.0
		return &zero
	case CollisionFixed:
		r := c.Radius
		return &r
	default:
		return nil
	}
}

// Point is a placeable entity in a scene, fully normalized: Position is
// always concrete and Rotation is either complete or nil.
type Point struct {
	ID          string
	Name        string
	Position    Vec3
	Rotation    *Vec3    // nil means no rotation override
	Scale       *float64 // nil means default scale (1)
	Radius      float64  // narration trigger distance
	Collision   Collision
	Description string
	AIContext   string
	ModelPath   string // empty means placeholder visual

	// Visited is session-only and never persisted; it is reset to false
	// whenever a scene materializes.
	Visited bool
}

// RawPoint is the serialized point shape: plain {x,y,z} vectors, optional
// fields omitted, visited never present.
type RawPoint struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Position        *RawVec  `json:"position,omitempty"`
	Rotation        *RawVec  `json:"rotation,omitempty"`
	Scale           *float64 `json:"scale,omitempty"`
	Radius          float64  `json:"radius"`
	CollisionRadius *float64 `json:"collisionRadius,omitempty"`
	Description     string   `json:"description,omitempty"`
	AIContext       string   `json:"aiContext,omitempty"`
	ModelPath       string   `json:"modelPath,omitempty"`
}

// NormalizePoint converts a raw point into a well-formed Point. A missing
// or malformed position becomes the origin; a present rotation is made
// fully numeric; a non-finite scale is dropped.
func NormalizePoint(raw RawPoint) Point {
	p := Point{
		ID:          raw.ID,
		Name:        raw.Name,
		Position:    NormalizeVec(raw.Position, Vec3{}),
		Radius:      finiteOr(&raw.Radius, 0),
		Collision:   CollisionFromWire(raw.CollisionRadius),
		Description: raw.Description,
		AIContext:   raw.AIContext,
		ModelPath:   raw.ModelPath,
	}
	if raw.Rotation != nil {
		rot := NormalizeVec(raw.Rotation, Vec3{})
		p.Rotation = &rot
	}
	if raw.Scale != nil && !math.IsNaN(*raw.Scale) && !math.IsInf(*raw.Scale, 0) {
		s := *raw.Scale
		p.Scale = &s
	}
	return p
}

// SerializePoint is the strict inverse of NormalizePoint for persistence:
// it emits concrete {x,y,z} vectors and omits rotation entirely when the
// point has none. Visited is dropped.
func SerializePoint(p Point) RawPoint {
	raw := RawPoint{
		ID:              p.ID,
		Name:            p.Name,
		Position:        rawVec(p.Position),
		Scale:           p.Scale,
		Radius:          p.Radius,
		CollisionRadius: p.Collision.Wire(),
		Description:     p.Description,
		AIContext:       p.AIContext,
		ModelPath:       p.ModelPath,
	}
	if p.Rotation != nil {
		raw.Rotation = rawVec(*p.Rotation)
	}
	return raw
}

// pointJSON is the wire form of a materialized point: the serialized
// shape plus the transient visited flag.
type pointJSON struct {
	RawPoint
	Visited bool `json:"visited"`
}

// MarshalJSON emits the serialized shape plus visited, so every point
// that leaves the process is already normalized.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{RawPoint: SerializePoint(p), Visited: p.Visited})
}

// UnmarshalJSON decodes leniently and normalizes, so every point that
// enters the process is well-formed regardless of source.
func (p *Point) UnmarshalJSON(b []byte) error {
	var w pointJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = NormalizePoint(w.RawPoint)
	p.Visited = w.Visited
	return nil
}

// Equal reports field equality of two points ignoring Visited.
func (p Point) Equal(o Point) bool {
	if p.ID != o.ID || p.Name != o.Name || p.Position != o.Position ||
		p.Radius != o.Radius || p.Collision != o.Collision ||
		p.Description != o.Description || p.AIContext != o.AIContext ||
		p.ModelPath != o.ModelPath {
		return false
	}
	if (p.Rotation == nil) != (o.Rotation == nil) {
		return false
	}
	if p.Rotation != nil && *p.Rotation != *o.Rotation {
		return false
	}
	if (p.Scale == nil) != (o.Scale == nil) {
		return false
	}
	if p.Scale != nil && *p.Scale != *o.Scale {
		return false
	}
	return true
}
