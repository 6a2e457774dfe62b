package scene

import "math"

// Vec3 is a concrete 3D vector. Materialized points always carry one;
// partially-specified vectors only exist in the raw wire form.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// RawVec is a leniently-decoded vector: components may be absent.
// It is the shape stored in the persisted blob and export payloads.
type RawVec struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

// NormalizeVec converts a raw vector into a well-formed Vec3. Absent or
// non-finite components fall back to the corresponding component of fb.
func NormalizeVec(v *RawVec, fb Vec3) Vec3 {
	if v == nil {
		return fb
	}
	return Vec3{
		X: finiteOr(v.X, fb.X),
		Y: finiteOr(v.Y, fb.Y),
		Z: finiteOr(v.Z, fb.Z),
	}
}

func finiteOr(p *float64, fb float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return fb
	}
	return *p
}

func rawVec(v Vec3) *RawVec {
	x, y, z := v.X, v.Y, v.Z
	return &RawVec{X: &x, Y: &y, Z: &z}
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return math.Sqrt(DistanceSq(a, b))
}
