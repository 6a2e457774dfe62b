package scene

import (
	"encoding/json"
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestNormalizePointDefaults(t *testing.T) {
	p := NormalizePoint(RawPoint{ID: "a", Name: "A"})
	if p.Position != (Vec3{}) {
		t.Fatalf("position = %+v, want origin", p.Position)
	}
	if p.Rotation != nil {
		t.Fatalf("rotation should stay nil")
	}
	if p.Scale != nil {
		t.Fatalf("scale should stay nil")
	}
	if p.Collision.Mode != CollisionAuto {
		t.Fatalf("collision mode = %v, want auto", p.Collision.Mode)
	}
}

func TestNormalizePointNonFinite(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	p := NormalizePoint(RawPoint{
		ID:       "a",
		Position: &RawVec{X: &nan, Y: fp(2), Z: &inf},
		Rotation: &RawVec{X: fp(1)},
		Scale:    &nan,
	})
	if p.Position != (Vec3{X: 0, Y: 2, Z: 0}) {
		t.Fatalf("position = %+v", p.Position)
	}
	if p.Rotation == nil || *p.Rotation != (Vec3{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("rotation = %+v", p.Rotation)
	}
	if p.Scale != nil {
		t.Fatalf("non-finite scale should be dropped")
	}
}

func TestCollisionWireRoundTrip(t *testing.T) {
	cases := []struct {
		in   *float64
		want Collision
	}{
		{nil, Collision{Mode: CollisionAuto}},
		{fp(0), Collision{Mode: CollisionNone}},
		{fp(2.5), Collision{Mode: CollisionFixed, Radius: 2.5}},
	}
	for _, c := range cases {
		got := CollisionFromWire(c.in)
		if got != c.want {
			t.Fatalf("CollisionFromWire(%v) = %+v, want %+v", c.in, got, c.want)
		}
		back := got.Wire()
		if (c.in == nil) != (back == nil) {
			t.Fatalf("wire round trip nil mismatch for %+v", c.want)
		}
		if c.in != nil && *back != *c.in {
			t.Fatalf("wire round trip = %v, want %v", *back, *c.in)
		}
	}
	nan := math.NaN()
	if got := CollisionFromWire(&nan); got.Mode != CollisionAuto {
		t.Fatalf("NaN collision = %+v, want auto", got)
	}
}

func TestSerializeNormalizeRoundTrip(t *testing.T) {
	rot := Vec3{X: 0, Y: 90, Z: 0}
	in := Point{
		ID:          "vase-1",
		Name:        "Ming Vase",
		Position:    Vec3{X: 1, Y: 0, Z: -2},
		Rotation:    &rot,
		Scale:       fp(1.2),
		Radius:      3,
		Collision:   Collision{Mode: CollisionFixed, Radius: 1.5},
		Description: "d",
		AIContext:   "ctx",
		ModelPath:   "/models/vase.glb",
	}
	out := NormalizePoint(SerializePoint(in))
	if !in.Equal(out) {
		t.Fatalf("round trip changed point:\n in  %+v\n out %+v", in, out)
	}
}

func TestPointJSONDropsEngineState(t *testing.T) {
	p := Point{ID: "a", Name: "A", Position: Vec3{X: 1}, Radius: 2, Visited: true}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["collisionRadius"]; ok {
		t.Fatalf("auto collision should be omitted: %s", b)
	}
	if string(m["visited"]) != "true" {
		t.Fatalf("visited missing from wire form: %s", b)
	}

	var back Point
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Equal(p) || !back.Visited {
		t.Fatalf("decode changed point: %+v", back)
	}
}

func TestPointUnmarshalLenient(t *testing.T) {
	var p Point
	err := json.Unmarshal([]byte(`{"id":"a","name":"A","position":{"x":1},"radius":3}`), &p)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Position != (Vec3{X: 1}) || p.Radius != 3 {
		t.Fatalf("point = %+v", p)
	}
}
