package overrides

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"culturewalk.ai/internal/scene"
)

// ExportVersion tags every export payload. Import requires the field to
// be present but does not branch on its value.
const ExportVersion = "1.1.0"

// ExportPayload is the portable JSON document: the persisted blob shape
// plus a version tag, an export timestamp and the scene that was active
// when the export was taken.
type ExportPayload struct {
	Version      string                      `json:"version"`
	ExportedAt   string                      `json:"exportedAt"`
	CurrentTheme string                      `json:"currentTheme"`
	Custom       map[string][]scene.RawPoint `json:"custom"`
	Deleted      map[string][]string         `json:"deleted"`
	Meta         map[string]scene.Meta       `json:"meta"`
}

// PayloadError reports a structurally invalid import payload. Nothing is
// applied when it is returned.
type PayloadError struct {
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import payload: %s: %v", e.Reason, e.Err)
	}
	return "import payload: " + e.Reason
}

func (e *PayloadError) Unwrap() error { return e.Err }

// payloadSchema is the structural contract for import: the four core keys
// must be present and well-typed. Extra keys pass through untouched.
const payloadSchemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "custom", "deleted", "meta"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "exportedAt": {"type": "string"},
    "currentTheme": {"type": "string"},
    "custom": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "name": {"type": "string"},
            "radius": {"type": "number"},
            "scale": {"type": "number"},
            "collisionRadius": {"type": "number"},
            "modelPath": {"type": "string"},
            "position": {
              "type": "object",
              "properties": {
                "x": {"type": "number"},
                "y": {"type": "number"},
                "z": {"type": "number"}
              }
            },
            "rotation": {
              "type": "object",
              "properties": {
                "x": {"type": "number"},
                "y": {"type": "number"},
                "z": {"type": "number"}
              }
            }
          }
        }
      }
    },
    "deleted": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "string", "minLength": 1}
      }
    },
    "meta": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "description": {"type": "string"},
          "icon": {"type": "string"},
          "items": {"type": "array", "items": {"type": "string"}},
          "defaultPrompt": {"type": "string"}
        }
      }
    }
  }
}`

var payloadSchema = jsonschema.MustCompileString("export.schema.json", payloadSchemaDoc)

// Export snapshots the live store into a portable payload. Points are
// serialized through the normalizer's serializer; no engine state leaks.
func Export(st *Store, currentScene string, now time.Time) ExportPayload {
	payload := ExportPayload{
		Version:      ExportVersion,
		ExportedAt:   now.UTC().Format(time.RFC3339),
		CurrentTheme: currentScene,
		Custom:       map[string][]scene.RawPoint{},
		Deleted:      map[string][]string{},
		Meta:         map[string]scene.Meta{},
	}
	for id, list := range st.Custom {
		raws := make([]scene.RawPoint, len(list))
		for i, p := range list {
			raws[i] = scene.SerializePoint(p)
		}
		payload.Custom[id] = raws
	}
	for id, ids := range st.Deleted {
		payload.Deleted[id] = append([]string(nil), ids...)
	}
	for id, m := range st.Meta {
		payload.Meta[id] = m
	}
	return payload
}

// ParsePayload validates raw JSON against the structural schema and the
// per-field rules, then decodes it. A *PayloadError means nothing should
// be applied.
func ParsePayload(raw []byte) (ExportPayload, error) {
	var payload ExportPayload

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return payload, &PayloadError{Reason: "not valid JSON", Err: err}
	}
	if err := payloadSchema.Validate(doc); err != nil {
		return payload, &PayloadError{Reason: "schema validation failed", Err: err}
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, &PayloadError{Reason: "decode failed", Err: err}
	}
	for sceneID, list := range payload.Custom {
		if sceneID == "" {
			return payload, &PayloadError{Reason: "empty scene id in custom"}
		}
		for _, p := range list {
			if p.ID == "" {
				return payload, &PayloadError{Reason: fmt.Sprintf("scene %q: point with empty id", sceneID)}
			}
		}
	}
	for sceneID := range payload.Deleted {
		if sceneID == "" {
			return payload, &PayloadError{Reason: "empty scene id in deleted"}
		}
	}
	for sceneID := range payload.Meta {
		if sceneID == "" {
			return payload, &PayloadError{Reason: "empty scene id in meta"}
		}
	}
	return payload, nil
}

// MissingModels cross-checks every model path referenced by the payload's
// custom points against the asset manifest. The result is advisory: the
// import proceeds regardless.
func MissingModels(payload ExportPayload, available map[string]struct{}) []string {
	var missing []string
	seen := map[string]bool{}
	for _, list := range payload.Custom {
		for _, p := range list {
			if p.ModelPath == "" || seen[p.ModelPath] {
				continue
			}
			if _, ok := available[p.ModelPath]; !ok {
				seen[p.ModelPath] = true
				missing = append(missing, p.ModelPath)
			}
		}
	}
	return missing
}

// StoreFromPayload builds a normalized store from a validated payload,
// replacing whatever was loaded before. Metadata is re-merged with the
// built-in defaults exactly as on a regular load.
func StoreFromPayload(cat *scene.Catalog, payload ExportPayload) *Store {
	st := &Store{
		Custom:  map[string][]scene.Point{},
		Deleted: map[string][]string{},
	}
	for id, list := range payload.Custom {
		pts := make([]scene.Point, len(list))
		for i, rp := range list {
			pts[i] = scene.NormalizePoint(rp)
		}
		st.Custom[id] = pts
	}
	for id, ids := range payload.Deleted {
		st.Deleted[id] = append([]string(nil), ids...)
	}
	st.Meta = MergeMeta(cat, payload.Meta, st.Custom)
	return st
}
