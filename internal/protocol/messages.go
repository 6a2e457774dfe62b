package protocol

import (
	"culturewalk.ai/internal/scene"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	VisitorName     string     `json:"visitor_name,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SessionID       string     `json:"session_id"`
	IsAdmin         bool       `json:"is_admin,omitempty"`
	Scene           ScenePart  `json:"scene"`
	AvailableScenes []string   `json:"available_scenes"`
	Spawn           scene.Vec3 `json:"spawn"`
}

// SCENE (server -> client): full materialized state, sent after a scene
// switch or an import replaced the overrides.
type SceneMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Scene           ScenePart  `json:"scene"`
	AvailableScenes []string   `json:"available_scenes"`
	Spawn           scene.Vec3 `json:"spawn"`
	Transitioning   bool       `json:"transitioning,omitempty"`
}

// ScenePart carries one scene's effective meta and point list.
type ScenePart struct {
	ID     string        `json:"id"`
	Meta   scene.Meta    `json:"meta"`
	Points []scene.Point `json:"points"`
}

// SWITCH (client -> server): request a different scene.
type SwitchMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SceneID         string `json:"scene_id"`
}

// POINT (client -> server): focus a point, e.g. by clicking it.
type PointMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PointID         string `json:"point_id"`
}

// POS (client -> server)
type PosMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Position        scene.Vec3 `json:"position"`
}

// NARRATE (server -> client): fired when the visitor walks into a
// point's trigger radius.
type NarrateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PointID         string `json:"point_id"`
	PointName       string `json:"point_name"`
	Text            string `json:"text"`
	Voice           string `json:"voice,omitempty"`
}

// CHAT (both directions)
type ChatMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	MessageID       string `json:"message_id,omitempty"`
	Role            string `json:"role"` // "user" | "assistant" | "system"
	Content         string `json:"content"`
	Timestamp       int64  `json:"timestamp,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
