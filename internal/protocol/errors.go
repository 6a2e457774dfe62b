package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Scene registry/state.
	ErrSceneNotFound  = "E_SCENE_NOT_FOUND"
	ErrSceneBuiltin   = "E_SCENE_BUILTIN"
	ErrSceneDuplicate = "E_SCENE_DUPLICATE"

	// Admin/mutation layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrNoPermission = "E_NO_PERMISSION"
	ErrBadPayload   = "E_BAD_PAYLOAD"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrSceneNotFound:   {},
	ErrSceneBuiltin:    {},
	ErrSceneDuplicate:  {},
	ErrBadRequest:      {},
	ErrNoPermission:    {},
	ErrBadPayload:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
