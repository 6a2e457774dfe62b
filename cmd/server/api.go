package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"culturewalk.ai/internal/auth"
	"culturewalk.ai/internal/manifest"
	"culturewalk.ai/internal/narrate"
	"culturewalk.ai/internal/overrides"
	"culturewalk.ai/internal/progress"
	"culturewalk.ai/internal/protocol"
	"culturewalk.ai/internal/scene"
	"culturewalk.ai/internal/tour"
)

const maxImportBytes = 8 << 20

// apiServer carries the REST surface: read endpoints for every visitor,
// admin-gated mutation endpoints, export/import and the model manifest.
type apiServer struct {
	session *tour.Session
	auth    *auth.Service
	tracker *progress.Tracker
	tts     narrate.TTSConfig
	public  string
	log     *log.Logger
}

func (a *apiServer) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/auth/login", a.login)

	mux.HandleFunc("GET /v1/scenes", a.listScenes)
	mux.HandleFunc("GET /v1/scenes/{id}", a.getScene)
	mux.HandleFunc("GET /v1/scenes/{id}/points", a.getPoints)
	mux.HandleFunc("GET /v1/models", a.listModels)
	mux.HandleFunc("GET /v1/tts", a.getTTS)
	mux.HandleFunc("GET /v1/progress", a.getProgress)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return func(rw http.ResponseWriter, r *http.Request) {
			a.auth.RequireAdmin(h).ServeHTTP(rw, r)
		}
	}
	mux.HandleFunc("POST /v1/admin/scenes", admin(a.createScene))
	mux.HandleFunc("PATCH /v1/admin/scenes/{id}", admin(a.updateSceneMeta))
	mux.HandleFunc("DELETE /v1/admin/scenes/{id}", admin(a.deleteScene))
	mux.HandleFunc("POST /v1/admin/scenes/{id}/points", admin(a.addPoint))
	mux.HandleFunc("PATCH /v1/admin/scenes/{id}/points/{pid}", admin(a.updatePoint))
	mux.HandleFunc("DELETE /v1/admin/scenes/{id}/points/{pid}", admin(a.deletePoint))
	mux.HandleFunc("GET /v1/admin/export", admin(a.exportOverrides))
	mux.HandleFunc("POST /v1/admin/import", admin(a.importOverrides))
	mux.HandleFunc("POST /v1/admin/models/scan", admin(a.scanModels))
}

func (a *apiServer) login(rw http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "invalid body")
		return
	}
	token, err := a.auth.Login(req.Password)
	if err != nil {
		writeError(rw, http.StatusUnauthorized, protocol.ErrNoPermission, "wrong password")
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"token": token, "role": auth.RoleAdmin})
}

type sceneSummary struct {
	ID      string     `json:"id"`
	Meta    scene.Meta `json:"meta"`
	Current bool       `json:"current,omitempty"`
}

func (a *apiServer) listScenes(rw http.ResponseWriter, r *http.Request) {
	current := a.session.CurrentScene()
	var out []sceneSummary
	for _, id := range a.session.AvailableScenes() {
		m, _ := a.session.Meta(id)
		out = append(out, sceneSummary{ID: id, Meta: m, Current: id == current})
	}
	writeJSON(rw, http.StatusOK, map[string]any{"scenes": out})
}

func (a *apiServer) getScene(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, ok := a.session.Meta(id)
	if !ok {
		writeError(rw, http.StatusNotFound, protocol.ErrSceneNotFound, id)
		return
	}
	pts, err := a.session.ScenePoints(id)
	if err != nil {
		writeError(rw, http.StatusNotFound, protocol.ErrSceneNotFound, id)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"id": id, "meta": m, "points": pts})
}

func (a *apiServer) getPoints(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pts, err := a.session.ScenePoints(id)
	if err != nil {
		writeError(rw, http.StatusNotFound, protocol.ErrSceneNotFound, id)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"points": pts})
}

func (a *apiServer) listModels(rw http.ResponseWriter, r *http.Request) {
	m, err := manifest.Load(a.public)
	if err != nil {
		m, err = manifest.Scan(a.public, time.Now())
		if err != nil {
			writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, "manifest unavailable")
			return
		}
	}
	writeJSON(rw, http.StatusOK, m)
}

func (a *apiServer) getTTS(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, a.tts)
}

func (a *apiServer) getProgress(rw http.ResponseWriter, r *http.Request) {
	a.tracker.Flush()
	snap, err := a.tracker.Snapshot()
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, "progress unavailable")
		return
	}
	writeJSON(rw, http.StatusOK, snap)
}

func (a *apiServer) createScene(rw http.ResponseWriter, r *http.Request) {
	var req tour.NewScene
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "scene id required")
		return
	}
	view, err := a.session.CreateScene(auth.RoleAdmin, req)
	if err != nil {
		if errors.Is(err, tour.ErrSceneExists) {
			writeError(rw, http.StatusConflict, protocol.ErrSceneDuplicate, req.ID)
			return
		}
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	writeJSON(rw, http.StatusCreated, map[string]any{
		"id":     view.SceneID,
		"meta":   view.Meta,
		"points": view.Points,
	})
}

func (a *apiServer) updateSceneMeta(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch tour.MetaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "invalid body")
		return
	}
	m, err := a.session.UpdateSceneMeta(auth.RoleAdmin, id, patch)
	if err != nil {
		a.writeTourError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, m)
}

func (a *apiServer) deleteScene(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := a.session.DeleteScene(auth.RoleAdmin, id)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	if !deleted {
		code := protocol.ErrSceneNotFound
		if a.session.IsBuiltinScene(id) {
			code = protocol.ErrSceneBuiltin
		}
		writeJSON(rw, http.StatusOK, map[string]any{"deleted": false, "code": code})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"deleted": true})
}

func (a *apiServer) addPoint(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var raw scene.RawPoint
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "invalid body")
		return
	}
	p, err := a.session.AddScenePoint(auth.RoleAdmin, id, raw)
	if err != nil {
		a.writeTourError(rw, err)
		return
	}
	writeJSON(rw, http.StatusCreated, p)
}

func (a *apiServer) updatePoint(rw http.ResponseWriter, r *http.Request) {
	id, pid := r.PathValue("id"), r.PathValue("pid")
	var patch tour.PointPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "invalid body")
		return
	}
	p, err := a.session.UpdateScenePoint(auth.RoleAdmin, id, pid, patch)
	if err != nil {
		a.writeTourError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, p)
}

func (a *apiServer) deletePoint(rw http.ResponseWriter, r *http.Request) {
	id, pid := r.PathValue("id"), r.PathValue("pid")
	if err := a.session.DeleteScenePoint(auth.RoleAdmin, id, pid); err != nil {
		a.writeTourError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"deleted": true})
}

func (a *apiServer) exportOverrides(rw http.ResponseWriter, r *http.Request) {
	payload := a.session.ExportOverrides()
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "culturewalk-export-"+time.Now().UTC().Format("20060102-150405")+".json"))
	enc := json.NewEncoder(rw)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func (a *apiServer) importOverrides(rw http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "read body")
		return
	}
	res, err := a.session.ImportOverrides(r.Context(), auth.RoleAdmin, raw)
	if err != nil {
		var perr *overrides.PayloadError
		if errors.As(err, &perr) {
			writeError(rw, http.StatusBadRequest, protocol.ErrBadPayload, perr.Reason)
			return
		}
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{
		"ok":            true,
		"scenes":        res.Scenes,
		"missingModels": res.MissingModels,
	})
}

func (a *apiServer) scanModels(rw http.ResponseWriter, r *http.Request) {
	m, err := manifest.Scan(a.public, time.Now())
	if err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	if err := manifest.Write(a.public, m); err != nil {
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, m)
}

// metricsHandler exposes a few gauges in the minimal Prometheus text
// format.
func (a *apiServer) metricsHandler(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	scenes := a.session.AvailableScenes()
	fmt.Fprintf(rw, "# HELP culturewalk_scenes Number of selectable scenes.\n")
	fmt.Fprintf(rw, "# TYPE culturewalk_scenes gauge\n")
	fmt.Fprintf(rw, "culturewalk_scenes %d\n", len(scenes))

	fmt.Fprintf(rw, "# HELP culturewalk_scene_points Materialized point count per scene.\n")
	fmt.Fprintf(rw, "# TYPE culturewalk_scene_points gauge\n")
	for _, id := range scenes {
		pts, err := a.session.ScenePoints(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(rw, "culturewalk_scene_points{scene=%q} %d\n", id, len(pts))
	}

	if snap, err := a.tracker.Snapshot(); err == nil {
		fmt.Fprintf(rw, "# HELP culturewalk_visited_points Distinct points visited.\n")
		fmt.Fprintf(rw, "# TYPE culturewalk_visited_points gauge\n")
		fmt.Fprintf(rw, "culturewalk_visited_points %d\n", len(snap.VisitedPoints))

		fmt.Fprintf(rw, "# HELP culturewalk_conversations_total Recorded chat conversations.\n")
		fmt.Fprintf(rw, "# TYPE culturewalk_conversations_total counter\n")
		fmt.Fprintf(rw, "culturewalk_conversations_total %d\n", snap.Conversations)

		fmt.Fprintf(rw, "# HELP culturewalk_achievements_unlocked Unlocked achievements.\n")
		fmt.Fprintf(rw, "# TYPE culturewalk_achievements_unlocked gauge\n")
		fmt.Fprintf(rw, "culturewalk_achievements_unlocked %d\n", len(snap.Achievements))
	}
}

func (a *apiServer) writeTourError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tour.ErrSceneNotFound):
		writeError(rw, http.StatusNotFound, protocol.ErrSceneNotFound, err.Error())
	case errors.Is(err, tour.ErrPointNotFound):
		writeError(rw, http.StatusNotFound, protocol.ErrBadRequest, err.Error())
	case errors.Is(err, tour.ErrBadPoint):
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, err.Error())
	case errors.Is(err, tour.ErrSceneExists):
		writeError(rw, http.StatusConflict, protocol.ErrSceneDuplicate, err.Error())
	default:
		writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, code, msg string) {
	writeJSON(rw, status, map[string]any{"code": code, "message": msg})
}
