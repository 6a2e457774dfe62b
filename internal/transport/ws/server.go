// Package ws serves the visitor tour over a websocket: HELLO/WELCOME
// handshake, position reports in, narration and scene state out.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"culturewalk.ai/internal/auth"
	"culturewalk.ai/internal/narrate"
	"culturewalk.ai/internal/protocol"
	"culturewalk.ai/internal/scene"
	"culturewalk.ai/internal/tour"
)

const chatTimeout = 30 * time.Second

type Server struct {
	session *tour.Session
	llm     narrate.Client
	auth    *auth.Service
	tts     narrate.TTSConfig
	log     *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sess *tour.Session, llm narrate.Client, authsvc *auth.Service, tts narrate.TTSConfig, logger *log.Logger) *Server {
	return &Server{
		session: sess,
		llm:     llm,
		auth:    authsvc,
		tts:     tts,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				continue
			}
			s.dispatch(ctx, out, base.Type, msg)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, out chan []byte, typ string, msg []byte) {
	switch typ {
	case protocol.TypePos:
		var pos protocol.PosMsg
		if err := json.Unmarshal(msg, &pos); err != nil {
			return
		}
		if entered := s.session.UpdatePlayerPosition(pos.Position); entered != nil {
			s.sendNarration(ctx, out, *entered)
		}
	case protocol.TypeSwitch:
		var sw protocol.SwitchMsg
		if err := json.Unmarshal(msg, &sw); err != nil {
			return
		}
		view, err := s.session.SwitchScene(sw.SceneID)
		if err != nil {
			s.sendError(ctx, out, protocol.ErrSceneNotFound, sw.SceneID)
			return
		}
		s.send(ctx, out, sceneMsg(view))
	case protocol.TypePoint:
		var pt protocol.PointMsg
		if err := json.Unmarshal(msg, &pt); err != nil {
			return
		}
		p, err := s.session.SelectPoint(pt.PointID)
		if err != nil {
			s.sendError(ctx, out, protocol.ErrBadRequest, pt.PointID)
			return
		}
		s.session.MarkPointVisited(p.ID)
		s.sendNarration(ctx, out, p)
	case protocol.TypeChat:
		var chat protocol.ChatMsg
		if err := json.Unmarshal(msg, &chat); err != nil {
			return
		}
		if strings.TrimSpace(chat.Content) == "" {
			return
		}
		// Off the reader loop so a slow provider never stalls
		// position reports.
		go s.handleChat(ctx, out, chat.Content)
	}
}

// handshake reads the HELLO, resolves the admin flag from the optional
// token and replies with WELCOME carrying the full scene state.
func (s *Server) handshake(conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}

	isAdmin := false
	if s.auth != nil && hello.Auth != nil {
		isAdmin = s.auth.IsAdmin(strings.TrimSpace(hello.Auth.Token))
	}

	sessionID = uuid.NewString()
	out = make(chan []byte, 16)

	view := s.session.View()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		IsAdmin:         isAdmin,
		Scene:           scenePart(view),
		AvailableScenes: view.Available,
		Spawn:           view.Spawn,
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", nil
	}
	return sessionID, out
}

// handleChat runs one LLM round trip: persona from the scene meta,
// exhibit facts from the point the visitor stands at, then the running
// conversation.
func (s *Server) handleChat(ctx context.Context, out chan []byte, content string) {
	s.session.AppendMessage("user", content)

	meta, _ := s.session.Meta(s.session.CurrentScene())
	var focus *scene.Point
	if p, ok := s.session.CurrentPoint(); ok {
		focus = &p
	}
	msgs := []narrate.Message{{Role: "system", Content: narrate.SystemPrompt(meta, focus)}}
	for _, m := range s.session.Messages() {
		if m.Role == "user" || m.Role == "assistant" {
			msgs = append(msgs, narrate.Message{Role: m.Role, Content: m.Content})
		}
	}

	cctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()
	reply, err := s.llm.Complete(cctx, msgs)
	if err != nil {
		if s.log != nil {
			s.log.Printf("ws: chat completion: %v", err)
		}
		s.sendError(ctx, out, protocol.ErrInternal, "narration unavailable")
		return
	}
	reply = narrate.StripThink(reply)

	stored := s.session.AppendMessage("assistant", reply)
	s.send(ctx, out, protocol.ChatMsg{
		Type:            protocol.TypeChat,
		ProtocolVersion: protocol.Version,
		MessageID:       stored.ID,
		Role:            stored.Role,
		Content:         stored.Content,
		Timestamp:       time.Now().UnixMilli(),
	})
}

func (s *Server) sendNarration(ctx context.Context, out chan []byte, p scene.Point) {
	s.send(ctx, out, protocol.NarrateMsg{
		Type:            protocol.TypeNarrate,
		ProtocolVersion: protocol.Version,
		PointID:         p.ID,
		PointName:       p.Name,
		Text:            narrate.Greeting(p),
		Voice:           s.tts.Voice,
	})
}

func (s *Server) send(ctx context.Context, out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

func (s *Server) sendError(ctx context.Context, out chan []byte, code, detail string) {
	s.send(ctx, out, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         detail,
	})
}

func scenePart(v tour.View) protocol.ScenePart {
	return protocol.ScenePart{ID: v.SceneID, Meta: v.Meta, Points: v.Points}
}

func sceneMsg(v tour.View) protocol.SceneMsg {
	return protocol.SceneMsg{
		Type:            protocol.TypeScene,
		ProtocolVersion: protocol.Version,
		Scene:           scenePart(v),
		AvailableScenes: v.Available,
		Spawn:           v.Spawn,
		Transitioning:   v.Transitioning,
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
