package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/session"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/wizard"
)

// SubmitterFunc returns the submitter that persists on behalf of actor.
type SubmitterFunc func(actor string) wizard.Submitter

// Handler manages WebSocket connections for remote wizards.
type Handler struct {
	sessions   *session.Manager
	builder    *payload.Builder
	source     wizard.RecordSource
	submitters SubmitterFunc
}

// NewHandler creates a WebSocket handler with all dependencies.
func NewHandler(sessions *session.Manager, builder *payload.Builder, source wizard.RecordSource, submitters SubmitterFunc) *Handler {
	return &Handler{
		sessions:   sessions,
		builder:    builder,
		source:     source,
		submitters: submitters,
	}
}

// conn wraps one websocket connection with its session and tracks the
// submissions it started.
type conn struct {
	ws      *websocket.Conn
	sess    *session.Session
	pending sync.WaitGroup
}

// ServeHTTP upgrades to WebSocket and runs the message loop. The actor comes
// from the X-Actor header or the actor query parameter; a session query
// parameter reattaches to an existing session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn().Err(err).Msg("wizard: websocket accept")
		return
	}
	defer ws.CloseNow()

	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = r.URL.Query().Get("actor")
	}
	sess, resumed := h.sessions.Get(r.URL.Query().Get("session")), true
	if sess == nil || (actor != "" && sess.Actor != actor) {
		sess, resumed = h.sessions.Create(actor), false
	}

	c := &conn{ws: ws, sess: sess}
	defer c.pending.Wait()

	ctx := r.Context()
	h.send(ctx, c, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID, Actor: sess.Actor, Resumed: resumed},
	})
	if resumed {
		if wz := sess.Wizard(); wz != nil {
			h.sendView(ctx, c, "", wz, nil)
		}
	}

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, ws, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Debug().Str("session_id", sess.ID).Int("status", int(websocket.CloseStatus(err))).Msg("wizard: connection closed")
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case "ping":
			h.send(ctx, c, ServerMessage{Type: "pong", RequestID: msg.ID})
		case "open":
			h.handleOpen(ctx, c, msg)
		case "close":
			sess.CloseWizard()
			h.send(ctx, c, ServerMessage{Type: "closed", RequestID: msg.ID})
		default:
			wz := sess.Wizard()
			if wz == nil {
				h.sendError(ctx, c, msg.ID, ErrorData{Code: "no_wizard", Message: "no wizard is open"})
				continue
			}
			h.handleWizard(ctx, c, wz, msg)
		}
	}
}

func (h *Handler) handleOpen(ctx context.Context, c *conn, msg ClientMessage) {
	var data OpenData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, c, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid open data"})
		return
	}
	if data.Mode == "" {
		data.Mode = wizard.ModeCreate
	}
	if data.Mode != wizard.ModeView && c.sess.Actor == "" {
		h.sendError(ctx, c, msg.ID, ErrorData{Code: "missing_actor", Message: "an actor is required to edit variants"})
		return
	}
	wz, err := wizard.Open(ctx, h.source, h.builder, h.submitters(c.sess.Actor), data.Mode, data.VariantID)
	if err != nil {
		h.sendError(ctx, c, msg.ID, ErrorData{Code: "open_failed", Message: err.Error()})
		return
	}
	c.sess.SetWizard(wz)
	h.sendView(ctx, c, msg.ID, wz, nil)
}

func (h *Handler) handleWizard(ctx context.Context, c *conn, wz *wizard.Controller, msg ClientMessage) {
	var err error
	switch msg.Type {
	case "goto":
		var data GotoData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, c, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid goto data"})
			return
		}
		_, offset := wz.GoTo(data.Step, data.Scroll)
		h.sendView(ctx, c, msg.ID, wz, &offset)
		return
	case "next", "previous":
		var data MoveData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				h.sendError(ctx, c, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid " + msg.Type + " data"})
				return
			}
		}
		var offset int
		if msg.Type == "next" {
			_, offset = wz.Next(data.Scroll)
		} else {
			_, offset = wz.Previous(data.Scroll)
		}
		h.sendView(ctx, c, msg.ID, wz, &offset)
		return
	case "set_basic":
		var data SetBasicData
		if err = json.Unmarshal(msg.Data, &data); err == nil {
			err = wz.SetBasic(data.Field, data.Value)
		}
	case "set_spec":
		var data SetSpecData
		if err = json.Unmarshal(msg.Data, &data); err == nil {
			err = wz.SetSpec(data.Field, data.Value)
		}
	case "clear_spec":
		var data SetSpecData
		if err = json.Unmarshal(msg.Data, &data); err == nil {
			err = wz.ClearSpec(data.Field)
		}
	case "set_feature":
		var data SetFeatureData
		if err = json.Unmarshal(msg.Data, &data); err == nil {
			err = wz.SetFeature(data.Category, data.Flag, data.Selected)
		}
	case "submit":
		h.handleSubmit(ctx, c, wz, msg)
		return
	default:
		h.sendError(ctx, c, msg.ID, ErrorData{Code: "unknown_type", Message: fmt.Sprintf("unknown message type: %s", msg.Type)})
		return
	}
	if err != nil {
		h.sendError(ctx, c, msg.ID, errorData(err))
		return
	}
	h.sendView(ctx, c, msg.ID, wz, nil)
}

// handleSubmit runs the submission in the background so the read loop keeps
// serving the connection. The backend call is not cancelled when the client
// disconnects.
func (h *Handler) handleSubmit(ctx context.Context, c *conn, wz *wizard.Controller, msg ClientMessage) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		rec, err := wz.Submit(context.WithoutCancel(ctx))
		switch {
		case errors.Is(err, wizard.ErrClosed):
			return
		case err != nil:
			h.sendError(ctx, c, msg.ID, errorData(err))
			return
		}
		c.sess.CloseWizard()
		h.send(ctx, c, ServerMessage{Type: "submitted", RequestID: msg.ID, Data: SubmittedData{Record: rec}})
	}()
}

func errorData(err error) ErrorData {
	var (
		verr *payload.ValidationError
		serr *wizard.SubmissionError
	)
	switch {
	case errors.As(err, &verr):
		return ErrorData{Code: "validation_failed", Message: verr.Error(), Fields: verr.Fields}
	case errors.As(err, &serr):
		return ErrorData{Code: "submission_failed", Message: serr.Message}
	case errors.Is(err, wizard.ErrReadOnly):
		return ErrorData{Code: "read_only", Message: err.Error()}
	case errors.Is(err, wizard.ErrNotFinalStep):
		return ErrorData{Code: "not_final_step", Message: err.Error()}
	case errors.Is(err, wizard.ErrSubmitInFlight):
		return ErrorData{Code: "submit_in_flight", Message: err.Error()}
	case errors.Is(err, wizard.ErrClosed):
		return ErrorData{Code: "closed", Message: err.Error()}
	case errors.Is(err, wizard.ErrUnknownField):
		return ErrorData{Code: "unknown_field", Message: err.Error()}
	default:
		return ErrorData{Code: "invalid_data", Message: err.Error()}
	}
}

func (h *Handler) sendView(ctx context.Context, c *conn, requestID string, wz *wizard.Controller, scroll *int) {
	v := wz.Render()
	h.send(ctx, c, ServerMessage{
		Type:      "view",
		RequestID: requestID,
		Data:      ViewData{Step: v.Step, Scroll: scroll, View: v},
	})
}

func (h *Handler) send(ctx context.Context, c *conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, c.ws, msg); err != nil {
		log.Debug().Err(err).Str("session_id", c.sess.ID).Msg("wizard: write error")
	}
}

func (h *Handler) sendError(ctx context.Context, c *conn, requestID string, data ErrorData) {
	h.send(ctx, c, ServerMessage{Type: "error", RequestID: requestID, Data: data})
}
