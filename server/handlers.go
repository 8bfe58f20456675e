package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/project"
	"github.com/user/reelcut/timeline"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// EditRequest carries the arguments of an edit. Each op reads the fields it
// needs; ID defaults to the selected clip.
type EditRequest struct {
	ID     string                `json:"id"`
	Edge   string                `json:"edge"`
	Value  *float64              `json:"value"`
	Time   *float64              `json:"time"`
	Index  *int                  `json:"index"`
	Delta  int                   `json:"delta"`
	X      *float64              `json:"x"`
	Track  string                `json:"track"`
	Volume *float64              `json:"volume"`
	Pip    *timeline.PipSettings `json:"pip"`
	Paths  []string              `json:"paths"`
	Path   string                `json:"path"`
}

// EditResponse is returned by a successful edit.
type EditResponse struct {
	State  editor.Snapshot      `json:"state"`
	Import *editor.ImportResult `json:"import,omitempty"`
}

// PlaybackRequest carries seek arguments. At is a typed position such as
// "1:05.5" and is used when Time is absent.
type PlaybackRequest struct {
	Time  *float64 `json:"time"`
	At    string   `json:"at,omitempty"`
	Delta *float64 `json:"delta"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeEditError maps session errors onto HTTP statuses.
func writeEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrNoPlayer):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "NO_PLAYER")
	case errors.Is(err, editor.ErrNoProber):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "NO_MEDIA_BACKEND")
	case errors.Is(err, editor.ErrNoProjectPath),
		errors.Is(err, project.ErrInvalidProject):
		writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, editor.ErrPlayheadOutsideClip),
		errors.Is(err, editor.ErrImportLimit),
		errors.Is(err, timeline.ErrSplitOutOfRange),
		errors.Is(err, timeline.ErrNoClipAtPlayhead),
		errors.Is(err, timeline.ErrReorderNoop),
		errors.Is(err, timeline.ErrDropOutOfRange),
		errors.Is(err, timeline.ErrSingleClip),
		errors.Is(err, timeline.ErrTrimTooShort),
		errors.Is(err, timeline.ErrInvalidTrack):
		writeError(w, http.StatusConflict, err.Error(), "INVALID_EDIT")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	op := chi.URLParam(r, "op")
	resp, err := s.applyEdit(r, op, req)
	if errors.Is(err, errUnknownOp) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown edit %q", op), "NOT_FOUND")
		return
	}
	var bad badRequest
	if errors.As(err, &bad) {
		writeError(w, http.StatusBadRequest, bad.Error(), "BAD_REQUEST")
		return
	}
	if err != nil {
		writeEditError(w, err)
		return
	}
	resp.State = s.session.Snapshot()
	writeJSON(w, http.StatusOK, resp)
}

var errUnknownOp = errors.New("unknown op")

type badRequest string

func (b badRequest) Error() string { return string(b) }

func (s *Server) applyEdit(r *http.Request, op string, req EditRequest) (EditResponse, error) {
	ctx := r.Context()
	sess := s.session
	var resp EditResponse

	switch op {
	case "select":
		return resp, sess.Select(ctx, req.ID)
	case "split":
		if req.Time != nil && req.ID != "" {
			return resp, sess.SplitClip(ctx, req.ID, *req.Time)
		}
		return resp, sess.Split(ctx)
	case "trim":
		edge, err := parseEdge(req.Edge)
		if err != nil {
			return resp, err
		}
		if req.Value == nil {
			if edge == timeline.EdgeIn {
				return resp, sess.SetInPoint(ctx)
			}
			return resp, sess.SetOutPoint(ctx)
		}
		return resp, sess.Trim(ctx, req.ID, edge, *req.Value)
	case "delete":
		return resp, sess.Delete(ctx, req.ID)
	case "reorder":
		switch {
		case req.Index != nil:
			return resp, sess.Reorder(ctx, req.ID, *req.Index)
		case req.X != nil:
			return resp, sess.DropAt(ctx, req.ID, *req.X)
		case req.Delta != 0:
			return resp, sess.Nudge(ctx, req.ID, req.Delta)
		}
		return resp, badRequest("reorder needs index, x or delta")
	case "move":
		if req.Track == "" {
			return resp, sess.ToggleTrack(ctx, req.ID)
		}
		track, err := timeline.ParseTrack(req.Track)
		if err != nil {
			return resp, badRequest(err.Error())
		}
		return resp, sess.MoveToTrack(ctx, req.ID, track)
	case "volume":
		if req.Volume == nil {
			return resp, badRequest("volume is required")
		}
		return resp, sess.SetVolume(ctx, req.ID, *req.Volume)
	case "mute":
		return resp, sess.ToggleMute(ctx, req.ID)
	case "pip":
		if req.Pip == nil {
			return resp, badRequest("pip is required")
		}
		return resp, sess.UpdatePip(ctx, req.ID, *req.Pip)
	case "undo":
		sess.Undo(ctx)
		return resp, nil
	case "redo":
		sess.Redo(ctx)
		return resp, nil
	case "import":
		if len(req.Paths) == 0 {
			return resp, badRequest("paths is required")
		}
		res, err := sess.Import(ctx, req.Paths...)
		resp.Import = &res
		return resp, err
	case "save":
		return resp, sess.Save(ctx, req.Path)
	case "open":
		if req.Path == "" {
			return resp, badRequest("path is required")
		}
		return resp, sess.Open(ctx, req.Path)
	case "new":
		return resp, sess.NewProject(ctx)
	}
	return resp, errUnknownOp
}

func parseEdge(s string) (timeline.Edge, error) {
	switch s {
	case "in":
		return timeline.EdgeIn, nil
	case "out":
		return timeline.EdgeOut, nil
	}
	return 0, badRequest(fmt.Sprintf("edge must be in or out, got %q", s))
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	var req PlaybackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	ctx := r.Context()
	var err error
	switch action := chi.URLParam(r, "action"); action {
	case "play":
		err = s.session.Play(ctx)
	case "pause":
		err = s.session.Pause(ctx)
	case "toggle":
		err = s.session.TogglePlay(ctx)
	case "seek":
		switch {
		case req.Time != nil:
			err = s.session.Seek(ctx, *req.Time)
		case req.At != "":
			at, perr := timeutil.ParseClock(req.At)
			if perr != nil {
				writeError(w, http.StatusBadRequest, perr.Error(), "BAD_REQUEST")
				return
			}
			err = s.session.Seek(ctx, at)
		case req.Delta != nil:
			err = s.session.SeekRelative(ctx, *req.Delta)
		default:
			writeError(w, http.StatusBadRequest, "seek needs time, at or delta", "BAD_REQUEST")
			return
		}
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown playback action %q", action), "NOT_FOUND")
		return
	}
	if err != nil {
		writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}
