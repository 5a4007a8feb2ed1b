package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/snapshot"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/trackby"
	"github.com/go-chi/chi/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// CreateRequest is the body of POST /v1/sessions.
type CreateRequest struct {
	TrackBy trackby.Spec `json:"trackBy"`
}

// CreateResponse is returned by POST /v1/sessions.
type CreateResponse struct {
	ID      string `json:"id"`
	TrackBy string `json:"trackBy"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, errors.New("E302").Wrap(err))
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, errors.New("E302").Wrap(err))
			return
		}
	}

	sess, err := s.sessions.Create(req.TrackBy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.activeSessions != nil {
		s.activeSessions.Inc()
	}
	writeJSON(w, http.StatusCreated, CreateResponse{ID: sess.ID, TrackBy: req.TrackBy.String()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeReport(w, r, sess.Items())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Close(id) {
		s.writeError(w, errors.New("E010").WithSource(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxSnapshotBytes))
	if err != nil {
		s.writeError(w, errors.New("E102").Wrap(err))
		return
	}
	items, err := snapshot.Decode(body, true)
	if err != nil {
		s.writeError(w, errors.New("E102").Wrap(err))
		return
	}

	report, err := sess.Check(items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeReport(w, r, report)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, report *protocol.Report) {
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		data, err := protocol.EncodeMsgpack(report)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.countReport("http", "msgpack")
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}
	s.countReport("http", "json")
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) countReport(transport, encoding string) {
	if s.reports != nil {
		s.reports.WithLabelValues(transport, encoding).Inc()
	}
}

// errorResponse wraps a coded error in HTTP responses.
type errorResponse struct {
	Error *errors.Error `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, errSessionClosed) {
		err = errors.New("E010").Wrap(err)
	}
	e := errors.Classify(err)
	status := statusFor(e)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: e})
}

func statusFor(e *errors.Error) int {
	switch e.Code {
	case "E010":
		return http.StatusNotFound
	case "E011":
		return http.StatusServiceUnavailable
	}
	switch e.Category {
	case errors.CategoryInput, errors.CategoryProtocol:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
