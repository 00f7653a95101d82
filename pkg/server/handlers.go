package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/structiou/pkg/align"
	"github.com/matzehuels/structiou/pkg/corpus"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/metric"
	"github.com/matzehuels/structiou/pkg/render"
)

// ScoreRequest is the body of /v1/score and /v1/render.
type ScoreRequest struct {
	corpus.Example
	Options corpus.Options `json:"options"`
}

// ScoreResponse is returned by /v1/score.
type ScoreResponse struct {
	ID     string        `json:"id,omitempty"`
	Cached bool          `json:"cached"`
	Report metric.Report `json:"report"`
}

// CorpusRequest is the body of /v1/corpus.
type CorpusRequest struct {
	Examples []corpus.Example `json:"examples"`
	Options  corpus.Options   `json:"options"`
}

type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	req := ScoreRequest{Options: corpus.DefaultOptions()}
	if !s.decode(w, r, &req) {
		return
	}

	rep, hit, err := s.runner.ScoreWithCacheInfo(r.Context(), req.Example, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{ID: req.ID, Cached: hit, Report: rep})
}

func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	req := CorpusRequest{Options: corpus.DefaultOptions()}
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Examples) > s.cfg.MaxExamples {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput,
			"too many examples: %d (max %d)", len(req.Examples), s.cfg.MaxExamples))
		return
	}

	summary, err := s.runner.Run(r.Context(), req.Examples, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req := ScoreRequest{Options: corpus.DefaultOptions()}
	if !s.decode(w, r, &req) {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "dot" {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "unsupported render format %q", format))
		return
	}

	ref, pred, rep, err := s.runner.ScoreTrees(r.Context(), req.Example, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dot := render.ToDOT(ref, pred, align.Result{Pairs: rep.Pairs, Weight: rep.Weight}, render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
	})

	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := render.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// decode reads a JSON body into v, writing an error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeStatus(w, r, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:  errors.ErrCodeInvalidInput,
			})
			return false
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid request body"))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
	}
	s.writeStatus(w, r, status, errorResponse{
		Error: err.Error(),
		Code:  errors.GetCode(err),
	})
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, body errorResponse) {
	body.RequestID = RequestIDFrom(r.Context())
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
