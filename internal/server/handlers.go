package server

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/graph"
	"github.com/matzehuels/arbor/pkg/httputil"
	"github.com/matzehuels/arbor/pkg/pipeline"
	"github.com/matzehuels/arbor/pkg/session"
	"github.com/matzehuels/arbor/pkg/species"
)

// GrowResponse is the body of POST /api/grow.
type GrowResponse struct {
	Species   *species.Species  `json:"species,omitempty"`
	Options   pipeline.Options  `json:"options"`
	Full      *graph.Branch     `json:"full"`
	Pruned    *graph.Branch     `json:"pruned"`
	Removed   []string          `json:"removed"`
	Stats     pipeline.Stats    `json:"stats"`
	TreeHash  string            `json:"treeHash"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Cached    bool              `json:"cached"`
}

// PruneRequest is the body of POST /api/sessions/{id}/prune.
type PruneRequest struct {
	BranchID string `json:"branchId"`
}

// PruneResponse reports the updated session and the size of the cut.
type PruneResponse struct {
	Session *session.Session `json:"session"`
	Removed int              `json:"removed"`
}

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	SpeciesID string `json:"speciesId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleListSpecies(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSpecies(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSpeciesID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	sp, err := s.catalog.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sp)
}

func (s *Server) handleGrow(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := httputil.DecodeJSON(r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := GrowResponse{
		Options:  res.Options,
		Full:     graph.FromTree(res.Full),
		Pruned:   graph.FromTree(res.Pruned),
		Species:  res.Species,
		Removed:  res.Removed.Sorted(),
		Stats:    res.Stats,
		TreeHash: res.TreeHash,
		Cached:   res.CacheInfo.GrowHit,
	}
	for format, data := range res.Artifacts {
		if format == pipeline.FormatJSON {
			continue // already in Pruned
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string)
		}
		resp.Artifacts[format] = string(data)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.sessions.Create(r.Context(), req.SpeciesID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var p session.Patch
	if err := httputil.DecodeJSON(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.sessions.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	var req PruneRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, n, err := s.sessions.Prune(r.Context(), chi.URLParam(r, "id"), req.BranchID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PruneResponse{Session: sess, Removed: n})
}

func (s *Server) handleClearPruned(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.ClearPruned(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "pruned"
	}
	if view != "full" && view != "pruned" {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "view must be full or pruned, got %q", view))
		return
	}

	full, pruned, err := s.sessions.Trees(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t := pruned
	if view == "full" {
		t = full
	}
	httputil.WriteJSON(w, http.StatusOK, graph.FromTree(t))
}

// reportFormats are the formats served raw by the report endpoint.
var reportFormats = []string{pipeline.FormatTXT, pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatSketch}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatTXT
	}
	if !slices.Contains(reportFormats, format) {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidFormat, "report format must be one of %v, got %q", reportFormats, format))
		return
	}

	res, err := s.sessions.Execute(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", httputil.ContentType(format))
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httputil.StatusFor(err) == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	httputil.WriteError(w, err)
}
