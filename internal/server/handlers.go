package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/boxlens/pkg/buildinfo"
	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/layout"
	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
	"github.com/matzehuels/boxlens/pkg/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"sessions": s.sessions.Len(),
	})
}

// handleRender runs the pipeline on a multipart upload with "image" and
// "layout" parts.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r, s.cfg.Defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := queryFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	if err := r.ParseMultipartForm(s.cfg.MaxUpload); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "expected multipart form with image and layout"))
		return
	}
	imageData, err := formPart(r, "image")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	layoutData, err := formPart(r, "layout")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts.Logger = s.logger
	res, err := s.runner.Execute(r.Context(), pipeline.Input{Image: imageData, Layout: layoutData}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheHit {
		cacheStatus = "hit"
	}
	w.Header().Set("X-Boxlens-Cache", cacheStatus)
	w.Header().Set("X-Boxlens-Skipped", strconv.Itoa(res.Skipped))
	writeArtifact(w, format, res.Artifacts[format])
}

// formPart returns a multipart file part, falling back to a plain field.
func formPart(r *http.Request, name string) ([]byte, error) {
	f, _, err := r.FormFile(name)
	if err == nil {
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", name)
		}
		return data, nil
	}
	if v := r.FormValue(name); v != "" {
		return []byte(v), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "missing form part %q", name)
}

// =============================================================================
// Sessions
// =============================================================================

type sessionInfo struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctrl := session.New()
	if err := ctrl.SetOptions(s.cfg.Defaults); err != nil {
		s.writeError(w, r, err)
		return
	}
	dec, err := ctrl.LoadImage(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Put(r.Context(), ctrl); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("created session", "id", ctrl.ID, "width", dec.Width(), "height", dec.Height())

	writeJSON(w, http.StatusCreated, sessionInfo{
		ID:     ctrl.ID,
		Width:  dec.Width(),
		Height: dec.Height(),
		Format: dec.Format,
	})
}

func (s *Server) handleSessionImage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dec, err := ctrl.LoadImage(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionInfo{
		ID:     ctrl.ID,
		Width:  dec.Width(),
		Height: dec.Height(),
		Format: dec.Format,
	})
}

func (s *Server) handleSessionLayout(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := layout.ReadJSON(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := ctrl.SetLayout(doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionOptions(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := ctrl.Options()
	if err := json.Unmarshal(data, &opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
		return
	}
	// Decoding over validated options; validate the result again.
	if opts, err = opts.WithFormats(opts.Formats...); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := ctrl.SetOptions(opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionRender(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	format, err := queryFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	frame, err := ctrl.Render(r.Context(), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Boxlens-Skipped", strconv.Itoa(frame.Overlay.Skipped))
	writeArtifact(w, format, frame.Artifacts[format])
}

func (s *Server) handleSessionLegend(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.session(w, r)
	if !ok {
		return
	}
	legend, err := ctrl.Legend(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if legend == nil {
		legend = []overlay.LegendEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"legend": legend})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session looks up the {id} URL parameter, writing the error response
// when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return ctrl, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}
