package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/buildinfo"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
	"github.com/matzehuels/tapestry/pkg/gallery"
	tapio "github.com/matzehuels/tapestry/pkg/io"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// handleNormalize returns the normalized form of a parameter record.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	m, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine().Normalize(tapio.ParamsFromDocument(m)))
}

// handleRender renders a parameter record. The seed comes from the query,
// then from a "seed" field in the body, and defaults to 0.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	m, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	seed, _ := numberValue(m["seed"])
	if v := r.URL.Query().Get("seed"); v != "" {
		if seed, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidSeed, "seed must be a number (got %q)", v))
			return
		}
	}

	opts, err := s.renderOptions(r.URL.Query(), tapio.ParamsFromDocument(m), seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, opts, "")
}

func (s *Server) handleCreatePiece(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	d, err := gallery.DecodeDesign(body, documentFormat(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := gallery.NewPiece(d, r.URL.Query().Get("owner"), nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Store.Put(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/pieces/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPieces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intQuery(q, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	pieces, err := s.cfg.Store.List(r.Context(), gallery.ListOptions{Owner: q.Get("owner"), Limit: limit})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if pieces == nil {
		pieces = []*gallery.Piece{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pieces": pieces})
}

func (s *Server) handleGetPiece(w http.ResponseWriter, r *http.Request) {
	p, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePieceImage renders a stored piece with its own seed. Exports are
// sent as attachments named after the piece.
func (s *Server) handlePieceImage(w http.ResponseWriter, r *http.Request) {
	p, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.renderOptions(r.URL.Query(), p.Params, p.Seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filename := ""
	if opts.Formats[0] == pipeline.FormatExport {
		filename = p.ExportFilename()
	}
	s.render(w, r, opts, filename)
}

func (s *Server) handleDeletePiece(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// render runs the pipeline for a single format and writes the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options, filename string) {
	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	data := result.Artifacts[format]
	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}

	h := w.Header()
	h.Set("Content-Type", pipeline.ContentType(format))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Cache", cacheStatus)
	h.Set("X-Params-Hash", result.ParamsHash)
	h.Set("X-Seed", strconv.FormatFloat(opts.Seed, 'g', -1, 64))
	if filename != "" {
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// renderOptions builds single-format pipeline options from query values.
func (s *Server) renderOptions(q url.Values, params art.ArtParams, seed float64) (pipeline.Options, error) {
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatPNG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, err
	}

	width, err := intQuery(q, "width")
	if err != nil {
		return pipeline.Options{}, err
	}
	height, err := intQuery(q, "height")
	if err != nil {
		return pipeline.Options{}, err
	}
	scale, err := floatQuery(q, "scale")
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Params:  params,
		Seed:    seed,
		Width:   width,
		Height:  height,
		Scale:   scale,
		Formats: []string{format},
		Refresh: q.Get("refresh") == "true",
		Policy:  s.cfg.Policy,
	}, nil
}

func (s *Server) engine() *art.Engine {
	if s.cfg.Policy != nil {
		return art.New(art.WithPolicy(*s.cfg.Policy))
	}
	return art.New()
}

// readDocument decodes a bounded request body in the format named by its
// Content-Type, JSON by default.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	return tapio.ReadDocument(body, documentFormat(r))
}

func documentFormat(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/toml":
		return tapio.FormatTOML
	case "application/yaml", "application/x-yaml", "text/yaml":
		return tapio.FormatYAML
	default:
		return tapio.FormatJSON
	}
}

func intQuery(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "%s must be an integer (got %q)", key, v)
	}
	return n, nil
}

func floatQuery(q url.Values, key string) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "%s must be a number (got %q)", key, v)
	}
	return f, nil
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
