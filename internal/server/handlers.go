package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/matzehuels/plasmap/pkg/buildinfo"
	"github.com/matzehuels/plasmap/pkg/errors"
	pkgio "github.com/matzehuels/plasmap/pkg/io"
	"github.com/matzehuels/plasmap/pkg/pipeline"
	"github.com/matzehuels/plasmap/pkg/store"
)

// Response headers describing a pipeline run.
const (
	HeaderRunID = "X-Run-ID"
	HeaderCache = "X-Cache"
)

const contentTypeSVG = "image/svg+xml"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, opts, pipeline.FormatJSON)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, opts, pipeline.FormatSVG)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	db := chi.URLParam(r, "db")
	recs, err := s.store.List(r.Context(), db)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"db": db, "sequences": recs})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "db"), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutMap(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	seq, err := pkgio.ParseBytes(data, bodyFormat(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec := &store.Record{
		DB:       chi.URLParam(r, "db"),
		Hash:     chi.URLParam(r, "hash"),
		Name:     seq.Name,
		Length:   seq.Length,
		Features: seq.Features,
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored sequence", "db", rec.DB, "hash", rec.Hash, "features", len(rec.Features))
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "db"), chi.URLParam(r, "hash")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStoredLayout(w http.ResponseWriter, r *http.Request) {
	s.runStored(w, r, pipeline.FormatJSON)
}

func (s *Server) handleStoredSVG(w http.ResponseWriter, r *http.Request) {
	s.runStored(w, r, pipeline.FormatSVG)
}

func (s *Server) runStored(w http.ResponseWriter, r *http.Request, format string) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "db"), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.defaults()
	opts.Name = rec.Name
	opts.Length = rec.Length
	opts.Features = rec.Features
	if err := applyQuery(&opts, r.URL.Query()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.run(w, r, opts, format)
}

// run executes the pipeline for a single format and writes the artifact.
func (s *Server) run(w http.ResponseWriter, r *http.Request, opts pipeline.Options, format string) {
	opts.Formats = []string{format}
	opts.Logger = s.logger.With("id", RequestID(r.Context()))

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(HeaderRunID, result.RunID)
	hit := result.CacheInfo.LayoutHit
	if format == pipeline.FormatSVG {
		hit = result.CacheInfo.RenderHit
	}
	w.Header().Set(HeaderCache, lo.Ternary(hit, "hit", "miss"))

	contentType := lo.Ternary(format == pipeline.FormatSVG, contentTypeSVG, "application/json")
	writeBytes(w, contentType, result.Artifacts[format])
}

// decodeOptions reads a layout or render request body over the server's
// defaults. Query parameters override body fields.
func (s *Server) decodeOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}

	if data[0] == '[' || bodyFormat(r) == pkgio.FormatYAML {
		seq, err := pkgio.ParseBytes(data, bodyFormat(r))
		if err != nil {
			return opts, err
		}
		opts.Name, opts.Length, opts.Features = seq.Name, seq.Length, seq.Features
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
		}
	}
	if opts.Path != "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "path is not accepted over HTTP; send the features inline")
	}
	if opts.Length == 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "length is required")
	}
	return opts, applyQuery(&opts, r.URL.Query())
}

func bodyFormat(r *http.Request) pkgio.Format {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "yaml") {
		return pkgio.FormatYAML
	}
	return pkgio.FormatJSON
}

// applyQuery reads render options from the query string: width, highlight,
// cutters (comma separated cut counts) and the flags no_ticks, no_labels,
// interactive and refresh.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidOptions, "width: %q is not an integer", v)
		}
		opts.Width = n
	}
	if v := q.Get("highlight"); v != "" {
		opts.Highlight = v
	}
	if v := q.Get("cutters"); v != "" {
		counts := make([]int, 0)
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return errors.New(errors.ErrCodeInvalidOptions, "cutters: %q is not an integer", part)
			}
			counts = append(counts, n)
		}
		opts.Layout.CuttersToShow = lo.Uniq(counts)
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"no_ticks", &opts.NoTicks},
		{"no_labels", &opts.NoLabels},
		{"interactive", &opts.Interactive},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		if !q.Has(f.name) {
			continue
		}
		v := q.Get(f.name)
		if v == "" {
			*f.dst = true
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidOptions, "%s: %q is not a boolean", f.name, v)
		}
		*f.dst = b
	}
	return nil
}
