package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/export"
	"github.com/goliatone/go-invoicedoc/pkg/notify"
	"github.com/goliatone/go-invoicedoc/pkg/render"
	"github.com/goliatone/go-invoicedoc/pkg/templates"
)

type templateSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Colors      templates.Colors `json:"colors"`
	Variants    []string         `json:"variants,omitempty"`
}

type batchItem struct {
	Index  int    `json:"index"`
	Number string `json:"number"`
	HTML   string `json:"html,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	reg := s.engine.Templates()
	configs := reg.List()
	out := make([]templateSummary, 0, len(configs))
	for _, cfg := range configs {
		summary := templateSummary{
			ID:          cfg.ID,
			Name:        cfg.Name,
			Description: cfg.Description,
			Colors:      cfg.Colors(),
		}
		if manifest, ok := reg.Manifest(cfg.ID); ok {
			for variant := range manifest.Variants {
				summary.Variants = append(summary.Variants, variant)
			}
			sort.Strings(summary.Variants)
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.contract)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	record, kind, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	s.warnOnDrift(record)

	html, err := s.engine.Render(r.Context(), record, kind, s.renderOptions(r))
	if err != nil {
		writeFailure(w, "render failed", err, s.log)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", PreviewCSP)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	record, kind, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	if s.exporter == nil {
		WriteError(w, http.StatusServiceUnavailable, "pdf export disabled", []string{export.ErrBrowserUnavailable.Error()}, s.log)
		return
	}

	html, err := s.engine.Render(r.Context(), record, kind, s.renderOptions(r))
	if err != nil {
		writeFailure(w, "render failed", err, s.log)
		return
	}
	pdf, err := s.exporter.Export(r.Context(), html)
	if err != nil {
		writeFailure(w, "pdf export failed", err, s.log)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(kind, record.Number)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	record, kind, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	opts := s.renderOptions(r)
	msg, err := s.notifier.Compose(r.Context(), record, kind, notify.Options{
		Template: opts.Template,
		Locale:   opts.Locale,
		Variant:  opts.Variant,
		Link:     r.URL.Query().Get("link"),
	})
	if err != nil {
		writeFailure(w, "notification failed", err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kind(w, r)
	if !ok {
		return
	}
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	records, decodeErrs, err := document.DecodeEach(data, "request body")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid batch payload", []string{err.Error()}, s.log)
		return
	}

	opts := s.renderOptions(r)
	jobs := make([]render.BatchJob, 0, len(records))
	positions := make([]int, 0, len(records))
	for i, record := range records {
		if decodeErrs[i] != nil {
			continue
		}
		jobs = append(jobs, render.BatchJob{Record: record, Kind: kind, Options: opts})
		positions = append(positions, i)
	}

	out := make([]batchItem, len(records))
	for i, err := range decodeErrs {
		out[i] = batchItem{Index: i, Number: records[i].Number}
		if err != nil {
			out[i].Error = err.Error()
		}
	}
	results := s.engine.RenderBatch(r.Context(), jobs, s.opts.BatchLimit)
	for _, result := range results {
		item := &out[positions[result.Index]]
		if result.Err != nil {
			item.Error = result.Err.Error()
			continue
		}
		item.HTML = result.HTML
	}

	if failed := len(render.Failed(results)) + len(records) - len(jobs); failed > 0 {
		s.log.Warn("batch rendered with failures", "kind", kind, "records", len(records), "failed", failed)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) kind(w http.ResponseWriter, r *http.Request) (document.Kind, bool) {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "unknown document kind", []string{err.Error()}, s.log)
		return "", false
	}
	return kind, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", []string{err.Error()}, s.log)
			return nil, false
		}
		WriteError(w, http.StatusBadRequest, "request body unreadable", []string{err.Error()}, s.log)
		return nil, false
	}
	return data, true
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (document.Record, document.Kind, bool) {
	kind, ok := s.kind(w, r)
	if !ok {
		return document.Record{}, "", false
	}
	data, ok := s.readBody(w, r)
	if !ok {
		return document.Record{}, "", false
	}
	record, err := document.Decode(data, "request body")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid record", []string{err.Error()}, s.log)
		return document.Record{}, "", false
	}
	return record, kind, true
}

func (s *Server) renderOptions(r *http.Request) render.Options {
	query := r.URL.Query()
	locale := strings.TrimSpace(query.Get("locale"))
	if locale == "" {
		locale = s.opts.DefaultLocale
	}
	return render.Options{
		Template: strings.TrimSpace(query.Get("template")),
		Locale:   locale,
		Variant:  strings.TrimSpace(query.Get("variant")),
	}
}

func (s *Server) warnOnDrift(record document.Record) {
	if drift, ok := render.AmountDrift(record); ok {
		s.log.Warn("declared amount differs from line items",
			"number", record.Number,
			"declared", drift.Declared,
			"computed", drift.Computed,
			"difference", drift.Difference.String(),
		)
	}
}
