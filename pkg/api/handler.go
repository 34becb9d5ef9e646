// Package api exposes the record wizards as a small JSON API on net/http.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/poweradmin/go-recordwizard/pkg/record"
	"github.com/poweradmin/go-recordwizard/pkg/registry"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

// maxBodyBytes bounds request payloads. DKIM keys are the largest input.
const maxBodyBytes = 1 << 20

// Registry is the subset of *registry.Registry the handlers need.
type Registry interface {
	Metadata() []wizard.Metadata
	Engine(wizardType string) (wizard.Engine, error)
}

// HTTPError lets a guard choose the response status.
type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// ParseRequest is the body of the parse endpoint.
type ParseRequest struct {
	Content  string `json:"content"`
	Name     string `json:"name"`
	TTL      int    `json:"ttl"`
	Priority int    `json:"priority"`
}

type previewResponse struct {
	Preview string `json:"preview"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the wizard endpoints.
type Handler struct {
	registry Registry
	opts     Options
	mux      *http.ServeMux
}

// NewHandler builds the API handler. Routes are relative to the handler;
// mount it with RegisterRoutes to serve it under a base path.
func NewHandler(reg Registry, fns ...OptionFn) *Handler {
	h := &Handler{
		registry: reg,
		opts:     NewOptions(fns...),
		mux:      http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /wizards", h.list)
	h.mux.HandleFunc("GET /wizards/{type}/schema", h.schema)
	h.mux.HandleFunc("POST /wizards/{type}/validate", h.validate)
	h.mux.HandleFunc("POST /wizards/{type}/preview", h.preview)
	h.mux.HandleFunc("POST /wizards/{type}/generate", h.generate)
	h.mux.HandleFunc("POST /wizards/{type}/parse", h.parse)
	if h.opts.OpenAPI != nil {
		h.mux.HandleFunc("GET /openapi.json", h.openapi)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			code := http.StatusForbidden
			var httpErr HTTPError
			if errors.As(err, &httpErr) {
				code = httpErr.StatusCode()
			}
			writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
			return
		}
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Metadata())
}

func (h *Handler) engine(w http.ResponseWriter, r *http.Request) (wizard.Engine, bool) {
	engine, err := h.registry.Engine(r.PathValue("type"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return engine, true
}

func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.FormSchema())
}

func (h *Handler) formData(w http.ResponseWriter, r *http.Request) (wizard.Engine, record.FormData, bool) {
	engine, ok := h.engine(w, r)
	if !ok {
		return nil, nil, false
	}
	var data record.FormData
	if err := decodeJSON(r, &data); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, nil, false
	}
	if data == nil {
		data = record.FormData{}
	}
	return engine, data, true
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	engine, data, ok := h.formData(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.Validate(data))
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	engine, data, ok := h.formData(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Preview: engine.Preview(data)})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	engine, data, ok := h.formData(w, r)
	if !ok {
		return
	}
	if result := engine.Validate(data); !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	rec, err := engine.GenerateRecord(data)
	if err != nil {
		h.logf("api: generate %s: %v", engine.Type(), err)
		writeJSON(w, http.StatusUnprocessableEntity, record.NewValidationResult([]string{err.Error()}, nil))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}
	var req ParseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	data := engine.ParseExistingRecord(req.Content, record.Meta{
		Name:     req.Name,
		TTL:      req.TTL,
		Priority: req.Priority,
	})
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) openapi(w http.ResponseWriter, r *http.Request) {
	payload, err := h.opts.OpenAPI(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// StatusFor maps registry errors onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotEnabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, registry.ErrTypeNotAvailable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		h.logf("api: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (h *Handler) logf(format string, args ...any) {
	if h.opts.Logger != nil {
		h.opts.Logger.Printf(format, args...)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("api: request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("api: request body is required")
		}
		return fmt.Errorf("api: invalid JSON payload: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(payload); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}
