// Package server serves the task collection API over a storage.Store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"tasklist/internal/storage"
)

// Store is the persistence the handlers need.
type Store interface {
	List(ctx context.Context) ([]storage.Task, error)
	Get(ctx context.Context, id int64) (storage.Task, error)
	Create(ctx context.Context, title string, status bool) (storage.Task, error)
	Update(ctx context.Context, t storage.Task) (storage.Task, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	mux    *http.ServeMux
	store  Store
	logger *log.Logger
}

func New(s Store, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Handler{
		mux:    http.NewServeMux(),
		store:  s,
		logger: logger,
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("GET /api/todos/{$}", h.list)
	h.mux.HandleFunc("POST /api/todos/create/{$}", h.create)
	h.mux.HandleFunc("GET /api/todos/{id}/{$}", h.detail)
	h.mux.HandleFunc("PUT /api/todos/{id}/update/{$}", h.update)
	h.mux.HandleFunc("PATCH /api/todos/{id}/update/{$}", h.update)
	h.mux.HandleFunc("DELETE /api/todos/{id}/delete/{$}", h.delete)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	h.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.storeError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	item, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// todoRequest accepts the full task representation. Read-only fields are
// accepted so a client can send back what it received.
type todoRequest struct {
	ID      json.RawMessage `json:"id"`
	Title   field[string]   `json:"title"`
	Status  field[bool]     `json:"status"`
	Created json.RawMessage `json:"created"`
	Updated json.RawMessage `json:"updated"`
}

// field tells an absent member from an explicit null.
type field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

const (
	msgRequired = "This field is required."
	msgNull     = "This field may not be null."
	msgBlank    = "This field may not be blank."
)

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}
	fieldErrs := map[string][]string{}
	title, msg := cleanTitle(req.Title)
	if msg != "" {
		fieldErrs["title"] = []string{msg}
	}
	if req.Status.Null {
		fieldErrs["status"] = []string{msgNull}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}
	item, err := h.store.Create(r.Context(), title, req.Status.Value)
	if err != nil {
		h.storeError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// update serves PUT and PATCH. PUT requires a title; PATCH changes only
// the fields present in the body. Null is rejected for both fields.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}
	item, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, "get", err)
		return
	}
	fieldErrs := map[string][]string{}
	partial := r.Method == http.MethodPatch
	if req.Title.Set || !partial {
		title, msg := cleanTitle(req.Title)
		if msg != "" {
			fieldErrs["title"] = []string{msg}
		}
		item.Title = title
	}
	switch {
	case req.Status.Null:
		fieldErrs["status"] = []string{msgNull}
	case req.Status.Set:
		item.Status = req.Status.Value
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}
	item, err = h.store.Update(r.Context(), item)
	if err != nil {
		h.storeError(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.storeError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeNotFound(w)
		return
	}
	h.logger.Error("store", "op", op, "err", err)
	writeError(w, http.StatusInternalServerError, "A server error occurred.")
}

// cleanTitle trims and checks a title. A non-empty message is the field
// error to report.
func cleanTitle(title field[string]) (string, string) {
	switch {
	case !title.Set:
		return "", msgRequired
	case title.Null:
		return "", msgNull
	}
	trimmed := strings.TrimSpace(title.Value)
	if trimmed == "" {
		return "", msgBlank
	}
	if utf8.RuneCountInString(trimmed) > storage.MaxTitleLength {
		return "", "Ensure this field has no more than " + strconv.Itoa(storage.MaxTitleLength) + " characters."
	}
	return trimmed, ""
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data")
	}
	return nil
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Not found.")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
