package control

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/spider/internal/auth"
	"github.com/inamate/spider/internal/engine"
)

const maxIntentSize = 4 << 10

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.State(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Joints(w http.ResponseWriter, r *http.Request) {
	joints, err := h.service.Joints(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joints)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIntentSize)

	var in engine.Intent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	st, err := h.service.Apply(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if c, ok := auth.ControllerFromContext(r.Context()); ok {
		slog.Debug("intent applied", "controller", c.ID, "kind", in.Kind, "version", st.Version)
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Poses(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Poses(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "yaml" || strings.Contains(r.Header.Get("Accept"), "yaml") {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := doc.Encode(w); err != nil {
			slog.Error("encode poses", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) ApplyPose(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	st, err := h.service.ApplyPose(r.Context(), name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrUnavailable):
		slog.Warn("engine unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "engine unavailable"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
