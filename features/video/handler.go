package video

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create accepts a video URL and enqueues it for ingestion. The response
// shape is fixed: {"error": null} on success, {"error": "<message>"} on
// failure.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	// A malformed body and a missing url get the same answer.
	_ = json.NewDecoder(r.Body).Decode(&req)

	w.Header().Set("Content-Type", "application/json")

	if req.URL == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, map[string]interface{}{"error": "url is empty"})
		return
	}

	if err := h.service.Submit(r.Context(), req.URL); err != nil {
		slog.ErrorContext(r.Context(), "failed to submit video", "error", err, "url", req.URL)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, map[string]interface{}{"error": "failed to enqueue video"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.encode(w, map[string]interface{}{"error": nil})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	w.Header().Set("Content-Type", "application/json")

	if url == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, map[string]interface{}{"error": "url is empty"})
		return
	}

	count, err := h.service.ChunkCount(r.Context(), url)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count chunks", "error", err, "url", url)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, map[string]interface{}{"error": "failed to query index"})
		return
	}

	h.encode(w, map[string]interface{}{
		"data": map[string]interface{}{"url": url, "chunks": count},
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	w.Header().Set("Content-Type", "application/json")

	if url == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, map[string]interface{}{"error": "url is empty"})
		return
	}

	if err := h.service.Delete(r.Context(), url); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete video", "error", err, "url", url)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, map[string]interface{}{"error": "failed to delete video"})
		return
	}

	h.encode(w, map[string]interface{}{"error": nil})
}

func (h *Handler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
