package ask

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Answerer is implemented by the retrieval service.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type Handler struct {
	answerer Answerer
}

func NewHandler(answerer Answerer) *Handler {
	return &Handler{answerer: answerer}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	w.Header().Set("Content-Type", "application/json")

	if req.Question == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, map[string]interface{}{"error": "question is empty"})
		return
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to answer question", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, map[string]interface{}{"error": "failed to answer question"})
		return
	}

	h.encode(w, map[string]interface{}{"answer": answer})
}

func (h *Handler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
