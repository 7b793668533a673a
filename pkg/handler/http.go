package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// HTTP exposes the dry-run evaluator and the in-app inbox over JSON.
type HTTP struct {
	engine *nudge.Engine
	inbox  service.InboxReader
}

func NewHTTP(engine *nudge.Engine, inbox service.InboxReader) *HTTP {
	return &HTTP{engine: engine, inbox: inbox}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Evaluate handles POST /v1/nudges/evaluate.
func (h *HTTP) Evaluate(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := evaluate(h.engine, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Inbox handles GET /v1/creators/{creatorID}/inbox?limit=N.
func (h *HTTP) Inbox(w http.ResponseWriter, r *http.Request) {
	creatorID := chi.URLParam(r, "creatorID")
	if creatorID == "" {
		writeError(w, http.StatusBadRequest, "creatorID is required")
		return
	}

	limit := int64(DefaultInboxLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := h.inbox.List(r.Context(), creatorID, limit)
	if err != nil {
		logrus.Errorf("failed to list inbox for creator %s: %v", creatorID, err)
		writeError(w, http.StatusInternalServerError, "failed to list inbox")
		return
	}
	if items == nil {
		items = []service.InboxItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"creatorId": creatorID,
		"items":     items,
	})
}
