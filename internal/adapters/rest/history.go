package rest

import (
	"net/http"
	"strconv"
	"strings"
)

var historyMessages = upstreamMessages{
	notFound: "mood report not found",
	failed:   "Unable to load mood history",
}

// History handles GET /api/history?limit=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", codeInvalidInput)
			return
		}
		limit = n
	}

	reports, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err, historyMessages)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// Report handles GET /api/history/{id}
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "report id is required", codeInvalidInput)
		return
	}

	report, err := h.svc.Report(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, historyMessages)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
