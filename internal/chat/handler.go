package chat

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	responder *Responder
}

func NewHandler(logger *slog.Logger, responder *Responder) *Handler {
	return &Handler{logger: logger, responder: responder}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/chat", h.Ask)
	r.Post("/chat/download", h.Download)
}

type askRequest struct {
	Message string `json:"message"`
}

// Ask answers one chat message with a text response plus result records.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "message is required")
		return
	}

	resp, err := h.responder.Respond(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("chat respond failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type downloadRequest struct {
	Query string `json:"query"`
	Data  []Row  `json:"data"`
}

// Download turns the records of a previous chat answer into a CSV file.
// The client posts back the data it was shown so no query re-runs here.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if len(req.Data) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "no data to download")
		return
	}

	headers := make([]string, 0, len(req.Data[0]))
	for key := range req.Data[0] {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	filename := fmt.Sprintf("query_%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		h.logger.Error("chat csv write failed", "error", err)
		return
	}
	for _, row := range req.Data {
		record := make([]string, len(headers))
		for i, key := range headers {
			if value, ok := row[key]; ok && value != nil {
				record[i] = fmt.Sprint(value)
			}
		}
		if err := writer.Write(record); err != nil {
			h.logger.Error("chat csv write failed", "error", err)
			return
		}
	}
	writer.Flush()
}
