package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/algonet/backend/internal/httputil"
	"github.com/algonet/backend/internal/service"
)

const maxScriptUploadBytes = 1 << 20

// AlgoHandler runs user-supplied coloring scripts against a graph.
type AlgoHandler struct {
	service *service.AlgoService
	logger  *slog.Logger
}

// NewAlgoHandler creates a new custom-algorithm HTTP handler.
func NewAlgoHandler(svc *service.AlgoService, logger *slog.Logger) *AlgoHandler {
	return &AlgoHandler{service: svc, logger: logger}
}

// Run handles POST /api/customAlgo. The request is multipart form data
// with a "file" part holding the script and "Vertices"/"Edges" fields
// holding JSON-encoded graph data.
func (h *AlgoHandler) Run(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxScriptUploadBytes); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	defer file.Close()

	script, err := io.ReadAll(io.LimitReader(file, maxScriptUploadBytes+1))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	colors, err := h.service.Run(r.Context(), script, r.FormValue("Vertices"), r.FormValue("Edges"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, colors)
}
