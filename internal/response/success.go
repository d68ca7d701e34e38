package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func (h *responseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := SuccessEnvelope{
		Success: true,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode success response", "error", err)
	}
}

// WriteAttachment sends body as a downloadable JSON file.
func (h *responseHandler) WriteAttachment(w http.ResponseWriter, r *http.Request, filename string, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(body); err != nil {
		logger.FromContext(r.Context()).Error("failed to write attachment", "error", err, "filename", filename)
	}
}
