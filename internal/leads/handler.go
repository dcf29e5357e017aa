package leads

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geovantage/lead-intake/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler handles HTTP requests for the contact form
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// SubmitResponse is the JSON body returned for every contact form post.
type SubmitResponse struct {
	Status  string            `json:"status"`
	ID      string            `json:"id,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SubmitContact handles POST /leads/contact requests
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var values FormValues

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		h.logger.Warn("failed to decode contact form", "error", err)
		writeJSON(w, http.StatusBadRequest, SubmitResponse{Status: "error", Message: "Invalid request body"})
		return
	}

	result, err := h.svc.Process(r.Context(), ClientKey(r), values)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitResponse{Status: "success", ID: result.ID})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		verrs     ValidationErrors
		rateErr   *RateLimitError
		transport *TransportError
	)
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, SubmitResponse{
			Status:  "error",
			Message: "Please correct the highlighted fields",
			Errors:  verrs,
		})
	case errors.As(err, &rateErr):
		seconds := int(rateErr.RetryAfter.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSON(w, http.StatusTooManyRequests, SubmitResponse{
			Status:  "error",
			Message: "Please wait a moment before submitting again",
		})
	case errors.Is(err, ErrSubmissionInProgress):
		writeJSON(w, http.StatusConflict, SubmitResponse{
			Status:  "error",
			Message: "Your previous submission is still being sent",
		})
	case errors.As(err, &transport):
		writeJSON(w, http.StatusBadGateway, SubmitResponse{
			Status:  "error",
			Message: "We couldn't send your request. Please try again.",
		})
	default:
		h.logger.Error("unexpected contact form error", "error", err)
		writeJSON(w, http.StatusInternalServerError, SubmitResponse{
			Status:  "error",
			Message: "Something went wrong. Please try again.",
		})
	}
}

// GetOptions handles GET /leads/options requests
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Options())
}

// ClientKey identifies the submitting browser for the cooldown.
// It is the peer address, or the proxy-reported client when chi's RealIP runs.
func ClientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
