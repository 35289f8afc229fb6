package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/pkg/response"
)

// Handler handles HTTP requests for receipt operations
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new receipt handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for receipt endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)

	return r
}

// Create handles POST /receipts
// @Summary      Split a single receipt
// @Description  Allocate every item of one receipt among the roster and apply the tax/tip multiplier. Nothing is stored.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateReceiptRequest true "Roster and receipt"
// @Success      201 {object} response.APIResponse{data=ReceiptResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      413 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /receipts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReceiptRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestTooLarge(w, "Request body too large")
			return
		}
		response.BadRequest(w, "Invalid request body")
		return
	}

	roster, err := group.NewRoster(req.Names)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	desc, err := req.Receipt.ToDescriptor(roster, "receipt")
	if err != nil {
		response.DomainError(w, err)
		return
	}

	rcpt, err := h.service.Build(roster, desc)
	if err != nil {
		h.logger.Warn("receipt rejected", "receipt", req.Receipt.Name, "error", err)
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, rcpt.ToResponse(roster))
}
