package settlement

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/parser"
	"github.com/fkhayef/receiptsplit/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)

	return r
}

// Create handles POST /settlements
// @Summary      Settle a receipt file
// @Description  Parse a receipt document (text, YAML or JSON by Content-Type), compute every participant's balance and the transactions that settle them. Nothing is stored.
// @Tags         settlements
// @Accept       plain,json,x-yaml
// @Produce      json
// @Security     BearerAuth
// @Param        request body parser.DocumentDTO true "Receipt document"
// @Success      201 {object} response.APIResponse{data=ResultResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      413 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	format := parser.FormatFromContentType(r.Header.Get("Content-Type"))

	doc, err := parser.Parse(r.Body, format)
	if err != nil {
		h.fail(w, "parse", format, err)
		return
	}

	result, err := h.service.Run(doc)
	if err != nil {
		h.fail(w, "run", format, err)
		return
	}

	response.JSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) fail(w http.ResponseWriter, stage string, format parser.Format, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.RequestTooLarge(w, "Request body too large")
		return
	}

	if _, ok := apperr.KindOf(err); ok {
		h.logger.Warn("receipt document rejected", "stage", stage, "format", format, "error", err)
		response.DomainError(w, err)
		return
	}

	h.logger.Warn("unreadable request body", "stage", stage, "format", format, "error", err)
	response.BadRequest(w, "Invalid request body")
}
