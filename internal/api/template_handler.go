package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stencilhq/stencil-api/internal/api/shared"
	"github.com/stencilhq/stencil-api/internal/domain"
	"github.com/stencilhq/stencil-api/internal/service"
)

// List pagination bounds
const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// CreateTemplateRequest represents the request body for creating a new template
type CreateTemplateRequest struct {
	Title  string  `json:"title"  validate:"required,min=1,max=200"`
	Body   *string `json:"body"`
	Status string  `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

// UpdateTemplateRequest represents the request body for a partial update.
// Absent fields are left untouched.
type UpdateTemplateRequest struct {
	Title  *string `json:"title"  validate:"omitempty,min=1,max=200"`
	Body   *string `json:"body"`
	Status *string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

// TemplateResponse represents the response data for a template item
type TemplateResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      *string   `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateListResponse represents the response for the list endpoint,
// including where the data came from and the pagination applied.
type TemplateListResponse struct {
	Source    string             `json:"source"`
	Templates []TemplateResponse `json:"templates"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// CreateTemplateResponse represents the response for a successful create
type CreateTemplateResponse struct {
	Message  string           `json:"message"`
	Template TemplateResponse `json:"template"`
}

// TemplateHandler handles template-related HTTP requests
type TemplateHandler struct {
	templateService service.TemplateService
	validator       *validator.Validate
	logger          *slog.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
// If logger is nil, a default logger will be used.
func NewTemplateHandler(templateService service.TemplateService, logger *slog.Logger) *TemplateHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TemplateHandler{
		templateService: templateService,
		validator:       validator.New(),
		logger:          logger.With(slog.String("component", "template_handler")),
	}
}

// ListTemplates handles GET /test/template requests
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	limit, offset, useCache, ok := parseListQuery(w, r)
	if !ok {
		return
	}

	result, err := h.templateService.List(r.Context(), limit, offset, useCache)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch templates")
		return
	}

	response := TemplateListResponse{
		Source:    result.Source,
		Templates: templatesToDTOResponses(result.Items),
		Total:     result.Total,
		Limit:     result.Limit,
		Offset:    result.Offset,
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// GetTemplate handles GET /test/template/{id} requests
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.templateService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, templateToDTOResponse(item))
}

// CreateTemplate handles POST /test/template requests
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	item, err := h.templateService.Create(
		r.Context(),
		req.Title,
		req.Body,
		domain.TemplateStatus(req.Status),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create template")
		return
	}

	response := CreateTemplateResponse{
		Message:  "Template created successfully",
		Template: templateToDTOResponse(item),
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, response)
}

// UpdateTemplate handles PUT /test/template/{id} requests
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateTemplateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	changes := domain.TemplateChanges{
		Title: req.Title,
		Body:  req.Body,
	}
	if req.Status != nil {
		status := domain.TemplateStatus(*req.Status)
		changes.Status = &status
	}

	item, err := h.templateService.Update(r.Context(), id, changes)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, templateToDTOResponse(item))
}

// DeleteTemplate handles DELETE /test/template/{id} requests
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.templateService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTemplatesByStatus handles GET /test/template/status/{status} requests
func (h *TemplateHandler) GetTemplatesByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.TemplateStatus(chi.URLParam(r, "status"))
	if !domain.IsValidTemplateStatus(status) {
		HandleAPIError(w, r, domain.ErrInvalidTemplateStatus, "")
		return
	}

	items, err := h.templateService.FindByStatus(
		r.Context(),
		status,
		defaultListLimit,
		0,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch templates by status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, templatesToDTOResponses(items))
}

// parseListQuery extracts and bounds-checks the list query parameters.
// On a malformed parameter it writes a 400 response and returns ok=false.
func parseListQuery(
	w http.ResponseWriter,
	r *http.Request,
) (limit, offset int, useCache, ok bool) {
	q := r.URL.Query()

	limit = defaultListLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Invalid limit: must be an integer between 1 and 500")
			return 0, 0, false, false
		}
		limit = parsed
	}

	offset = 0
	if raw := q.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Invalid offset: must be a non-negative integer")
			return 0, 0, false, false
		}
		offset = parsed
	}

	useCache = true
	if raw := q.Get("use_cache"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Invalid use_cache: must be a boolean")
			return 0, 0, false, false
		}
		useCache = parsed
	}

	return limit, offset, useCache, true
}

// templateToDTOResponse converts a domain.TemplateItem to a TemplateResponse
func templateToDTOResponse(item *domain.TemplateItem) TemplateResponse {
	return TemplateResponse{
		ID:        item.ID.String(),
		Title:     item.Title,
		Body:      item.Body,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// templatesToDTOResponses converts a slice of domain items, returning an
// empty slice (not nil) so the JSON encodes as [].
func templatesToDTOResponses(items []*domain.TemplateItem) []TemplateResponse {
	responses := make([]TemplateResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, templateToDTOResponse(item))
	}
	return responses
}
