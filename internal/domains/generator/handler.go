package generator

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/internal/shared/response"
)

// Handler - HTTP handler for the generation endpoint
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Generate - POST /v1/generate (authenticated)
// Body: {"category": "tech", "title": "optional topic"}
func (h *Handler) Generate(c *gin.Context) {
	if _, err := identity.FromContext(c); err != nil {
		response.Unauthorized(c, "you must be logged in to generate content")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid input", err)
		return
	}

	text, err := h.service.Generate(c.Request.Context(), req.Category, req.Title)
	if err != nil {
		// Recoverable: the client keeps whatever the user already typed.
		response.BadGateway(c, "GENERATION_FAILED", "failed to generate content, please try again")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"content": text})
}
