package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/models"
)

const defaultAttemptLimit = 100

// AdminHandler handles operator-only endpoints
type AdminHandler struct {
	attemptRepo *repository.AttemptRepository
	profileRepo *repository.ProfileRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(attemptRepo *repository.AttemptRepository, profileRepo *repository.ProfileRepository) *AdminHandler {
	return &AdminHandler{
		attemptRepo: attemptRepo,
		profileRepo: profileRepo,
	}
}

// ListAttempts lists verification attempts for operators. The audit
// trail is never exposed to the verifying public.
// GET /v1/admin/attempts?method=...&success=...&limit=...
func (h *AdminHandler) ListAttempts(c *gin.Context) {
	method := c.Query("method")

	var success *bool
	if raw := c.Query("success"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_filter", "success must be true or false")
			return
		}
		success = &parsed
	}

	limit := defaultAttemptLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_filter", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	attempts, err := h.attemptRepo.List(c.Request.Context(), method, success, limit)
	if err != nil {
		log.Printf("Error listing verification attempts: %v", err)
		RespondError(c, http.StatusInternalServerError, "database_error", "Failed to list attempts")
		return
	}

	RespondSuccess(c, gin.H{
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// CreateProfileRequest represents a profile creation request
type CreateProfileRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	TeacherName string `json:"teacher_name"`
}

// CreateProfile registers a profile record used by the verification
// display-name fallback
// POST /v1/admin/profiles
func (h *AdminHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	profile := &models.Profile{
		ID:          uuid.NewString(),
		FullName:    req.FullName,
		TeacherName: req.TeacherName,
	}

	if err := h.profileRepo.Create(c.Request.Context(), profile); err != nil {
		log.Printf("Error creating profile: %v", err)
		RespondError(c, http.StatusInternalServerError, "database_error", "Failed to create profile")
		return
	}

	c.JSON(http.StatusCreated, profile)
}
