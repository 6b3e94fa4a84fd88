package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/pattern"
	"github.com/sanadhub/ijazahserver/internal/serial"
)

// PatternHandler renders security watermark patterns
type PatternHandler struct {
	certRepo       *repository.CertificateRepository
	defaultPattern pattern.Config
}

// NewPatternHandler creates a new pattern handler
func NewPatternHandler(certRepo *repository.CertificateRepository, defaultPattern pattern.Config) *PatternHandler {
	return &PatternHandler{
		certRepo:       certRepo,
		defaultPattern: defaultPattern,
	}
}

// CertificatePattern renders the watermark layer for a certificate
// from its stored configuration
// GET /v1/certificates/:number/pattern
func (h *PatternHandler) CertificatePattern(c *gin.Context) {
	number := serial.Normalize(c.Param("number"))
	if number == "" {
		RespondError(c, http.StatusBadRequest, "invalid_number", "Certificate number is required")
		return
	}

	cert, err := h.certRepo.GetByNumber(c.Request.Context(), number)
	if errors.Is(err, repository.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "not_found", "Certificate not found")
		return
	}
	if err != nil {
		log.Printf("Error fetching certificate %s: %v", number, err)
		RespondError(c, http.StatusInternalServerError, "database_error", "Failed to fetch certificate")
		return
	}

	svg, err := pattern.Render(h.patternFor(cert))
	if err != nil {
		log.Printf("Error rendering pattern for %s: %v", number, err)
		RespondError(c, http.StatusInternalServerError, "internal_error", "Failed to render pattern")
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// PreviewPattern renders an arbitrary configuration for the
// certificate designer
// GET /v1/admin/patterns/preview?family=...&color=...&opacity=...
func (h *PatternHandler) PreviewPattern(c *gin.Context) {
	cfg := h.defaultPattern
	if family := c.Query("family"); family != "" {
		cfg.Family = family
	}
	if color := c.Query("color"); color != "" {
		cfg.PrimaryColor = color
	}
	if raw := c.Query("opacity"); raw != "" {
		opacity, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_opacity", "Opacity must be a number between 0 and 1")
			return
		}
		cfg.Opacity = opacity
	}

	svg, err := pattern.Render(cfg)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_pattern", err.Error())
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// patternFor reads a certificate's stored watermark configuration,
// falling back to the issuer default for records issued before the
// configuration was persisted.
func (h *PatternHandler) patternFor(cert *models.Certificate) pattern.Config {
	cfg := h.defaultPattern

	if family := cert.Metadata[models.MetaPatternFamily]; family != "" {
		cfg.Family = family
	}
	if color := cert.Metadata[models.MetaPatternColor]; color != "" {
		cfg.PrimaryColor = color
	}
	if raw := cert.Metadata[models.MetaPatternOpacity]; raw != "" {
		if opacity, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Opacity = opacity
		}
	}

	return cfg
}
