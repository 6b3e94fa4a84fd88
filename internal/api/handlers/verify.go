package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/serial"
	"github.com/sanadhub/ijazahserver/internal/verify"
	"github.com/sanadhub/ijazahserver/pkg/qrutil"
)

const qrImageSize = 256

// VerifyHandler handles public certificate verification
type VerifyHandler struct {
	service       *verify.Service
	publicBaseURL string
}

// NewVerifyHandler creates a new verify handler
func NewVerifyHandler(service *verify.Service, publicBaseURL string) *VerifyHandler {
	return &VerifyHandler{
		service:       service,
		publicBaseURL: publicBaseURL,
	}
}

// VerifyCertificate verifies a submitted certificate number
// GET /v1/verify?number=...
func (h *VerifyHandler) VerifyCertificate(c *gin.Context) {
	method := models.MethodNumber
	if c.Query("method") == models.MethodQR {
		method = models.MethodQR
	}

	result, err := h.service.Verify(c.Request.Context(), verify.Request{
		Number:           c.Query("number"),
		Method:           method,
		ActorFingerprint: verify.ActorFingerprint(GetClientIP(c), c.GetHeader("User-Agent")),
	})
	if err != nil {
		switch {
		case errors.Is(err, verify.ErrEmptyNumber):
			RespondError(c, http.StatusBadRequest, "invalid_number", "Certificate number is required")
		case errors.Is(err, verify.ErrNotFound):
			RespondError(c, http.StatusNotFound, "not_found", "Certificate not found")
		case errors.Is(err, verify.ErrTampered):
			RespondError(c, http.StatusConflict, "integrity_failure", "Certificate record failed its integrity check")
		default:
			log.Printf("Error verifying certificate: %v", err)
			RespondError(c, http.StatusServiceUnavailable, "store_error", "Verification is temporarily unavailable")
		}
		return
	}

	RespondSuccess(c, result)
}

// VerificationQR renders a QR code embedding the public verification
// URL for a certificate number. Scanning it routes through the same
// verification call as the search form.
// GET /v1/verify/qr/:number
func (h *VerifyHandler) VerificationQR(c *gin.Context) {
	number := serial.Normalize(c.Param("number"))
	if number == "" {
		RespondError(c, http.StatusBadRequest, "invalid_number", "Certificate number is required")
		return
	}

	target := fmt.Sprintf("%s/v1/verify?number=%s&method=%s",
		h.publicBaseURL, url.QueryEscape(number), models.MethodQR)

	image, err := qrutil.EncodePNG(target, qrImageSize)
	if err != nil {
		log.Printf("Error rendering QR code for %s: %v", number, err)
		RespondError(c, http.StatusInternalServerError, "internal_error", "Failed to render QR code")
		return
	}

	c.Data(http.StatusOK, "image/png", image)
}
