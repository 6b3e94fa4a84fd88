package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/issue"
	"github.com/sanadhub/ijazahserver/internal/models"
	"github.com/sanadhub/ijazahserver/internal/serial"
)

// CertHandler handles certificate issuance and operator lookups
type CertHandler struct {
	issuer   *issue.Service
	certRepo *repository.CertificateRepository
}

// NewCertHandler creates a new certificate handler
func NewCertHandler(issuer *issue.Service, certRepo *repository.CertificateRepository) *CertHandler {
	return &CertHandler{
		issuer:   issuer,
		certRepo: certRepo,
	}
}

// IssueResponse represents a certificate issue response
type IssueResponse struct {
	ID                string `json:"id"`
	CertificateNumber string `json:"certificate_number"`
	Fingerprint       string `json:"fingerprint"`
	IssueDate         string `json:"issue_date"`
	Status            string `json:"status"`
}

// IssueCertificate issues a new certificate from a draft
// POST /v1/certificates
func (h *CertHandler) IssueCertificate(c *gin.Context) {
	var draft models.CertificateDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	cert, err := h.issuer.Issue(c.Request.Context(), &draft)
	if err != nil {
		switch {
		case errors.Is(err, issue.ErrInvalidDraft):
			RespondError(c, http.StatusBadRequest, "invalid_draft", err.Error())
		case errors.Is(err, issue.ErrNumberTaken):
			// Retryable for sequential allocation; for derived serials
			// there is no defined recovery path.
			RespondError(c, http.StatusConflict, "number_conflict", err.Error())
		default:
			log.Printf("Error issuing certificate: %v", err)
			RespondError(c, http.StatusInternalServerError, "internal_error", "Failed to issue certificate")
		}
		return
	}

	c.JSON(http.StatusCreated, IssueResponse{
		ID:                cert.ID,
		CertificateNumber: cert.CertificateNumber,
		Fingerprint:       cert.Fingerprint,
		IssueDate:         cert.IssueDate,
		Status:            cert.Status,
	})
}

// GetCertificate returns the full certificate record
// GET /v1/admin/certificates/:number
func (h *CertHandler) GetCertificate(c *gin.Context) {
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

	RespondSuccess(c, cert)
}
