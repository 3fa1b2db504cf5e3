package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/service"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/response"
)

// CertificateHandler serves signed no-dues certificate downloads.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs a certificate handler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Download streams the certificate PDF referenced by a signed token.
func (h *CertificateHandler) Download(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "certificate token is required"))
		return
	}

	file, err := h.certificates.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat certificate"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "no-dues-certificate.pdf"))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
