package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/export"
	"github.com/Jayasrip08/apec-digital-no-dues/pkg/storage"
)

// CertificateService issues no-dues certificates for students whose dues are
// fully cleared and serves them through signed download links.
type CertificateService struct {
	renderer *export.CertificateRenderer
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	baseURL  string
	logger   *zap.Logger
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(
	renderer *export.CertificateRenderer,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	baseURL string,
	logger *zap.Logger,
) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		renderer: renderer,
		store:    store,
		signer:   signer,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// IssueIfCleared renders and stores a certificate when the student owes
// nothing, returning a signed download URL. A student with outstanding dues
// gets an empty URL and no error.
func (s *CertificateService) IssueIfCleared(ctx context.Context, student *models.Student) (string, error) {
	if s == nil || student == nil || !student.DuesCleared() {
		return "", nil
	}

	certID := uuid.NewString()
	pdf, err := s.renderer.Render(export.Certificate{
		SerialNumber: certID,
		StudentName:  student.Name,
		Batch:        student.Batch,
		Dept:         student.Dept,
		AcademicYear: student.Batch,
		TotalFee:     student.TotalFee,
		IssuedAt:     time.Now().UTC(),
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	relPath := fmt.Sprintf("%s/%s.pdf", student.Batch, certID)
	if _, err := s.store.Save(relPath, pdf); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}

	token, expiresAt, err := s.signer.Generate(certID, relPath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign certificate link")
	}

	s.logger.Info("no-dues certificate issued",
		zap.String("student_id", student.ID),
		zap.String("certificate_id", certID),
		zap.Time("link_expires_at", expiresAt))
	return fmt.Sprintf("%s/certificates/%s", s.baseURL, token), nil
}

// Open validates a signed token and returns a handle on the stored PDF.
func (s *CertificateService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired certificate link")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	return file, nil
}
