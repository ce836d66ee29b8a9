package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/pkg/config"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

// AttachmentKind distinguishes the two upload slots on an achievement.
type AttachmentKind string

const (
	AttachmentCertificate AttachmentKind = "certificate"
	AttachmentPhoto       AttachmentKind = "photo"
)

type attachmentStorage interface {
	Save(subfolder, originalName string, r io.Reader) (string, error)
}

// UploadService validates and stores achievement attachments. Certificates
// accept PDF and images; photos accept images only. Size is capped by config.
type UploadService struct {
	storage attachmentStorage
	audit   auditRecorder
	logger  *zap.Logger
	config  config.UploadsConfig
}

// NewUploadService constructs an UploadService.
func NewUploadService(storage attachmentStorage, audit auditRecorder, logger *zap.Logger, cfg config.UploadsConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{storage: storage, audit: audit, logger: logger, config: cfg}
}

// Store validates the incoming file and writes it to storage, returning the
// stored relative path.
func (s *UploadService) Store(ctx context.Context, p authz.Principal, kind AttachmentKind, filename, contentType string, size int64, r io.Reader) (string, error) {
	if !authz.Allowed(p.Role, authz.ActionUploadAttachment) {
		return "", appErrors.Clone(appErrors.ErrForbidden, "only students may upload attachments")
	}

	if size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty upload")
	}
	if size > s.config.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}

	var allowed []string
	switch kind {
	case AttachmentCertificate:
		allowed = s.config.CertificateMIMEs
	case AttachmentPhoto:
		allowed = s.config.PhotoMIMEs
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unknown attachment kind")
	}
	if !mimeAllowed(contentType, allowed) {
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported file type")
	}

	rel, err := s.storage.Save(string(kind)+"s", filename, io.LimitReader(r, s.config.MaxFileSizeBytes))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &p.UserID,
			Action:     models.AuditActionAttachmentUpload,
			Resource:   "attachment",
			ResourceID: &rel,
		}); err != nil {
			s.logger.Warn("failed to record upload audit log", zap.Error(err))
		}
	}

	return rel, nil
}

func mimeAllowed(contentType string, allowed []string) bool {
	for _, mime := range allowed {
		if contentType == mime {
			return true
		}
	}
	return false
}
