package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusrec/achievement-api/internal/authz"
	"github.com/campusrec/achievement-api/internal/models"
	"github.com/campusrec/achievement-api/pkg/config"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type fakeStorage struct {
	subfolders []string
	names      []string
	failErr    error
}

func (f *fakeStorage) Save(subfolder, originalName string, r io.Reader) (string, error) {
	if f.failErr != nil {
		return "", f.failErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.subfolders = append(f.subfolders, subfolder)
	f.names = append(f.names, originalName)
	return subfolder + "/" + originalName, nil
}

func uploadConfig() config.UploadsConfig {
	return config.UploadsConfig{
		MaxFileSizeBytes: 1024,
		CertificateMIMEs: []string{"application/pdf", "image/jpeg", "image/png"},
		PhotoMIMEs:       []string{"image/jpeg", "image/png"},
	}
}

func TestUploadStoreCertificate(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewUploadService(storage, nil, nil, uploadConfig())

	student := authz.Principal{UserID: "s1", Role: models.RoleStudent}
	path, err := svc.Store(context.Background(), student, AttachmentCertificate, "cert.pdf", "application/pdf", 42, strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, "certificates/cert.pdf", path)
	assert.Equal(t, []string{"certificates"}, storage.subfolders)
}

func TestUploadStoreRejectsNonStudents(t *testing.T) {
	svc := NewUploadService(&fakeStorage{}, nil, nil, uploadConfig())

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleHOD, models.RoleClassAdvisor} {
		_, err := svc.Store(context.Background(), authz.Principal{UserID: "u1", Role: role}, AttachmentPhoto, "p.png", "image/png", 10, strings.NewReader("x"))
		assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err), "role=%s", role)
	}
}

func TestUploadStoreValidatesSizeAndType(t *testing.T) {
	svc := NewUploadService(&fakeStorage{}, nil, nil, uploadConfig())
	student := authz.Principal{UserID: "s1", Role: models.RoleStudent}

	_, err := svc.Store(context.Background(), student, AttachmentPhoto, "p.png", "image/png", 0, strings.NewReader(""))
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	_, err = svc.Store(context.Background(), student, AttachmentPhoto, "p.png", "image/png", 2048, strings.NewReader("big"))
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	// photos do not accept PDFs even though certificates do
	_, err = svc.Store(context.Background(), student, AttachmentPhoto, "p.pdf", "application/pdf", 10, strings.NewReader("x"))
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	_, err = svc.Store(context.Background(), student, AttachmentKind("banner"), "p.png", "image/png", 10, strings.NewReader("x"))
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestUploadStoreRecordsAudit(t *testing.T) {
	storage := &fakeStorage{}
	audit := &mockAchievementUsers{}
	svc := NewUploadService(storage, audit, nil, uploadConfig())

	_, err := svc.Store(context.Background(), authz.Principal{UserID: "s1", Role: models.RoleStudent}, AttachmentPhoto, "p.png", "image/png", 10, strings.NewReader("png bytes"))
	require.NoError(t, err)

	require.Len(t, audit.auditLogs, 1)
	assert.Equal(t, models.AuditActionAttachmentUpload, audit.auditLogs[0].Action)
}
