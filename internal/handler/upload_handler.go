package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusrec/achievement-api/internal/service"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
	"github.com/campusrec/achievement-api/pkg/response"
)

// UploadHandler wires attachment upload endpoints to the upload service.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler creates a new handler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// UploadCertificate godoc
// @Summary Upload an achievement certificate
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Certificate file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /uploads/certificate [post]
func (h *UploadHandler) UploadCertificate(c *gin.Context) {
	h.upload(c, service.AttachmentCertificate)
}

// UploadPhoto godoc
// @Summary Upload an achievement photo
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /uploads/photo [post]
func (h *UploadHandler) UploadPhoto(c *gin.Context) {
	h.upload(c, service.AttachmentPhoto)
}

func (h *UploadHandler) upload(c *gin.Context, kind service.AttachmentKind) {
	p, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	path, err := h.service.Store(c.Request.Context(), p, kind,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"path": path})
}
