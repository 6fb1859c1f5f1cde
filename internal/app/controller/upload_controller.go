package controller

import (
	"errors"
	"net/http"

	"github.com/docecupcake/cupcake-backend/internal/app/service"
	apperrors "github.com/docecupcake/cupcake-backend/internal/errors"
	"github.com/docecupcake/cupcake-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	uploadService service.UploadService
}

func NewUploadController(uploadService service.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// UploadCupcakeImage accepts a multipart "image" field, resizes it and stores it
// POST /api/v1/uploads/cupcake-image
func (ctrl *UploadController) UploadCupcakeImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	header, err := c.FormFile("image")
	if err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"image": "is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err)
		apperrors.InternalError(c, "")
		return
	}
	defer file.Close()

	url, err := ctrl.uploadService.UploadCupcakeImage(c.Request.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge):
			apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "Image is too large")
		case errors.Is(err, service.ErrUnsupportedImage):
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG and PNG images are allowed")
		default:
			log.Error("Failed to upload cupcake image", err, map[string]interface{}{
				"filename": header.Filename,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Image upload failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// GeneratePresignedURL lets the client upload straight to the bucket
// POST /api/v1/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := ctrl.uploadService.PresignCupcakeImage(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) {
			log.Warn("Invalid content type", map[string]interface{}{
				"content_type": req.ContentType,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG and PNG images are allowed")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, resp)
}
