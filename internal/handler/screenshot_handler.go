package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"proto-review-api/internal/client"
	"proto-review-api/internal/dto"
	"proto-review-api/internal/middleware"
	"proto-review-api/internal/policy"
	"proto-review-api/internal/repository"
	"proto-review-api/internal/response"
)

// ScreenshotHandler issues presigned upload URLs for comment screenshots
type ScreenshotHandler struct {
	commentRepo repository.CommentRepository
	s3Client    client.S3ClientInterface
	logger      *zap.Logger
}

// NewScreenshotHandler creates a new ScreenshotHandler
func NewScreenshotHandler(commentRepo repository.CommentRepository, s3Client client.S3ClientInterface, logger *zap.Logger) *ScreenshotHandler {
	return &ScreenshotHandler{
		commentRepo: commentRepo,
		s3Client:    s3Client,
		logger:      logger,
	}
}

// CreateScreenshotURL godoc
// @Summary      Request a screenshot upload URL
// @Description  Generates a presigned S3 PUT URL for attaching a screenshot to a comment and records the file key on the comment.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id      path  string                         true "Comment ID"
// @Param        request body  dto.CreateScreenshotURLRequest true "File name and content type"
// @Success      200 {object} response.SuccessResponse{data=dto.ScreenshotURLResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request"
// @Failure      401 {object} response.ErrorResponse "Unauthenticated"
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Failure      500 {object} response.ErrorResponse "Store error"
// @Security     BearerAuth
// @Router       /comments/{id}/screenshot-url [post]
func (h *ScreenshotHandler) CreateScreenshotURL(c *gin.Context) {
	if h.s3Client == nil {
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeStoreUnavailable, "Screenshot storage is not configured")
		return
	}

	ident := middleware.GetIdentity(c)
	if !policy.IsAuthenticated(ident) {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid comment ID")
		return
	}

	var req dto.CreateScreenshotURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	comment, err := h.commentRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Comment not found")
			return
		}
		handleServiceError(c, err)
		return
	}

	uploadURL, fileKey, err := h.s3Client.GeneratePresignedURL(c.Request.Context(), comment.PageID, req.FileName, req.ContentType)
	if err != nil {
		h.logger.Error("Failed to generate presigned URL",
			zap.String("comment_id", id.String()),
			zap.Error(err),
		)
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to generate upload URL")
		return
	}

	// Replacing an existing screenshot orphans the old object; the purge
	// job only cleans keys referenced by deleted comments, so remove the
	// old one here.
	if comment.ScreenshotKey != "" && comment.ScreenshotKey != fileKey {
		if err := h.s3Client.DeleteFile(c.Request.Context(), comment.ScreenshotKey); err != nil {
			h.logger.Warn("Failed to delete previous screenshot",
				zap.String("key", comment.ScreenshotKey),
				zap.Error(err),
			)
		}
	}

	comment.ScreenshotKey = fileKey
	if err := h.commentRepo.Update(c.Request.Context(), comment); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, dto.ScreenshotURLResponse{
		UploadURL: uploadURL,
		FileKey:   fileKey,
		FileURL:   h.s3Client.GetFileURL(fileKey),
	})
}
