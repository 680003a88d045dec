package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"proto-review-api/internal/dto"
	"proto-review-api/internal/middleware"
	"proto-review-api/internal/response"
	"proto-review-api/internal/service"
)

// CommentHandler handles comment CRUD endpoints
type CommentHandler struct {
	commentService service.CommentService
	logger         *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// ListComments godoc
// @Summary      List comments for a page
// @Description  Returns a page's comments, newest first. Listing requires no authentication.
// @Tags         comments
// @Produce      json
// @Param        pageId    query  string  true   "Page identifier"
// @Param        resolved  query  bool    false  "Filter by resolved state"
// @Success      200 {object} response.SuccessResponse{data=dto.ListCommentsResponse}
// @Failure      400 {object} response.ErrorResponse "Missing pageId"
// @Failure      500 {object} response.ErrorResponse "Store error"
// @Router       /comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	pageID := c.Query("pageId")

	// Absent or unparsable resolved values mean "no filter"
	var resolved *bool
	if raw := c.Query("resolved"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			resolved = &v
		}
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), pageID, resolved)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, dto.ListCommentsResponse{Comments: comments})
}

// CreateComment godoc
// @Summary      Create a comment
// @Description  Creates a positioned comment on a page. The author snapshot is taken from the bearer identity.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateCommentRequest true "Comment to create"
// @Success      201 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse "Missing field or empty content"
// @Failure      401 {object} response.ErrorResponse "Unauthenticated"
// @Failure      500 {object} response.ErrorResponse "Store error"
// @Security     BearerAuth
// @Router       /comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ident := middleware.GetIdentity(c)

	comment, err := h.commentService.CreateComment(c.Request.Context(), ident, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary      Update a comment
// @Description  Partially updates content, position or resolved state. Any authenticated user may update; ownership is not checked.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id      path  string                   true "Comment ID"
// @Param        request body  dto.UpdateCommentRequest true "Fields to update"
// @Success      200 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse "Empty content"
// @Failure      401 {object} response.ErrorResponse "Unauthenticated"
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Failure      500 {object} response.ErrorResponse "Store error"
// @Security     BearerAuth
// @Router       /comments/{id} [patch]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid comment ID")
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ident := middleware.GetIdentity(c)

	comment, err := h.commentService.UpdateComment(c.Request.Context(), ident, id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Deletes a comment. Only the original author may delete.
// @Tags         comments
// @Produce      json
// @Param        id path string true "Comment ID"
// @Success      200 {object} response.SuccessResponse
// @Failure      401 {object} response.ErrorResponse "Unauthenticated"
// @Failure      403 {object} response.ErrorResponse "Not the author"
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Failure      500 {object} response.ErrorResponse "Store error"
// @Security     BearerAuth
// @Router       /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid comment ID")
		return
	}

	ident := middleware.GetIdentity(c)

	if err := h.commentService.DeleteComment(c.Request.Context(), ident, id); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, nil)
}
