package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"proto-review-api/internal/dto"
	"proto-review-api/internal/middleware"
	"proto-review-api/internal/response"
	"proto-review-api/internal/service"
)

// ShareHandler handles share link endpoints
type ShareHandler struct {
	shareService   service.ShareService
	commentService service.CommentService
	logger         *zap.Logger
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(shareService service.ShareService, commentService service.CommentService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		shareService:   shareService,
		commentService: commentService,
		logger:         logger,
	}
}

// CreateShareLink godoc
// @Summary      Create a share link
// @Description  Creates a time-limited token that grants read access to a page's open comments.
// @Tags         share
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateShareLinkRequest true "Page to share"
// @Success      201 {object} response.SuccessResponse{data=dto.ShareLinkResponse}
// @Failure      400 {object} response.ErrorResponse "Missing pageId"
// @Failure      401 {object} response.ErrorResponse "Unauthenticated"
// @Failure      500 {object} response.ErrorResponse "Token store unavailable"
// @Security     BearerAuth
// @Router       /share [post]
func (h *ShareHandler) CreateShareLink(c *gin.Context) {
	var req dto.CreateShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ident := middleware.GetIdentity(c)

	link, err := h.shareService.CreateLink(c.Request.Context(), ident, req.PageID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, link)
}

// GetSharedPage godoc
// @Summary      View a shared page
// @Description  Resolves a share token and returns the page's unresolved comments. No authentication required.
// @Tags         share
// @Produce      json
// @Param        token path string true "Share token"
// @Success      200 {object} response.SuccessResponse{data=dto.SharedPageResponse}
// @Failure      404 {object} response.ErrorResponse "Unknown or expired token"
// @Failure      500 {object} response.ErrorResponse "Store error"
// @Router       /share/{token} [get]
func (h *ShareHandler) GetSharedPage(c *gin.Context) {
	token := c.Param("token")

	pageID, err := h.shareService.ResolveLink(c.Request.Context(), token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Shared views only expose open feedback
	unresolved := false
	comments, err := h.commentService.ListComments(c.Request.Context(), pageID, &unresolved)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, dto.SharedPageResponse{
		PageID:   pageID,
		Comments: comments,
	})
}
