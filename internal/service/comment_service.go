package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"proto-review-api/internal/domain"
	"proto-review-api/internal/dto"
	"proto-review-api/internal/metrics"
	"proto-review-api/internal/policy"
	"proto-review-api/internal/repository"
	"proto-review-api/internal/response"
)

// Comment event types published to page subscribers
const (
	EventCommentCreated  = "created"
	EventCommentUpdated  = "updated"
	EventCommentResolved = "resolved"
	EventCommentReopened = "reopened"
	EventCommentDeleted  = "deleted"
)

// EventPublisher broadcasts comment lifecycle events to page subscribers.
// Publishing is best-effort and must never fail the request.
type EventPublisher interface {
	PublishCommentEvent(pageID, eventType string, comment dto.CommentResponse)
}

// CommentService defines the interface for comment business logic
type CommentService interface {
	ListComments(ctx context.Context, pageID string, resolved *bool) ([]dto.CommentResponse, error)
	CreateComment(ctx context.Context, ident domain.Identity, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, ident domain.Identity, id uuid.UUID, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, ident domain.Identity, id uuid.UUID) error
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	commentRepo repository.CommentRepository
	events      EventPublisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewCommentService creates a new instance of CommentService.
// events and m may be nil.
func NewCommentService(
	commentRepo repository.CommentRepository,
	events EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		events:      events,
		metrics:     m,
		logger:      logger,
	}
}

// ListComments returns a page's comments, newest first. Listing is open:
// no authentication is required to read.
func (s *commentServiceImpl) ListComments(ctx context.Context, pageID string, resolved *bool) ([]dto.CommentResponse, error) {
	if pageID == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "pageId is required", "")
	}

	comments, err := s.commentRepo.FindByPage(ctx, pageID, resolved)
	if err != nil {
		return nil, s.storeError("Failed to fetch comments", err)
	}

	return dto.ToCommentResponses(comments), nil
}

// CreateComment creates a new comment with an author snapshot taken from
// the caller identity.
func (s *commentServiceImpl) CreateComment(ctx context.Context, ident domain.Identity, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if !policy.IsAuthenticated(ident) {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Authentication required", "")
	}
	if req.PageID == "" || req.PositionX == nil || req.PositionY == nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "pageId, positionX and positionY are required", "")
	}

	content, ok := policy.SanitizeContent(req.Content)
	if !ok {
		return nil, response.NewAppError(response.ErrCodeValidation, "Content must not be empty", "")
	}

	authorName := ident.Name
	if authorName == "" {
		authorName = "Unknown"
	}

	comment := &domain.Comment{
		PageID:          req.PageID,
		AuthorID:        ident.ID,
		AuthorName:      authorName,
		AuthorEmail:     ident.Email,
		AuthorAvatarURL: ident.AvatarURL,
		Content:         content,
		PositionX:       policy.RoundPosition(*req.PositionX),
		PositionY:       policy.RoundPosition(*req.PositionY),
		Context:         datatypes.JSON(req.Context),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, s.storeError("Failed to create comment", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementCommentCreated()
	}

	resp := dto.ToCommentResponse(comment)
	s.publish(comment.PageID, EventCommentCreated, resp)

	s.logger.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("page_id", comment.PageID),
		zap.String("author_id", comment.AuthorID.String()),
	)

	return &resp, nil
}

// UpdateComment applies a partial update to an existing comment. Any
// authenticated caller may edit, move, resolve or reopen any comment;
// ownership is only enforced for deletion. Updates race last-write-wins:
// there is no version check, so concurrent edits silently keep the later
// write.
func (s *commentServiceImpl) UpdateComment(ctx context.Context, ident domain.Identity, id uuid.UUID, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if !policy.IsAuthenticated(ident) {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Authentication required", "")
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return nil, s.storeError("Failed to fetch comment", err)
	}

	if !policy.CanMutate(ident, comment) {
		return nil, response.NewAppError(response.ErrCodeForbidden, "Not allowed to update this comment", "")
	}

	eventType := EventCommentUpdated

	if req.Resolved != nil {
		if *req.Resolved && !comment.Resolved {
			eventType = EventCommentResolved
			if s.metrics != nil {
				s.metrics.IncrementCommentResolved()
			}
		} else if !*req.Resolved && comment.Resolved {
			eventType = EventCommentReopened
		}
		comment.Resolved = *req.Resolved
		if *req.Resolved {
			now := time.Now().UTC()
			comment.ResolvedAt = &now
			comment.ResolvedBy = ident.Label()
		} else {
			// resolved_at and resolved_by are both-or-neither
			comment.ResolvedAt = nil
			comment.ResolvedBy = ""
		}
	}

	if req.Content != nil {
		content, ok := policy.SanitizeContent(*req.Content)
		if !ok {
			return nil, response.NewAppError(response.ErrCodeValidation, "Content must not be empty", "")
		}
		comment.Content = content
	}

	// Non-numeric position values are ignored, not rejected
	if x, ok := policy.SanitizePosition(req.PositionX); ok {
		comment.PositionX = x
	}
	if y, ok := policy.SanitizePosition(req.PositionY); ok {
		comment.PositionY = y
	}

	// Save refreshes updated_at even when no field changed
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, s.storeError("Failed to update comment", err)
	}

	resp := dto.ToCommentResponse(comment)
	s.publish(comment.PageID, eventType, resp)

	return &resp, nil
}

// DeleteComment deletes a comment. Only the original author may delete.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, ident domain.Identity, id uuid.UUID) error {
	if !policy.IsAuthenticated(ident) {
		return response.NewAppError(response.ErrCodeUnauthorized, "Authentication required", "")
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return s.storeError("Failed to fetch comment", err)
	}

	if !policy.CanDelete(ident, comment) {
		return response.NewAppError(response.ErrCodeForbidden, "Only the author can delete a comment", "")
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Comment not found", "")
		}
		return s.storeError("Failed to delete comment", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementCommentDeleted()
	}

	s.publish(comment.PageID, EventCommentDeleted, dto.ToCommentResponse(comment))

	s.logger.Info("Comment deleted",
		zap.String("comment_id", id.String()),
		zap.String("page_id", comment.PageID),
	)

	return nil
}

func (s *commentServiceImpl) publish(pageID, eventType string, comment dto.CommentResponse) {
	if s.events == nil {
		return
	}
	s.events.PublishCommentEvent(pageID, eventType, comment)
}

func (s *commentServiceImpl) storeError(message string, err error) error {
	if errors.Is(err, repository.ErrNotConfigured) {
		return response.NewAppError(response.ErrCodeStoreUnavailable, "Comment store is not configured", "")
	}
	s.logger.Error(message, zap.Error(err))
	return response.NewAppError(response.ErrCodeInternal, message, err.Error())
}
