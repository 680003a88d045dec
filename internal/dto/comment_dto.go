package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"proto-review-api/internal/domain"
)

// CreateCommentRequest represents the request to create a new comment.
// Positions are pointers so that a coordinate of 0 passes required binding.
type CreateCommentRequest struct {
	PageID    string          `json:"pageId" binding:"required"`
	PositionX *float64        `json:"positionX" binding:"required"`
	PositionY *float64        `json:"positionY" binding:"required"`
	Content   string          `json:"content" binding:"required"`
	Context   json.RawMessage `json:"context,omitempty"`
}

// UpdateCommentRequest represents a partial comment update. Every field is
// optional; position fields are decoded loosely because historical clients
// sent them as strings, which are ignored rather than rejected.
type UpdateCommentRequest struct {
	Resolved  *bool       `json:"resolved"`
	Content   *string     `json:"content"`
	PositionX interface{} `json:"position_x"`
	PositionY interface{} `json:"position_y"`
}

// CommentResponse represents the comment response
type CommentResponse struct {
	CommentID       uuid.UUID       `json:"commentId"`
	PageID          string          `json:"pageId"`
	AuthorID        uuid.UUID       `json:"authorId"`
	AuthorName      string          `json:"authorName"`
	AuthorEmail     string          `json:"authorEmail"`
	AuthorAvatarURL string          `json:"authorAvatarUrl,omitempty"`
	Content         string          `json:"content"`
	PositionX       int             `json:"positionX"`
	PositionY       int             `json:"positionY"`
	Resolved        bool            `json:"resolved"`
	ResolvedAt      *time.Time      `json:"resolvedAt,omitempty"`
	ResolvedBy      string          `json:"resolvedBy,omitempty"`
	ScreenshotKey   string          `json:"screenshotKey,omitempty"`
	Context         json.RawMessage `json:"context,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ListCommentsResponse wraps the ordered comment list for a page
type ListCommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

// ToCommentResponse converts a domain comment to its response form
func ToCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		CommentID:       c.ID,
		PageID:          c.PageID,
		AuthorID:        c.AuthorID,
		AuthorName:      c.AuthorName,
		AuthorEmail:     c.AuthorEmail,
		AuthorAvatarURL: c.AuthorAvatarURL,
		Content:         c.Content,
		PositionX:       c.PositionX,
		PositionY:       c.PositionY,
		Resolved:        c.Resolved,
		ResolvedAt:      c.ResolvedAt,
		ResolvedBy:      c.ResolvedBy,
		ScreenshotKey:   c.ScreenshotKey,
		Context:         json.RawMessage(c.Context),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ToCommentResponses converts a slice of domain comments
func ToCommentResponses(comments []*domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentResponse(c))
	}
	return out
}
