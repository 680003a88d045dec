package dto

import "time"

// CreateShareLinkRequest represents the request to issue a read-only link
type CreateShareLinkRequest struct {
	PageID string `json:"pageId" binding:"required"`
}

// ShareLinkResponse represents an issued share link token
type ShareLinkResponse struct {
	Token     string    `json:"token"`
	PageID    string    `json:"pageId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SharedPageResponse is the read-only view behind a share link
type SharedPageResponse struct {
	PageID   string            `json:"pageId"`
	Comments []CommentResponse `json:"comments"`
}
