package client

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"proto-review-api/internal/dto"
	"proto-review-api/internal/policy"
)

// SessionMode describes what the viewer is doing with the page
type SessionMode string

const (
	ModeInspecting SessionMode = "inspecting"
	ModeCommenting SessionMode = "commenting"
	ModeAuthoring  SessionMode = "authoring"
)

// PageSession mirrors the unresolved comments of the page a viewer is
// looking at. Position moves apply optimistically so dragging feels
// instant; everything else waits for server confirmation. The session
// never rolls an optimistic value back, it refetches server truth
// instead.
type PageSession struct {
	mu           sync.Mutex
	api          CommentAPI
	activePageID string
	comments     []dto.CommentResponse
	mode         SessionMode
	logger       *zap.Logger
}

// NewPageSession creates an empty session in inspecting mode
func NewPageSession(api CommentAPI, logger *zap.Logger) *PageSession {
	return &PageSession{
		api:    api,
		mode:   ModeInspecting,
		logger: logger,
	}
}

// SwitchPage makes pageID the active page and replaces the local set
// wholesale with the server's unresolved comments. Stale local edits
// are discarded; last fetch wins.
func (s *PageSession) SwitchPage(ctx context.Context, pageID string) error {
	comments, err := s.fetch(ctx, pageID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.activePageID = pageID
	s.comments = comments
	s.mu.Unlock()

	return nil
}

// Refresh refetches the active page's unresolved comments
func (s *PageSession) Refresh(ctx context.Context) error {
	s.mu.Lock()
	pageID := s.activePageID
	s.mu.Unlock()

	if pageID == "" {
		return fmt.Errorf("no active page")
	}

	comments, err := s.fetch(ctx, pageID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// The page may have changed while the fetch was in flight
	if s.activePageID == pageID {
		s.comments = comments
	}
	s.mu.Unlock()

	return nil
}

// SetMode changes the interaction mode. Entering commenting mode
// refreshes the comment set so markers are current.
func (s *PageSession) SetMode(ctx context.Context, mode SessionMode) error {
	s.mu.Lock()
	s.mode = mode
	hasPage := s.activePageID != ""
	s.mu.Unlock()

	if mode == ModeCommenting && hasPage {
		return s.Refresh(ctx)
	}
	return nil
}

// Mode returns the current interaction mode
func (s *PageSession) Mode() SessionMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ActivePageID returns the page the session is mirroring
func (s *PageSession) ActivePageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePageID
}

// Comments returns a copy of the local comment set
func (s *PageSession) Comments() []dto.CommentResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]dto.CommentResponse, len(s.comments))
	copy(out, s.comments)
	return out
}

// Add creates a comment on the active page. Creation is confirm-only:
// nothing is added locally until the server returns the stored record,
// which is then prepended. On failure the local set is untouched.
func (s *PageSession) Add(ctx context.Context, x, y float64, content string) (*dto.CommentResponse, error) {
	s.mu.Lock()
	pageID := s.activePageID
	s.mu.Unlock()

	if pageID == "" {
		return nil, fmt.Errorf("no active page")
	}

	created, err := s.api.CreateComment(ctx, &dto.CreateCommentRequest{
		PageID:    pageID,
		PositionX: &x,
		PositionY: &y,
		Content:   content,
	})
	if err != nil {
		s.logger.Warn("Failed to create comment", zap.String("page_id", pageID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	if s.activePageID == pageID {
		s.comments = append([]dto.CommentResponse{*created}, s.comments...)
	}
	s.mu.Unlock()

	return created, nil
}

// Resolve marks a comment resolved and removes it from the local set
// only after the server confirms, so a failure never makes the marker
// flicker away and back.
func (s *PageSession) Resolve(ctx context.Context, commentID string) error {
	resolved := true
	_, err := s.api.UpdateComment(ctx, commentID, &dto.UpdateCommentRequest{Resolved: &resolved})
	if err != nil {
		s.logger.Warn("Failed to resolve comment", zap.String("comment_id", commentID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	for i, c := range s.comments {
		if c.CommentID.String() == commentID {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// Reopen clears the resolved state and appends the record back to the
// local active set after the server confirms.
func (s *PageSession) Reopen(ctx context.Context, commentID string) error {
	resolved := false
	reopened, err := s.api.UpdateComment(ctx, commentID, &dto.UpdateCommentRequest{Resolved: &resolved})
	if err != nil {
		s.logger.Warn("Failed to reopen comment", zap.String("comment_id", commentID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.activePageID == reopened.PageID {
		s.comments = append(s.comments, *reopened)
	}
	s.mu.Unlock()

	return nil
}

// MovePosition applies the new position locally first, then sends the
// update. On failure the optimistic value is not rolled back; the whole
// page set is refetched so the session converges on server truth.
func (s *PageSession) MovePosition(ctx context.Context, commentID string, x, y float64) error {
	s.mu.Lock()
	for i := range s.comments {
		if s.comments[i].CommentID.String() == commentID {
			s.comments[i].PositionX = policy.RoundPosition(x)
			s.comments[i].PositionY = policy.RoundPosition(y)
			break
		}
	}
	s.mu.Unlock()

	_, err := s.api.UpdateComment(ctx, commentID, &dto.UpdateCommentRequest{
		PositionX: x,
		PositionY: y,
	})
	if err != nil {
		s.logger.Warn("Failed to update position, resyncing",
			zap.String("comment_id", commentID), zap.Error(err))
		if refreshErr := s.Refresh(ctx); refreshErr != nil {
			s.logger.Warn("Resync after failed move also failed", zap.Error(refreshErr))
		}
		return err
	}

	return nil
}

// Delete removes a comment from the server, then from the local set
func (s *PageSession) Delete(ctx context.Context, commentID string) error {
	if err := s.api.DeleteComment(ctx, commentID); err != nil {
		s.logger.Warn("Failed to delete comment", zap.String("comment_id", commentID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	for i, c := range s.comments {
		if c.CommentID.String() == commentID {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

func (s *PageSession) fetch(ctx context.Context, pageID string) ([]dto.CommentResponse, error) {
	unresolved := false
	comments, err := s.api.ListComments(ctx, pageID, &unresolved)
	if err != nil {
		s.logger.Warn("Failed to fetch comments", zap.String("page_id", pageID), zap.Error(err))
		return nil, err
	}
	return comments, nil
}
