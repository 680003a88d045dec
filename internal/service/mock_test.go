package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"proto-review-api/internal/domain"
	"proto-review-api/internal/dto"
)

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	CreateFunc        func(ctx context.Context, comment *domain.Comment) error
	FindByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindByPageFunc    func(ctx context.Context, pageID string, resolved *bool) ([]*domain.Comment, error)
	UpdateFunc        func(ctx context.Context, comment *domain.Comment) error
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
	FindPurgeableFunc func(ctx context.Context, deletedBefore time.Time) ([]*domain.Comment, error)
	PurgeBatchFunc    func(ctx context.Context, ids []uuid.UUID) error
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return nil
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCommentRepository) FindByPage(ctx context.Context, pageID string, resolved *bool) ([]*domain.Comment, error) {
	if m.FindByPageFunc != nil {
		return m.FindByPageFunc(ctx, pageID, resolved)
	}
	return nil, nil
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, comment)
	}
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCommentRepository) FindPurgeable(ctx context.Context, deletedBefore time.Time) ([]*domain.Comment, error) {
	if m.FindPurgeableFunc != nil {
		return m.FindPurgeableFunc(ctx, deletedBefore)
	}
	return nil, nil
}

func (m *MockCommentRepository) PurgeBatch(ctx context.Context, ids []uuid.UUID) error {
	if m.PurgeBatchFunc != nil {
		return m.PurgeBatchFunc(ctx, ids)
	}
	return nil
}

// recordedEvent captures a published comment event
type recordedEvent struct {
	PageID    string
	EventType string
	Comment   dto.CommentResponse
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []recordedEvent
}

func (m *MockEventPublisher) PublishCommentEvent(pageID, eventType string, comment dto.CommentResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, recordedEvent{PageID: pageID, EventType: eventType, Comment: comment})
}

func (m *MockEventPublisher) last() (recordedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Events) == 0 {
		return recordedEvent{}, false
	}
	return m.Events[len(m.Events)-1], true
}
