package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"proto-review-api/internal/client"
	"proto-review-api/internal/domain"
)

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) FindByPage(ctx context.Context, pageID string, resolved *bool) ([]*domain.Comment, error) {
	args := m.Called(ctx, pageID, resolved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) FindPurgeable(ctx context.Context, deletedBefore time.Time) ([]*domain.Comment, error) {
	args := m.Called(ctx, deletedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) PurgeBatch(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func purgeableComment(screenshotKey string) *domain.Comment {
	deletedAt := time.Now().UTC().Add(-60 * 24 * time.Hour)
	return &domain.Comment{
		BaseModel: domain.BaseModel{
			ID:        uuid.New(),
			DeletedAt: &deletedAt,
		},
		PageID:        "home",
		Content:       "old feedback",
		ScreenshotKey: screenshotKey,
	}
}

func TestPurgeJob_Run_PurgesOldComments(t *testing.T) {
	mockRepo := new(MockCommentRepository)
	mockS3 := client.NewMockS3Client()
	logger := zap.NewNop()

	job := NewPurgeJob(mockRepo, mockS3, 30*24*time.Hour, logger)

	c1 := purgeableComment("review/screenshots/home/2026/06/a.png")
	c2 := purgeableComment("")

	var deletedKeys []string
	mockS3.DeleteFileFunc = func(ctx context.Context, key string) error {
		deletedKeys = append(deletedKeys, key)
		return nil
	}

	mockRepo.On("FindPurgeable", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*domain.Comment{c1, c2}, nil)
	mockRepo.On("PurgeBatch", mock.Anything, []uuid.UUID{c1.ID, c2.ID}).
		Return(nil)

	job.Run()

	mockRepo.AssertExpectations(t)
	assert.Equal(t, []string{c1.ScreenshotKey}, deletedKeys)
}

func TestPurgeJob_Run_CutoffRespectsRetention(t *testing.T) {
	mockRepo := new(MockCommentRepository)
	logger := zap.NewNop()

	retention := 30 * 24 * time.Hour
	job := NewPurgeJob(mockRepo, client.NewMockS3Client(), retention, logger)

	var cutoff time.Time
	mockRepo.On("FindPurgeable", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			cutoff = args.Get(1).(time.Time)
		}).
		Return([]*domain.Comment{}, nil)

	before := time.Now().UTC().Add(-retention)
	job.Run()
	after := time.Now().UTC().Add(-retention)

	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
	mockRepo.AssertNotCalled(t, "PurgeBatch", mock.Anything, mock.Anything)
}

func TestPurgeJob_Run_SkipsCommentWhenScreenshotDeleteFails(t *testing.T) {
	mockRepo := new(MockCommentRepository)
	mockS3 := client.NewMockS3Client()
	logger := zap.NewNop()

	job := NewPurgeJob(mockRepo, mockS3, 30*24*time.Hour, logger)

	c1 := purgeableComment("review/screenshots/home/2026/06/a.png")
	c2 := purgeableComment("review/screenshots/home/2026/06/b.png")

	mockS3.DeleteFileFunc = func(ctx context.Context, key string) error {
		if key == c1.ScreenshotKey {
			return errors.New("s3 unavailable")
		}
		return nil
	}

	mockRepo.On("FindPurgeable", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*domain.Comment{c1, c2}, nil)
	// Only the comment whose screenshot was removed gets purged
	mockRepo.On("PurgeBatch", mock.Anything, []uuid.UUID{c2.ID}).
		Return(nil)

	job.Run()

	mockRepo.AssertExpectations(t)
}

func TestPurgeJob_Run_RepositoryErrorStopsJob(t *testing.T) {
	mockRepo := new(MockCommentRepository)
	logger := zap.NewNop()

	job := NewPurgeJob(mockRepo, client.NewMockS3Client(), 30*24*time.Hour, logger)

	mockRepo.On("FindPurgeable", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("connection refused"))

	job.Run()

	mockRepo.AssertNotCalled(t, "PurgeBatch", mock.Anything, mock.Anything)
}

func TestPurgeJob_Run_NilS3ClientStillPurges(t *testing.T) {
	mockRepo := new(MockCommentRepository)
	logger := zap.NewNop()

	job := NewPurgeJob(mockRepo, nil, 30*24*time.Hour, logger)

	c1 := purgeableComment("review/screenshots/home/2026/06/a.png")

	mockRepo.On("FindPurgeable", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*domain.Comment{c1}, nil)
	mockRepo.On("PurgeBatch", mock.Anything, []uuid.UUID{c1.ID}).
		Return(nil)

	job.Run()

	mockRepo.AssertExpectations(t)
}
