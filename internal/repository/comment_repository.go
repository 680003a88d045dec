package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"proto-review-api/internal/database"
	"proto-review-api/internal/domain"
)

// ErrNotConfigured is returned when no database connection is available.
// The service layer maps it to a STORE_UNAVAILABLE response instead of
// letting the process crash on missing credentials.
var ErrNotConfigured = errors.New("database not configured")

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindByPage(ctx context.Context, pageID string, resolved *bool) ([]*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindPurgeable(ctx context.Context, deletedBefore time.Time) ([]*domain.Comment, error)
	PurgeBatch(ctx context.Context, ids []uuid.UUID) error
}

// commentRepositoryImpl is the GORM implementation of CommentRepository
type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository.
// A nil db is allowed: the repository then falls back to the global
// connection installed by the async connector, and reports
// ErrNotConfigured while none exists.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

func (r *commentRepositoryImpl) conn(ctx context.Context) (*gorm.DB, error) {
	db := r.db
	if db == nil {
		db = database.GetDB()
	}
	if db == nil {
		return nil, ErrNotConfigured
	}
	return db.WithContext(ctx), nil
}

// Create creates a new comment
func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(comment).Error
}

// FindByID finds a comment by its ID
func (r *commentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var comment domain.Comment
	if err := db.First(&comment, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByPage finds all comments for a page, newest first. A nil resolved
// filter returns both resolved and unresolved comments.
func (r *commentRepositoryImpl) FindByPage(ctx context.Context, pageID string, resolved *bool) ([]*domain.Comment, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("page_id = ? AND deleted_at IS NULL", pageID)
	if resolved != nil {
		query = query.Where("resolved = ?", *resolved)
	}

	var comments []*domain.Comment
	if err := query.Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Update saves the full comment record, refreshing updated_at
func (r *commentRepositoryImpl) Update(ctx context.Context, comment *domain.Comment) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Save(comment).Error
}

// Delete soft deletes a comment by ID
func (r *commentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	result := db.Model(&domain.Comment{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindPurgeable finds soft-deleted comments past the retention window
func (r *commentRepositoryImpl) FindPurgeable(ctx context.Context, deletedBefore time.Time) ([]*domain.Comment, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var comments []*domain.Comment
	if err := db.
		Where("deleted_at IS NOT NULL AND deleted_at < ?", deletedBefore).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// PurgeBatch hard-deletes comments by ID
func (r *commentRepositoryImpl) PurgeBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Exec("DELETE FROM comments WHERE id IN ?", ids).Error
}
