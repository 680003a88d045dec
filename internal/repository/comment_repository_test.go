package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"proto-review-api/internal/domain"
)

// setupTestDB creates an in-memory SQLite database for repository tests.
// SQLite has no uuid type or gen_random_uuid(), so IDs are generated by a
// create callback and the table is created by hand.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	db.Callback().Create().Before("gorm:create").Register("generate_uuid", func(db *gorm.DB) {
		if db.Statement.Schema != nil {
			for _, field := range db.Statement.Schema.PrimaryFields {
				if field.DataType == "uuid" {
					fieldValue := field.ReflectValueOf(db.Statement.Context, db.Statement.ReflectValue)
					if fieldValue.IsZero() {
						field.Set(db.Statement.Context, db.Statement.ReflectValue, uuid.New())
					}
				}
			}
		}
	})

	err = db.Exec(`
		CREATE TABLE comments (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			page_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			author_email TEXT,
			author_avatar_url TEXT,
			content TEXT NOT NULL,
			position_x INTEGER NOT NULL,
			position_y INTEGER NOT NULL,
			resolved INTEGER NOT NULL DEFAULT 0,
			resolved_at DATETIME,
			resolved_by TEXT,
			screenshot_key TEXT,
			context TEXT
		)
	`).Error
	require.NoError(t, err, "Failed to create comments table")

	return db
}

func newTestComment(pageID string) *domain.Comment {
	return &domain.Comment{
		PageID:     pageID,
		AuthorID:   uuid.New(),
		AuthorName: "Test User",
		Content:    "test comment",
		PositionX:  120,
		PositionY:  340,
	}
}

func TestCommentRepository_CreateAndFindByID(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))
	ctx := context.Background()

	comment := newTestComment("home")
	require.NoError(t, repo.Create(ctx, comment))
	require.NotEqual(t, uuid.Nil, comment.ID)

	found, err := repo.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, found.ID)
	assert.Equal(t, "home", found.PageID)
	assert.Equal(t, 120, found.PositionX)
	assert.False(t, found.Resolved)
}

func TestCommentRepository_FindByPage_OrderAndFilter(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))
	ctx := context.Background()

	first := newTestComment("home")
	first.CreatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, repo.Create(ctx, first))

	second := newTestComment("home")
	second.CreatedAt = time.Now().Add(-1 * time.Minute)
	require.NoError(t, repo.Create(ctx, second))

	other := newTestComment("pricing")
	require.NoError(t, repo.Create(ctx, other))

	resolvedOne := newTestComment("home")
	resolvedOne.Resolved = true
	require.NoError(t, repo.Create(ctx, resolvedOne))

	all, err := repo.FindByPage(ctx, "home", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	unresolved := false
	active, err := repo.FindByPage(ctx, "home", &unresolved)
	require.NoError(t, err)
	require.Len(t, active, 2)
	// Newest created_at first
	assert.Equal(t, second.ID, active[0].ID)
	assert.Equal(t, first.ID, active[1].ID)

	resolved := true
	done, err := repo.FindByPage(ctx, "home", &resolved)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, resolvedOne.ID, done[0].ID)
}

func TestCommentRepository_Update(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))
	ctx := context.Background()

	comment := newTestComment("home")
	require.NoError(t, repo.Create(ctx, comment))

	comment.Content = "updated content"
	now := time.Now().UTC()
	comment.Resolved = true
	comment.ResolvedAt = &now
	comment.ResolvedBy = "reviewer@example.com"
	require.NoError(t, repo.Update(ctx, comment))

	found, err := repo.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated content", found.Content)
	assert.True(t, found.Resolved)
	require.NotNil(t, found.ResolvedAt)
	assert.Equal(t, "reviewer@example.com", found.ResolvedBy)
}

func TestCommentRepository_Delete(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))
	ctx := context.Background()

	comment := newTestComment("home")
	require.NoError(t, repo.Create(ctx, comment))
	require.NoError(t, repo.Delete(ctx, comment.ID))

	// Soft-deleted comments disappear from reads
	_, err := repo.FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	comments, err := repo.FindByPage(ctx, "home", nil)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// Deleting twice reports not found
	assert.ErrorIs(t, repo.Delete(ctx, comment.ID), gorm.ErrRecordNotFound)
}

func TestCommentRepository_PurgeLifecycle(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))
	ctx := context.Background()

	old := newTestComment("home")
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Delete(ctx, old.ID))

	fresh := newTestComment("home")
	require.NoError(t, repo.Create(ctx, fresh))

	purgeable, err := repo.FindPurgeable(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, purgeable, 1)
	assert.Equal(t, old.ID, purgeable[0].ID)

	require.NoError(t, repo.PurgeBatch(ctx, []uuid.UUID{old.ID}))

	purgeable, err = repo.FindPurgeable(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, purgeable)
}

func TestCommentRepository_NotConfigured(t *testing.T) {
	repo := NewCommentRepository(nil)
	ctx := context.Background()

	_, err := repo.FindByPage(ctx, "home", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, repo.Create(ctx, newTestComment("home")), ErrNotConfigured)
}
