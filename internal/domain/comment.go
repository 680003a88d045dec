package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Comment represents a positioned annotation on a prototype page.
// Author fields are snapshotted from the caller identity at creation time
// and are never re-derived (a later rename does not change old comments).
type Comment struct {
	BaseModel
	PageID          string     `gorm:"type:varchar(255);not null;index:idx_comments_page_id" json:"pageId"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_author_id" json:"authorId"`
	AuthorName      string     `gorm:"type:varchar(255);not null" json:"authorName"`
	AuthorEmail     string     `gorm:"type:varchar(255)" json:"authorEmail"`
	AuthorAvatarURL string     `gorm:"type:text" json:"authorAvatarUrl,omitempty"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	PositionX       int        `gorm:"not null" json:"positionX"`
	PositionY       int        `gorm:"not null" json:"positionY"`
	Resolved        bool       `gorm:"not null;default:false;index:idx_comments_page_resolved" json:"resolved"`
	ResolvedAt      *time.Time `gorm:"type:timestamp" json:"resolvedAt,omitempty"`
	ResolvedBy      string     `gorm:"type:varchar(255)" json:"resolvedBy,omitempty"`
	// ScreenshotKey holds the S3 object key of an optional screenshot attached
	// to the comment (key only, not a full URL)
	ScreenshotKey string `gorm:"type:text" json:"screenshotKey,omitempty"`
	// Context captures client state at placement time (viewport size, user
	// agent) so markers can be repositioned sensibly on other screens
	Context datatypes.JSON `gorm:"type:jsonb" json:"context,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
