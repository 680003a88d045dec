package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"proto-review-api/internal/client"
	"proto-review-api/internal/repository"
)

// PurgeJob permanently removes soft-deleted comments past the retention
// window, along with their screenshots
type PurgeJob struct {
	commentRepo repository.CommentRepository
	s3Client    client.S3ClientInterface
	retention   time.Duration
	logger      *zap.Logger
}

// NewPurgeJob creates a new PurgeJob instance
func NewPurgeJob(
	commentRepo repository.CommentRepository,
	s3Client client.S3ClientInterface,
	retention time.Duration,
	logger *zap.Logger,
) *PurgeJob {
	return &PurgeJob{
		commentRepo: commentRepo,
		s3Client:    s3Client,
		retention:   retention,
		logger:      logger,
	}
}

// Run executes the purge job. It finds comments soft-deleted longer ago
// than the retention window and removes them from storage and S3.
func (j *PurgeJob) Run() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-j.retention)

	j.logger.Info("Starting purge job for deleted comments",
		zap.Time("cutoff", cutoff),
	)

	purgeable, err := j.commentRepo.FindPurgeable(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to find purgeable comments",
			zap.Error(err),
		)
		return
	}

	if len(purgeable) == 0 {
		j.logger.Info("No purgeable comments found")
		return
	}

	j.logger.Info("Found purgeable comments",
		zap.Int("count", len(purgeable)),
	)

	// Delete screenshots first so a failed S3 call never orphans a file.
	// Comments whose screenshot can't be removed stay for the next run.
	var purgeIDs []uuid.UUID
	failCount := 0

	for _, comment := range purgeable {
		if comment.ScreenshotKey != "" && j.s3Client != nil {
			if err := j.s3Client.DeleteFile(ctx, comment.ScreenshotKey); err != nil {
				j.logger.Error("Failed to delete screenshot from S3",
					zap.String("comment_id", comment.ID.String()),
					zap.String("file_key", comment.ScreenshotKey),
					zap.Error(err),
				)
				failCount++
				continue
			}

			j.logger.Debug("Deleted screenshot from S3",
				zap.String("comment_id", comment.ID.String()),
				zap.String("file_key", comment.ScreenshotKey),
			)
		}

		purgeIDs = append(purgeIDs, comment.ID)
	}

	if len(purgeIDs) > 0 {
		if err := j.commentRepo.PurgeBatch(ctx, purgeIDs); err != nil {
			j.logger.Error("Failed to purge comments from database",
				zap.Int("count", len(purgeIDs)),
				zap.Error(err),
			)
			return
		}
	}

	j.logger.Info("Purge job completed",
		zap.Int("total_purgeable", len(purgeable)),
		zap.Int("purged", len(purgeIDs)),
		zap.Int("failed", failCount),
	)
}
