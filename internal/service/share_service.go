package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"proto-review-api/internal/domain"
	"proto-review-api/internal/dto"
	"proto-review-api/internal/metrics"
	"proto-review-api/internal/policy"
	"proto-review-api/internal/response"
)

const shareKeyPrefix = "share:"

// ShareService issues and resolves read-only share link tokens
type ShareService interface {
	CreateLink(ctx context.Context, ident domain.Identity, pageID string) (*dto.ShareLinkResponse, error)
	ResolveLink(ctx context.Context, token string) (string, error)
}

// shareServiceImpl stores tokens in redis with a TTL
type shareServiceImpl struct {
	redis    *redis.Client
	tokenTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewShareService creates a new instance of ShareService. A nil redis
// client degrades both operations to STORE_UNAVAILABLE.
func NewShareService(redisClient *redis.Client, tokenTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) ShareService {
	return &shareServiceImpl{
		redis:    redisClient,
		tokenTTL: tokenTTL,
		metrics:  m,
		logger:   logger,
	}
}

// CreateLink issues an opaque token mapping to the page id
func (s *shareServiceImpl) CreateLink(ctx context.Context, ident domain.Identity, pageID string) (*dto.ShareLinkResponse, error) {
	if !policy.IsAuthenticated(ident) {
		return nil, response.NewAppError(response.ErrCodeUnauthorized, "Authentication required", "")
	}
	if pageID == "" {
		return nil, response.NewAppError(response.ErrCodeValidation, "pageId is required", "")
	}
	if s.redis == nil {
		return nil, response.NewAppError(response.ErrCodeStoreUnavailable, "Share link store is not configured", "")
	}

	token := uuid.NewString()
	if err := s.redis.Set(ctx, shareKeyPrefix+token, pageID, s.tokenTTL).Err(); err != nil {
		s.logger.Error("Failed to store share token", zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create share link", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementShareLinkCreated()
	}

	s.logger.Info("Share link created",
		zap.String("page_id", pageID),
		zap.String("created_by", ident.ID.String()),
	)

	return &dto.ShareLinkResponse{
		Token:     token,
		PageID:    pageID,
		ExpiresAt: time.Now().UTC().Add(s.tokenTTL),
	}, nil
}

// ResolveLink returns the page id behind a token, or NOT_FOUND when the
// token is unknown or expired
func (s *shareServiceImpl) ResolveLink(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", response.NewAppError(response.ErrCodeValidation, "token is required", "")
	}
	if s.redis == nil {
		return "", response.NewAppError(response.ErrCodeStoreUnavailable, "Share link store is not configured", "")
	}

	pageID, err := s.redis.Get(ctx, shareKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", response.NewAppError(response.ErrCodeNotFound, "Share link not found or expired", "")
		}
		s.logger.Error("Failed to resolve share token", zap.Error(err))
		return "", response.NewAppError(response.ErrCodeInternal, "Failed to resolve share link", err.Error())
	}

	return pageID, nil
}
