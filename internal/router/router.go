package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"proto-review-api/internal/client"
	"proto-review-api/internal/config"
	"proto-review-api/internal/handler"
	"proto-review-api/internal/metrics"
	"proto-review-api/internal/middleware"
	"proto-review-api/internal/repository"
	"proto-review-api/internal/service"
	"proto-review-api/internal/ws"
)

// Setup wires repositories, services and handlers onto a gin engine.
// db may be nil while the async connector is still retrying; the
// repository degrades to STORE_UNAVAILABLE until a connection lands.
func Setup(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	s3Client client.S3ClientInterface,
	hub *ws.Hub,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics(m))

	commentRepo := repository.NewCommentRepository(db)

	var events service.EventPublisher
	if hub != nil {
		events = hub
	}
	commentService := service.NewCommentService(commentRepo, events, m, logger)
	shareService := service.NewShareService(redisClient, cfg.Share.TokenTTL, m, logger)

	commentHandler := handler.NewCommentHandler(commentService, logger)
	shareHandler := handler.NewShareHandler(shareService, commentService, logger)
	screenshotHandler := handler.NewScreenshotHandler(commentRepo, s3Client, logger)
	healthHandler := handler.NewHealthHandler(redisClient)

	// Health endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group(cfg.Server.BasePath)
	{
		// Reads are open
		api.GET("/comments", commentHandler.ListComments)
		api.GET("/share/:token", shareHandler.GetSharedPage)

		if hub != nil {
			api.GET("/ws/:pageId", hub.HandleWebSocket)
		}

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.JWT.Secret))
		{
			authenticated.POST("/comments", commentHandler.CreateComment)
			authenticated.PATCH("/comments/:id", commentHandler.UpdateComment)
			authenticated.DELETE("/comments/:id", commentHandler.DeleteComment)
			authenticated.POST("/comments/:id/screenshot-url", screenshotHandler.CreateScreenshotURL)

			authenticated.POST("/share", shareHandler.CreateShareLink)
		}
	}

	return r
}
