package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/AshleyDelph84/fashion-designer-ai/internal/http/handlers"
	httpMW "github.com/AshleyDelph84/fashion-designer-ai/internal/http/middleware"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	FashionHandler   *httpH.FashionHandler
	FavoritesHandler *httpH.FavoritesHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("fashion-designer-api"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/fashion")
	{
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.FashionHandler != nil {
			api.POST("/analyze", cfg.FashionHandler.Analyze)
			api.GET("/results/:sessionId", cfg.FashionHandler.GetResults)
			api.GET("/status/:sessionId", cfg.FashionHandler.GetStatus)
			api.GET("/history", cfg.FashionHandler.GetHistory)
			api.DELETE("/sessions/:sessionId", cfg.FashionHandler.DeleteSession)
			api.GET("/download", cfg.FashionHandler.DownloadImage)
		}

		if cfg.FavoritesHandler != nil {
			api.GET("/favorites", cfg.FavoritesHandler.List)
			api.POST("/favorites", cfg.FavoritesHandler.Add)
			api.DELETE("/favorites/:sessionId/:outfitIndex", cfg.FavoritesHandler.Remove)
			api.GET("/favorites/check", cfg.FavoritesHandler.Check)
		}
	}

	return r
}
