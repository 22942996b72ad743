package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicenoteslab/voicenotes-be/internal/api/handler"
	"github.com/voicenoteslab/voicenotes-be/internal/api/web"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Front end
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "voicenotes-be",
		})
	})

	analysisHandler := handler.NewAnalysisHandler(deps)

	// Uploads carry the original flask-limiter policy: a small hourly
	// budget per client IP.
	r.POST("/upload", RateLimitMiddleware(deps.Uploads.PerHour, deps.Logger), analysisHandler.Upload)
	r.GET("/status/:task_id", analysisHandler.Status)
	r.GET("/download/:result_id", analysisHandler.Download)

	return r
}
