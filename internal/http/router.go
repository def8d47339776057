package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-app/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokens *service.TokenService,
	userH *UserHandler,
	postH *PostHandler,
	feedH *FeedHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.POST("/signup", userH.Signup)
	r.POST("/login", userH.Login)

	// Todas las rutas de publicaciones exigen token y alcance de dueño.
	authed := r.Group("/", AuthMiddleware(tokens))
	authed.POST("/submit", postH.Submit)
	authed.GET("/userdata", feedH.UserData)
	authed.GET("/newsfeed", feedH.NewsFeed)
	authed.POST("/like/:postId", postH.ToggleLike)
	authed.POST("/comment/:postId", postH.AddComment)
	authed.POST("/deletecomment/:postId", postH.RemoveComment)
	authed.DELETE("/deleteAll", postH.DeleteAll)
	authed.POST("/deleteOne", postH.DeleteOne)
	authed.Any("/update", postH.Update)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
