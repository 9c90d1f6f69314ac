package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tapin/pkg/logger"
	"tapin/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(authHandler *AuthHandler, appHandler *AppHandler) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("tapin"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "tapin",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Аутентификация: прокси в backend плюс локальная сессия
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/reset-password/confirm/:token", authHandler.ResetPasswordConfirm)
	}

	// Состояние приложения: коллекция, фильтр, детали, карта
	app := router.Group("/app")
	{
		app.GET("/state", appHandler.GetState)
		app.PUT("/filter", appHandler.SetFilter)

		app.POST("/listings", appHandler.CreateListing)
		app.PUT("/listings/:id", appHandler.UpdateListing)
		app.DELETE("/listings/:id", appHandler.DeleteListing)
		app.POST("/listings/:id/select", appHandler.SelectListing)
		app.POST("/listings/:id/signup", appHandler.SignUp)

		app.GET("/detail", appHandler.GetDetail)
		app.DELETE("/detail", appHandler.CloseDetail)
		app.POST("/reviews", appHandler.AddReview)

		app.PUT("/view", appHandler.SetView)
		app.PUT("/location", appHandler.SetLocation)
		app.GET("/map", appHandler.GetMap)
	}

	return router
}
