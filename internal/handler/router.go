package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lodgeworks/booking-saga/internal/handler/api"
	"github.com/lodgeworks/booking-saga/internal/handler/middleware"
	"github.com/lodgeworks/booking-saga/internal/pkg/config"
)

func NewRouter(engine *gin.Engine, cfg config.Config, bookingHandler *api.BookingHandler) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(gin.Recovery())
}

func setupRoutes(engine *gin.Engine, bookingHandler *api.BookingHandler) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		bookings := apiGroup.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/:id", bookingHandler.GetBooking)
		}
		apiGroup.GET("/users/:userID/bookings", bookingHandler.ListBookingsForUser)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "service is healthy",
	})
}
