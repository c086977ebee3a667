// File: rentiva/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentiva/clients"
	"rentiva/config"
	"rentiva/database"
	intentRepo "rentiva/database/repository/intent"
	"rentiva/handlers"
	"rentiva/middleware"
	"rentiva/routes"
	"rentiva/services/checkout"
	"rentiva/utils"
	"rentiva/workers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware())

	// Collaborator clients.
	inventoryClient := clients.NewInventoryClient(config.AppConfig.InventoryBaseURL)
	profileClient := clients.NewProfileClient(config.AppConfig.ProfileBaseURL)
	reservationClient := clients.NewReservationClient(config.AppConfig.ReservationBaseURL)
	paymentClient := clients.NewPaymentClient(config.AppConfig.PaymentBaseURL)

	// Repositories and stores.
	auditRepo := intentRepo.NewMongoIntentRepo()
	sessionStore := checkout.NewRedisSessionStore(utils.GetSessionCacheClient(), config.SessionTTL())

	// Services.
	checkoutService := checkout.NewCheckoutService(
		inventoryClient,
		profileClient,
		reservationClient,
		paymentClient,
		sessionStore,
		auditRepo,
		logger,
	)
	checkoutService.PollInterval = config.PollInterval()
	checkoutService.PollTimeout = config.PollTimeout()
	checkoutService.PaymentWindow = config.PaymentWindow()
	checkoutService.Expiry = workers.NewExpiryScheduler()

	workers.InitExpiryWorker(checkoutService, logger)

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)

	// Register routes.
	routes.RegisterRoutes(router, checkoutHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
