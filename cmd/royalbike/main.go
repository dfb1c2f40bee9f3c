package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/royalbikeclub/royalbike/internal/database"
	"github.com/royalbikeclub/royalbike/internal/email"
	"github.com/royalbikeclub/royalbike/internal/logging"
	"github.com/royalbikeclub/royalbike/internal/server"
)

func main() {
	port := os.Getenv("ROYALBIKE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("ROYALBIKE_DB_PATH")
	if dbPath == "" {
		dbPath = "royalbike.db"
	}

	logger := logging.Setup(os.Getenv("ROYALBIKE_LOG_LEVEL"), os.Getenv("ROYALBIKE_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("ROYALBIKE_POSTMARK_TOKEN"),
		os.Getenv("ROYALBIKE_FROM_EMAIL"),
	)
	if !emailClient.Configured() {
		logger.Warn("email client not configured; OTP delivery will fail")
	}

	srv := server.New(db, emailClient, os.Getenv("ROYALBIKE_ADMIN_EMAIL"), logger)

	// Periodic cleanup of expired sessions and stale rate-limit entries
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Debug("session cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Royal Bike Club running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
