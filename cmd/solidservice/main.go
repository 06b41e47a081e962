package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"solid-service/internal/app"
)

func main() {
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	log.SetOutput(os.Stderr)

	service, err := app.NewService()
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	go func() {
		if err := service.Start(); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), service.ShutdownTimeout())
	defer cancel()
	if err := service.Shutdown(ctx); err != nil {
		log.Fatalf("Failed to shut down cleanly: %v", err)
	}
}
