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

	"github.com/docubot/rag-assistant/internal/api"
	"github.com/docubot/rag-assistant/internal/chunker"
	"github.com/docubot/rag-assistant/internal/config"
	"github.com/docubot/rag-assistant/internal/core"
	"github.com/docubot/rag-assistant/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	retrieval := config.AppConfig.Retrieval

	// Initialize the vector index (created on first run, reused after)
	index, err := store.NewSQLiteIndex(config.AppConfig.IndexPath, retrieval.IndexName)
	if err != nil {
		log.Fatalf("Failed to initialize vector index: %v", err)
	}
	defer index.Close()

	// Initialize LLM service
	llmService, err := core.NewLLMService(context.Background(), config.AppConfig.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	// Initialize services
	ingestService := core.NewIngestService(llmService, index,
		chunker.New(retrieval.ChunkSize, retrieval.ChunkOverlap))
	ragService := core.NewRAGService(llmService, index, retrieval)
	sessions := core.NewSessionManager(llmService)

	// Seed sample knowledge into an empty index
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := ingestService.SeedSamples(seedCtx); err != nil {
		log.Printf("Sample seeding skipped: %v", err)
	}
	cancelSeed()

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(ingestService, ragService, sessions, index)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
