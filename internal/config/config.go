package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Retrieval holds the tunables of the ingestion and retrieval pipeline.
// Values come from an optional config.yaml; anything left unset falls back
// to the defaults below.
type Retrieval struct {
	IndexName    string  `yaml:"index_name"`
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
	TopK         int     `yaml:"top_k"`
	Threshold    float32 `yaml:"threshold"`
}

type Config struct {
	GeminiAPIKey string
	IndexPath    string
	HTTPPort     string
	LogLevel     string
	Retrieval    Retrieval
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		IndexPath:    getEnv("INDEX_PATH", "rag_index.db"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	retrieval, err := LoadRetrieval(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load retrieval config: %v", err)
	}
	AppConfig.Retrieval = retrieval
}

// LoadRetrieval reads the YAML tuning file if present. A missing file is not
// an error, it just means defaults.
func LoadRetrieval(path string) (Retrieval, error) {
	var r Retrieval
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyRetrievalDefaults(&r)
			return r, nil
		}
		return r, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	applyRetrievalDefaults(&r)
	return r, nil
}

func applyRetrievalDefaults(r *Retrieval) {
	if r.IndexName == "" {
		r.IndexName = "rag-chatbot"
	}
	if r.ChunkSize <= 0 {
		r.ChunkSize = 1000
	}
	if r.ChunkOverlap <= 0 {
		r.ChunkOverlap = 200
	}
	if r.ChunkOverlap >= r.ChunkSize {
		r.ChunkOverlap = r.ChunkSize / 5
	}
	if r.TopK <= 0 {
		r.TopK = 3
	}
	if r.Threshold <= 0 {
		r.Threshold = 0.7
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
