package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	Domain             string
	BehindProxy        bool
	OutputDir          string
	WorkDir            string
	DataDir            string
	EncoderConcurrency int
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnv("ENCODER_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENCODER_CONCURRENCY: %w", err)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("ENCODER_CONCURRENCY must be at least 1, got %d", concurrency)
	}

	behindProxy, err := strconv.ParseBool(getEnv("BEHIND_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid BEHIND_PROXY: %w", err)
	}

	return &Config{
		Port:               port,
		Domain:             getEnv("DOMAIN", ""),
		BehindProxy:        behindProxy,
		OutputDir:          getEnv("OUTPUT_DIR", "/tmp/downloads"),
		WorkDir:            getEnv("WORK_DIR", "/tmp/video_processing"),
		DataDir:            getEnv("DATA_DIR", "/tmp/video-worker-data"),
		EncoderConcurrency: concurrency,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
