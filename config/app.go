package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const defaultRotationPeriod = 300 * time.Second

// RotationPeriod returns the minimum interval before a previously served ad
// becomes eligible again. Configurable through ROTATION_PERIOD_SECONDS.
func RotationPeriod() time.Duration {
	raw := os.Getenv("ROTATION_PERIOD_SECONDS")
	if raw == "" {
		return defaultRotationPeriod
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		log.Printf("Invalid ROTATION_PERIOD_SECONDS %q, using default", raw)
		return defaultRotationPeriod
	}
	return time.Duration(secs) * time.Second
}

// GeneratedFilesDir returns the directory menu PDFs and QR codes are written
// to. The directory is created if missing.
func GeneratedFilesDir() string {
	dir := os.Getenv("GENERATED_FILES_DIR")
	if dir == "" {
		dir = "./generated_files"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create generated files directory %s: %v", dir, err)
	}
	return dir
}

// BaseURL returns the externally reachable base URL used when building
// download links embedded in QR codes.
func BaseURL() string {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base
}
