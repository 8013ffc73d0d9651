package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mtlprog/tasktrack/internal/config"
)

// envFilePath returns the dotenv file to load, overridable with TASKTRACK_ENV_FILE.
func envFilePath() string {
	if path := os.Getenv("TASKTRACK_ENV_FILE"); path != "" {
		return path
	}
	return config.DefaultEnvFile
}

// loadEnvFile loads path into the environment. A missing file is not an error
// and variables already set in the environment win.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
