package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultDotEnvFiles are the files LoadDotEnv reads when called without paths.
var DefaultDotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv loads environment variables from the given files, or from
// DefaultDotEnvFiles when none are given. Missing files are skipped and
// variables already present in the environment are never overwritten.
// It returns the files that were actually loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = DefaultDotEnvFiles
	}

	var loaded []string
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("failed to load %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
