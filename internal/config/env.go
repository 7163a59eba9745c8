package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvFiles are loaded in order. godotenv never overrides a variable that is
// already set, so earlier files and the real environment take precedence.
var EnvFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads whichever of EnvFiles exist in the working directory.
func LoadEnvFiles() error {
	for _, file := range EnvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}
