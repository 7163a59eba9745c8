package github

import "time"

// Config holds configuration for GitHub operations
type Config struct {
	PerPage           int
	RequestsPerSecond float64
	Burst             int
	PollInterval      time.Duration
	CodeownersPaths   []string
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PerPage:           100,
		RequestsPerSecond: 10,
		Burst:             1,
		PollInterval:      5 * time.Second,
		CodeownersPaths:   []string{".github/CODEOWNERS", "CODEOWNERS", "docs/CODEOWNERS"},
	}
}
