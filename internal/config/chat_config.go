// Package config provides centralized configuration management for the chat service.
package config

import (
	"fmt"
	"time"
)

// ChatConfig centralizes the chat service limits.
// This improves maintainability by keeping all constants in one place.
type ChatConfig struct {
	// Timeouts
	ChatTimeout    time.Duration // Budget for one chat message (see config/timeouts.go)
	RefreshTimeout time.Duration // Budget for one full ETL refresh

	// Rate limiting configuration (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user (default: 15)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.1 = 1 per 10s)
	GlobalRateLimitRPS        float64 // Global rate limit in requests per second (default: 100)

	// Request limits
	MaxMessageLength  int // Maximum chat message length in runes (default: 1000)
	MaxChunksPerQuery int // Maximum retrieved chunks fed into a prompt (default: 5)
}

// Validate checks if the configuration is valid.
// Returns error describing validation failures.
func (c *ChatConfig) Validate() error {
	if c.ChatTimeout <= 0 {
		return fmt.Errorf("chat timeout must be positive, got %v", c.ChatTimeout)
	}

	if c.RefreshTimeout <= 0 {
		return fmt.Errorf("refresh timeout must be positive, got %v", c.RefreshTimeout)
	}

	if c.UserRateLimitBurst <= 0 {
		return fmt.Errorf("user rate limit burst must be positive, got %f", c.UserRateLimitBurst)
	}

	if c.UserRateLimitRefillPerSec <= 0 {
		return fmt.Errorf("user rate limit refill rate must be positive, got %f", c.UserRateLimitRefillPerSec)
	}

	if c.GlobalRateLimitRPS <= 0 {
		return fmt.Errorf("global rate limit RPS must be positive, got %f", c.GlobalRateLimitRPS)
	}

	if c.MaxMessageLength < 1 {
		return fmt.Errorf("max message length must be positive, got %d", c.MaxMessageLength)
	}

	if c.MaxChunksPerQuery < 1 {
		return fmt.Errorf("max chunks per query must be positive, got %d", c.MaxChunksPerQuery)
	}

	return nil
}
