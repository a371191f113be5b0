package redmineapi

import "time"

// Config holds the REST connection settings.
type Config struct {
	BaseURL            string
	APIKey             string
	InsecureSkipVerify bool
	Timeout            time.Duration // per HTTP request
	MaxRetries         int
	PageSize           int
	Backoff            time.Duration // first retry delay, doubled per attempt
}

// DefaultConfig returns a Config with sensible defaults and no server.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		PageSize:   100,
		Backoff:    300 * time.Millisecond,
	}
}

// maxPageSize is the largest limit Redmine honors.
const maxPageSize = 100

func (c Config) pageSize() int {
	if c.PageSize <= 0 || c.PageSize > maxPageSize {
		return maxPageSize
	}
	return c.PageSize
}
