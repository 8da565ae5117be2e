package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for a document client and
// the transport underneath it.
type ClientConfig struct {
	// Connection settings
	Endpoint string
	Username string
	Password string
	DB       int

	// Resilience settings
	TimeoutSecond int
	RetryCount    int
	PoolSize      int

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Connection settings
	addSection("Connection")
	addField("Endpoint", c.Endpoint)
	if c.Username != "" {
		addField("Username", c.Username)
	}
	if c.Password != "" {
		addField("Password", "(set)")
	}
	addField("Database", strconv.Itoa(c.DB))

	// Resilience settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Pool Size", strconv.Itoa(c.PoolSize))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
