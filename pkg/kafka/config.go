package kafka

import (
	"strings"
	"time"
)

// Config holds Kafka connection parameters.
type Config struct {
	ClientID      string
	ConsumerGroup string

	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// HandlerAttempts bounds how often a consumer runs its handler for one
	// message. Zero means three.
	HandlerAttempts int
	// RetryBackoff is the first pause between attempts; it doubles each time.
	RetryBackoff time.Duration

	// TLSCAFile optionally pins the broker CA; empty uses the system pool.
	TLSCAFile string

	// TLS enables TLS for Kafka connections.
	TLS           bool
	TLSSkipVerify bool
	SASLEnabled   bool
}

// Enabled reports whether any broker is configured.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
