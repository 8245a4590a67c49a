package kafka

import (
	"crypto/tls"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/bibbank/frauddetect/pkg/tlsutil"
)

// resolveSASL returns the SASL mechanism named by the config.
func resolveSASL(cfg Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	case "PLAIN", "":
		return &plain.Mechanism{
			Username: cfg.SASLUsername,
			Password: cfg.SASLPassword,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}

func tlsConfig(cfg Config) (*tls.Config, error) {
	if !cfg.TLS {
		return nil, nil
	}
	return tlsutil.ClientConfig(cfg.TLSCAFile, cfg.TLSSkipVerify)
}

// newDialer builds the reader dialer, or nil when neither TLS nor SASL is on.
func newDialer(cfg Config) (*kafkago.Dialer, error) {
	if !cfg.TLS && !cfg.SASLEnabled {
		return nil, nil
	}
	tc, err := tlsConfig(cfg)
	if err != nil {
		return nil, err
	}
	dialer := &kafkago.Dialer{ClientID: cfg.ClientID, TLS: tc}
	if cfg.SASLEnabled {
		m, err := resolveSASL(cfg)
		if err != nil {
			return nil, err
		}
		dialer.SASLMechanism = m
	}
	return dialer, nil
}

// newTransport builds the writer transport, or nil for the default.
func newTransport(cfg Config) (*kafkago.Transport, error) {
	if !cfg.TLS && !cfg.SASLEnabled && cfg.ClientID == "" {
		return nil, nil
	}
	tc, err := tlsConfig(cfg)
	if err != nil {
		return nil, err
	}
	transport := &kafkago.Transport{ClientID: cfg.ClientID, TLS: tc}
	if cfg.SASLEnabled {
		m, err := resolveSASL(cfg)
		if err != nil {
			return nil, err
		}
		transport.SASL = m
	}
	return transport, nil
}
