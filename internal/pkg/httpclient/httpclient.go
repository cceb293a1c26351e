package httpclient

import (
	"net/http"
	"time"

	"rental-service/config"

	circuit "github.com/rubyist/circuitbreaker"
)

const (
	TypeConsecutive = "consecutive"
	TypeErrorRate   = "error_rate"
)

// InitCircuitBreaker builds the breaker that guards every outbound HTTP call
// to collaborators (user service, car catalog, payment provider).
func InitCircuitBreaker(cfg *config.HttpClientConfig, breakerType string) *circuit.Breaker {
	switch breakerType {
	case TypeErrorRate:
		return circuit.NewRateBreaker(cfg.ErrorRate, cfg.MinSamples)
	case TypeConsecutive:
		return circuit.NewConsecutiveBreaker(cfg.ConsecutiveFailures)
	default:
		return circuit.NewThresholdBreaker(cfg.ConsecutiveFailures)
	}
}

func InitHttpClient(cfg *config.HttpClientConfig, cb *circuit.Breaker) *circuit.HTTPClient {
	client := circuit.NewHTTPClient(time.Duration(cfg.Timeout)*time.Second, cfg.ConsecutiveFailures, &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	})
	client.BreakerLookup = func(c *circuit.HTTPClient, val interface{}) *circuit.Breaker {
		return cb
	}
	return client
}
