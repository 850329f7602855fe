// internal/common/camunda/client_test.go
package camunda

import (
	"errors"
	"testing"
	"time"

	"simple-mortgage/internal/common/config"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"i/o timeout", true},
		{"rpc error: code = NotFound desc = no such process", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 2*time.Second, backoff(rc, 1))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 3))
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 1500})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}
