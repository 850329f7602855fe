// internal/workers/eligibility/list-eligible-products/config.go
package listeligibleproducts

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
