package apiclient

import "docverify/internal/platform/config"

// NewFromConfig builds a client from the api section of the configuration.
// Extra options are applied after the configured ones.
func NewFromConfig(cfg config.API, opts ...Option) (*Client, error) {
	base := []Option{
		WithPolicy(Policy{
			MaxRetries:    cfg.MaxRetries,
			BaseDelay:     cfg.RetryDelay,
			BackoffFactor: cfg.BackoffFactor,
		}),
		WithTimeouts(cfg.Timeout, cfg.UploadTimeout),
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}
