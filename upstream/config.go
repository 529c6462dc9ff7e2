package upstream

import "time"

// EndpointConfig describes one upstream JSON-RPC node endpoint: where
// to send requests, how many can be packed in a single HTTP batch, and
// the rate-limit window it must be kept under.
type EndpointConfig struct {
	URL              string        `toml:"url"`
	BatchSizeLimit   int           `toml:"batch_size_limit"`
	ReqLimit         int           `toml:"req_limit"`
	ReqLimitWindow   time.Duration `toml:"req_limit_window"`
	HealthPollPeriod time.Duration `toml:"health_poll_period"`
	JobQueueSize     int           `toml:"job_queue_size"`
}

func (c EndpointConfig) withDefaults() EndpointConfig {
	if c.BatchSizeLimit <= 0 {
		c.BatchSizeLimit = 50
	}
	if c.ReqLimit <= 0 {
		c.ReqLimit = 10
	}
	if c.ReqLimitWindow <= 0 {
		c.ReqLimitWindow = time.Second
	}
	if c.HealthPollPeriod <= 0 {
		c.HealthPollPeriod = 5 * time.Second
	}
	if c.JobQueueSize <= 0 {
		c.JobQueueSize = 64
	}
	return c
}
