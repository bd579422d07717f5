package scheduler

import "time"

// Config controls scheduler cadence and batch sizes.
type Config struct {
	// RunInterval is the aggregation tick; similarity and performance
	// recomputation run on the slower RecomputeInterval cadence.
	RunInterval       time.Duration
	RecomputeInterval time.Duration

	AggregateBatchSize int64
	AggregateTimeout   time.Duration
	RecomputeTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:        5 * time.Minute,
		RecomputeInterval:  24 * time.Hour,
		AggregateBatchSize: 10000,
		AggregateTimeout:   2 * time.Minute,
		RecomputeTimeout:   30 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RecomputeInterval <= 0 {
		c.RecomputeInterval = defaults.RecomputeInterval
	}
	if c.AggregateBatchSize <= 0 {
		c.AggregateBatchSize = defaults.AggregateBatchSize
	}
	if c.AggregateTimeout <= 0 {
		c.AggregateTimeout = defaults.AggregateTimeout
	}
	if c.RecomputeTimeout <= 0 {
		c.RecomputeTimeout = defaults.RecomputeTimeout
	}
	return c
}
