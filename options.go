package signalmap

import (
	"github.com/agentstation/signalmap/pkg/eligibility"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/grouping"
	"github.com/agentstation/signalmap/pkg/matcher"
	"github.com/agentstation/signalmap/pkg/profile"
	"github.com/agentstation/signalmap/pkg/quality"
)

// Option is a function that configures an Engine.
type Option func(*config) error

// config holds the settings New assembles an Engine from.
type config struct {
	matcher  matcher.Config
	grouping []grouping.Option
	builder  []profile.Option
	quality  quality.Config
	policy   eligibility.Policy
}

func defaultConfig() *config {
	return &config{
		matcher: matcher.DefaultConfig(),
		quality: quality.DefaultConfig(),
		policy:  eligibility.DefaultPolicy(),
	}
}

// WithMatcherConfig sets the matcher thresholds.
func WithMatcherConfig(cfg matcher.Config) Option {
	return func(c *config) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.matcher = cfg
		return nil
	}
}

// WithBlocking sets the batch size above which grouping uses blocking
// buckets, and the normalized-name prefix length used as a bucket key.
// A threshold of zero disables blocking.
func WithBlocking(threshold, prefixLength int) Option {
	return func(c *config) error {
		if threshold < 0 {
			return errors.NewValidationError("blocking_threshold", threshold, "must not be negative")
		}
		if prefixLength < 1 {
			return errors.NewValidationError("prefix_length", prefixLength, "must be at least 1")
		}
		c.grouping = append(c.grouping, grouping.WithBlockingThreshold(threshold), grouping.WithPrefixLength(prefixLength))
		return nil
	}
}

// WithBuilderConfig applies profile builder settings.
func WithBuilderConfig(cfg profile.Config) Option {
	return func(c *config) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.builder = append(c.builder, profile.FromConfig(cfg)...)
		return nil
	}
}

// WithBuilderOptions passes options straight to the profile builder, e.g.
// to replace a field strategy.
func WithBuilderOptions(opts ...profile.Option) Option {
	return func(c *config) error {
		c.builder = append(c.builder, opts...)
		return nil
	}
}

// WithQualityConfig sets the quality weights and levels.
func WithQualityConfig(cfg quality.Config) Option {
	return func(c *config) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.quality = cfg
		return nil
	}
}

// WithPolicy sets the eligibility policy.
func WithPolicy(p eligibility.Policy) Option {
	return func(c *config) error {
		if err := p.Validate(); err != nil {
			return err
		}
		c.policy = p
		return nil
	}
}
