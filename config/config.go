/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads the composition root's settings. Per SPEC_FULL.md
// §10.3 there is no generic registry: each component (buffer pool,
// connection session, connection limiter, request limiter, logger) already
// validates its own Options struct, and Config is just the typed shape that
// viper decodes a file/env/default layer into before those Options are
// built.
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	libcon "github.com/nabbar/pktserver/conn"
	libconlmt "github.com/nabbar/pktserver/connlimit"
	liblog "github.com/nabbar/pktserver/logger"
	libratlmt "github.com/nabbar/pktserver/ratelimit"
	libsiz "github.com/nabbar/pktserver/size"
)

var validate = validator.New()

const (
	defaultInactivityThreshold = 5 * time.Minute
	defaultCleanupInterval     = time.Minute
	defaultRateWindow          = time.Minute
	defaultLockout             = 30 * time.Second
)

// BufferConfig sizes the pool C1 rents connection buffers from.
type BufferConfig struct {
	MaxBufferSizeBytes int64   `mapstructure:"max_buffer_size_bytes" validate:"required,gt=0"`
	BucketSizesBytes   []int64 `mapstructure:"bucket_sizes_bytes" validate:"omitempty,dive,gt=0"`
}

// Buckets returns the configured bucket ladder as size.Size values, nil
// when BucketSizesBytes is empty — the composition root then falls back to
// buffer.DefaultBuckets(MaxSize()).
func (b BufferConfig) Buckets() []libsiz.Size {
	if len(b.BucketSizesBytes) == 0 {
		return nil
	}
	out := make([]libsiz.Size, 0, len(b.BucketSizesBytes))
	for _, v := range b.BucketSizesBytes {
		out = append(out, libsiz.ParseInt64(v))
	}
	return out
}

// MaxSize returns MaxBufferSizeBytes as a size.Size.
func (b BufferConfig) MaxSize() libsiz.Size {
	return libsiz.ParseInt64(b.MaxBufferSizeBytes)
}

// SessionConfig configures each accepted connection's C4 session.
type SessionConfig struct {
	IncomingCapacity int `mapstructure:"incoming_capacity" validate:"required,gt=0"`
	StackAllocLimit  int `mapstructure:"stack_alloc_limit" validate:"required,gt=0"`
}

// Options adapts SessionConfig to conn.Options.
func (s SessionConfig) Options() libcon.Options {
	return libcon.Options{
		IncomingCapacity: s.IncomingCapacity,
		StackAllocLimit:  s.StackAllocLimit,
	}
}

// Config is the composition root's fully decoded, validated settings tree.
type Config struct {
	// Listen is the TCP address (host:port) the server accepts connections on.
	Listen string `mapstructure:"listen" validate:"required"`

	Buffer    BufferConfig      `mapstructure:"buffer" validate:"required"`
	Session   SessionConfig     `mapstructure:"session" validate:"required"`
	ConnLimit libconlmt.Options `mapstructure:"conn_limit" validate:"required"`
	RateLimit libratlmt.Options `mapstructure:"rate_limit" validate:"required"`
	Logger    liblog.Options    `mapstructure:"logger" validate:"required"`
}

// Validate checks Config's own struct tags plus every nested component's
// own Validate, so one call surfaces the first failure from any layer.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return ErrorInvalidConfig.Error(err)
	}
	if err := c.ConnLimit.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	return nil
}

// Default returns the zero-configuration Config a composition root falls
// back to when no file, flag, or environment variable overrides a key.
func Default() *Config {
	return &Config{
		Listen: "0.0.0.0:9443",
		Buffer: BufferConfig{
			MaxBufferSizeBytes: 64 * 1024,
		},
		Session: SessionConfig{
			IncomingCapacity: 256,
			StackAllocLimit:  512,
		},
		ConnLimit: libconlmt.Options{
			MaxPerEndpoint:      64,
			InactivityThreshold: defaultInactivityThreshold,
			CleanupInterval:     defaultCleanupInterval,
		},
		RateLimit: libratlmt.Options{
			Default: libratlmt.Level{
				MaxAllowedRequests: 100,
				TimeWindow:         defaultRateWindow,
				LockoutDuration:    defaultLockout,
			},
		},
		Logger: liblog.Options{
			Level:  liblog.InfoLevel,
			Output: liblog.OutputStderr,
		},
	}
}

func applyDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("listen", def.Listen)
	v.SetDefault("buffer.max_buffer_size_bytes", def.Buffer.MaxBufferSizeBytes)
	v.SetDefault("session.incoming_capacity", def.Session.IncomingCapacity)
	v.SetDefault("session.stack_alloc_limit", def.Session.StackAllocLimit)
	v.SetDefault("conn_limit.maxperendpoint", def.ConnLimit.MaxPerEndpoint)
	v.SetDefault("conn_limit.inactivitythreshold", def.ConnLimit.InactivityThreshold)
	v.SetDefault("conn_limit.cleanupinterval", def.ConnLimit.CleanupInterval)
	v.SetDefault("rate_limit.default.maxallowedrequests", def.RateLimit.Default.MaxAllowedRequests)
	v.SetDefault("rate_limit.default.timewindow", def.RateLimit.Default.TimeWindow)
	v.SetDefault("rate_limit.default.lockoutduration", def.RateLimit.Default.LockoutDuration)
	v.SetDefault("logger.level", def.Logger.Level)
	v.SetDefault("logger.output", def.Logger.Output)
}

// stringToLevelHookFunc lets a config file write logger.level as a name
// ("debug", "warn") instead of the Level enum's raw numeric value.
func stringToLevelHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(liblog.InfoLevel) {
			return data, nil
		}
		return liblog.Parse(data.(string)), nil
	}
}

// Load reads configuration from path (if non-empty), overlays environment
// variables prefixed PKTSERVER_, merges defaults for anything left unset,
// and returns a validated Config. path may be empty to load defaults/env
// only — matching the CLI's "-c" flag being optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PKTSERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ErrorReadConfig.Error(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToLevelHookFunc(),
	))); err != nil {
		return nil, ErrorDecodeConfig.Error(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
