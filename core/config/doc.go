// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/channelkit/core/config"
//
//	type RedisConfig struct {
//		ConnectionURL string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
//	func main() {
//		var cfg RedisConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 RedisConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 RedisConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently. The cache is keyed by the
// concrete struct type, so two distinct types with identical fields are
// still loaded separately.
//
// # Error Handling
//
// Load wraps parse failures with the configuration type name, so a missing
// required variable reports which config it belongs to. MustLoad panics
// with the same error.
package config
