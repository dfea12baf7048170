package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// dotenvOnce makes the optional .env file load exactly once per process.
	dotenvOnce sync.Once

	// cache holds one parsed value per configuration type.
	cache sync.Map // reflect.Type -> parsed struct value
)

// Load populates cfg from environment variables using its env struct tags.
// Each configuration type is parsed once per process and cached; later
// calls for the same type return the cached value regardless of
// environment changes in between. A .env file in the working directory is
// loaded into the environment on first use, if present.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Missing .env is the normal case outside local development.
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}

	// LoadOrStore keeps the winner if two goroutines parsed concurrently,
	// so every caller observes the same value.
	actual, _ := cache.LoadOrStore(key, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure. Useful during application
// startup where a bad configuration should stop the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
