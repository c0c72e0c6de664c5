package api

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the media service's runtime configuration, read from the
// environment.
type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"5001"`
	// Bucket is the default GCS bucket for media lookups when a request
	// does not name one.
	Bucket string `env:"GCS_BUCKET"`
	// CORSOrigins lists the origins allowed to call the API. Defaults to
	// the Angular development server.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:4200,http://127.0.0.1:4200"`
	// OutputDir is where finished compositions are copied before the
	// scratch directory is removed.
	OutputDir string `env:"OUTPUT_DIR" envDefault:"/tmp"`
}

// LoadConfig parses the service configuration from environment
// variables.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
