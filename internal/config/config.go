package config

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	StorePath string
}

// Load reads the configuration from flags and environment, with a .env file
// as the lowest-priority source. PORT overrides the -port flag.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8090", "server port")
	storePath := flag.String("store", "", "sketch store file (ignored when a Postgres DSN is set)")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	path := strings.TrimSpace(*storePath)
	if envPath := strings.TrimSpace(os.Getenv("SKETCH_STORE_PATH")); envPath != "" {
		path = envPath
	}
	if path == "" {
		path = "tmp/sketches.json"
	}

	return &Config{
		Port:      *port,
		Env:       env,
		StorePath: path,
	}, nil
}
