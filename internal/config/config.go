// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables, and
// an optional JSON config file.
package config

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string

	// EncryptionKey is the hex-encoded 32-byte key used to encrypt secrets
	// at rest. Supplied once at process start.
	EncryptionKey string

	// LogLevel sets the structured-logging level.
	LogLevel string

	// CertFile and KeyFile are the server TLS certificate and key paths.
	CertFile string
	KeyFile  string

	// CACertFile is the CA certificate used to verify client certificates.
	CACertFile string

	// Config is the path to the JSON config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8443", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.CertFile, "cert", "certs/server.crt", "server TLS certificate")
	flag.StringVar(&options.KeyFile, "key", "certs/server.key", "server TLS key")
	flag.StringVar(&options.CACertFile, "ca", "certs/ca.crt", "CA certificate for client auth")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional JSON config file, a
// local .env file, and environment variables to set configuration values.
// Environment variables win. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if key := os.Getenv("ENCRYPTION_KEY"); key != "" {
		options.EncryptionKey = key
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	return options
}

// Key decodes the configured encryption key. It fails when the key is
// missing or is not exactly 32 bytes of hex.
func (o *Options) Key() ([]byte, error) {
	if o.EncryptionKey == "" {
		return nil, fmt.Errorf("encryption key is not configured")
	}
	key, err := hex.DecodeString(o.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
