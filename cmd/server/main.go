// Package main initializes and starts the passvault HTTPS server, setting up
// configuration, logging, the database, the cipher, repositories, services,
// handlers, and mutual TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	nethttp "net/http"

	"passvault/internal/config"
	"passvault/internal/crypto"
	"passvault/internal/db"
	"passvault/internal/logger"
	"passvault/internal/repository"
	"passvault/internal/server/handler/http"
	"passvault/internal/service"

	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// The process-wide encryption key is configuration, never ambient state.
	key, err := options.Key()
	if err != nil {
		zapLogger.Fatal("cannot load encryption key", zap.Error(err))
	}
	cipher, err := crypto.New(key)
	if err != nil {
		zapLogger.Fatal("cannot build cipher", zap.Error(err))
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Periodically sweep stored ciphertexts for corruption.
	db.StartIntegrityAuditor(context.Background(), postgresDB, cipher,
		time.Hour,
		zapLogger,
	)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	secretRepo := repository.NewPostgresSecretRepository(postgresDB)
	shareRepo := repository.NewPostgresShareRepository(postgresDB)

	// Initialize business-logic services.
	secretService := service.NewSecretService(secretRepo, cipher, zapLogger)
	shareService := service.NewShareService(shareRepo, secretService, userRepo, zapLogger)

	// Create HTTP handlers for secret and share endpoints.
	secretHandler := &http.SecretHandler{SecretService: secretService}
	shareHandler := &http.ShareHandler{ShareService: shareService}

	// Build the router with middleware and routes.
	router := http.NewRouter(secretHandler, shareHandler, userRepo, zapLogger)

	// Load server TLS certificate and key.
	cert, err := tls.LoadX509KeyPair(options.CertFile, options.KeyFile)
	if err != nil {
		zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
	}

	// Load and append CA certificate for client cert verification.
	caCert, err := os.ReadFile(options.CACertFile)
	if err != nil {
		zapLogger.Fatal("failed to read CA cert", zap.Error(err))
	}
	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
		zapLogger.Fatal("failed to append CA cert to pool")
	}

	// Every endpoint acts on behalf of a user, so client certs are required.
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    caCertPool,
		MinVersion:   tls.VersionTLS12,
	}

	// Create and start the HTTPS server.
	server := &nethttp.Server{
		Addr:      options.Addr,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
	if err := server.ListenAndServeTLS("", ""); err != nil {
		zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
	}
}
