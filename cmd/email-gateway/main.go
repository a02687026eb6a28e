// Package main is the entry point for the email gateway.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shineum/email-gateway/internal/api"
	"github.com/shineum/email-gateway/internal/auth"
	"github.com/shineum/email-gateway/internal/config"
	"github.com/shineum/email-gateway/internal/provider"
	"github.com/shineum/email-gateway/internal/provider/ses"
	"github.com/shineum/email-gateway/internal/provider/smtp"
	"github.com/shineum/email-gateway/internal/provider/stdout"
	"github.com/shineum/email-gateway/internal/ratelimit"
	"github.com/shineum/email-gateway/internal/render"
	"github.com/shineum/email-gateway/internal/service"
	gwtls "github.com/shineum/email-gateway/internal/tls"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)
	gin.SetMode(gin.ReleaseMode)

	// Select email delivery provider
	prov := selectProvider(cfg)

	renderer, err := render.New(cfg.Templates.Dir, cfg.Templates.Cache)
	if err != nil {
		slog.Error("failed to setup template renderer", "error", err)
		os.Exit(1)
	}

	svc := service.NewEmailService(prov, renderer, cfg.API.Sender)
	authSvc := auth.NewService(cfg.API.Key)
	limiter := ratelimit.New(cfg.API.RateLimitPerMinute, time.Minute)

	router := api.NewRouter(svc, authSvc, limiter)

	// Optional TLS for the listener
	tlsConfig, tlsMode, err := setupTLS(cfg)
	if err != nil {
		slog.Error("failed to setup TLS", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(cfg.HTTP.Listen, router, tlsConfig)

	slog.Info("starting email-gateway",
		"listen", cfg.HTTP.Listen,
		"provider", prov.Name(),
		"rate_limit_per_minute", cfg.API.RateLimitPerMinute,
		"template_dir", cfg.Templates.Dir,
		"tls_mode", tlsMode,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	// Start the server (blocks until context is cancelled)
	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("email-gateway stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// setupTLS returns the listener TLS configuration, or nil for plain HTTP.
// With TLS enabled but no certificate files, a self-signed pair is generated.
func setupTLS(cfg *config.Config) (*tls.Config, string, error) {
	if !cfg.TLS.Enabled {
		return nil, "off", nil
	}

	tlsConfig, err := gwtls.LoadOrGenerateTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, "", err
	}

	mode := "self-signed"
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		mode = "file"
	}
	return tlsConfig, mode, nil
}

// selectProvider chooses the email delivery backend based on configuration.
// If PROVIDER is set it takes precedence; otherwise SES is auto-detected,
// then SMTP, with stdout as the no-config fallback.
func selectProvider(cfg *config.Config) provider.Provider {
	switch cfg.Provider {
	case "ses":
		if !cfg.SESConfigured() {
			slog.Error("SES provider selected but SES_REGION is required")
			os.Exit(1)
		}
		slog.Info("using AWS SES provider", "region", cfg.SES.Region)
		p, err := ses.New(context.Background(), ses.Config{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})
		if err != nil {
			slog.Error("failed to create SES provider", "error", err)
			os.Exit(1)
		}
		return p

	case "smtp":
		if !cfg.SMTPConfigured() {
			slog.Error("SMTP provider selected but SMTP_HOST is required")
			os.Exit(1)
		}
		slog.Info("using SMTP provider", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		return smtp.New(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})

	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New()

	case "":
		// Auto-detection fallback
		if cfg.SESConfigured() {
			slog.Info("using AWS SES provider (auto-detected)", "region", cfg.SES.Region)
			p, err := ses.New(context.Background(), ses.Config{
				Region:          cfg.SES.Region,
				AccessKeyID:     cfg.SES.AccessKeyID,
				SecretAccessKey: cfg.SES.SecretAccessKey,
			})
			if err != nil {
				slog.Error("failed to create SES provider", "error", err)
				os.Exit(1)
			}
			return p
		}
		if cfg.SMTPConfigured() {
			slog.Info("using SMTP provider (auto-detected)", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
			return smtp.New(smtp.Config{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
			})
		}
		slog.Info("no provider configured, using stdout provider")
		return stdout.New()

	default:
		slog.Error("unknown provider", "provider", cfg.Provider)
		os.Exit(1)
		return nil
	}
}
