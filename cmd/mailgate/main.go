package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mailgate/internal/auth"
	"mailgate/internal/conf"
	"mailgate/internal/ews"
	"mailgate/internal/gateway"
	"mailgate/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	printAuthURL := flag.Bool("auth-url", false, "Print the OAuth2 authorization URL and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if *printAuthURL {
		if err := printAuthorizationURL(cfg, logger); err != nil {
			logger.Error("building authorization URL", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("starting mailgate", "gateway_url", cfg.Gateway.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(logger)
	if err := registerProtocols(gw, cfg, logger); err != nil {
		logger.Error("configuring protocol servers", "error", err)
		os.Exit(1)
	}

	if err := gw.Run(ctx); err != nil {
		logger.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("mailgate shutdown complete")
}

func loadConfig(path string) (*conf.Config, error) {
	if path != "" {
		return conf.LoadConfigFile(path)
	}
	return conf.LoadConfig()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// registerProtocols wires every enabled protocol listener. Only IMAP is
// implemented here; the sibling protocols follow the same supervisor and
// translation-client pattern in their own handlers.
func registerProtocols(gw *gateway.Gateway, cfg *conf.Config, logger *slog.Logger) error {
	if !cfg.IMAP.Enabled && !cfg.POP3.Enabled && !cfg.SMTP.Enabled && !cfg.CalDAV.Enabled && !cfg.LDAP.Enabled {
		return fmt.Errorf("no protocols enabled")
	}

	if cfg.IMAP.Enabled {
		factory, err := backendFactory(cfg, logger)
		if err != nil {
			return fmt.Errorf("building backend factory: %w", err)
		}
		gw.Register(server.NewIMAPServer(factory, logger), fmt.Sprintf(":%d", cfg.IMAP.Port))
	}

	for name, pc := range map[string]conf.ProtocolConfig{
		"pop3":   cfg.POP3,
		"smtp":   cfg.SMTP,
		"caldav": cfg.CalDAV,
		"ldap":   cfg.LDAP,
	} {
		if pc.Enabled {
			logger.Warn("protocol enabled but not available in this build", "protocol", name, "port", pc.Port)
		}
	}
	return nil
}

// backendFactory builds one translation client per login. With an OAuth2
// registration configured all sessions share one token lifecycle client and
// authenticate with its bearer token; otherwise each session's own
// credentials are used as-is.
func backendFactory(cfg *conf.Config, logger *slog.Logger) (server.BackendFactory, error) {
	var oauthProvider auth.Provider
	if cfg.OAuth2.Configured() {
		client, err := auth.NewOAuth2Client(cfg.OAuth2, logger)
		if err != nil {
			return nil, err
		}
		if cfg.OAuth2.TokenStore != "" {
			store, err := auth.OpenTokenStore(cfg.OAuth2.TokenStore)
			if err != nil {
				logger.Warn("token store unavailable, continuing without persistence", "error", err)
			} else {
				client.UseStore(store)
			}
		}
		oauthProvider = auth.NewOAuth2(client)
	}

	return func(ctx context.Context, creds auth.Credentials) (server.Backend, error) {
		provider := oauthProvider
		if provider == nil {
			provider = auth.NewBasic(creds.Username, creds.Password)
		}
		return ews.NewClient(ctx, cfg.Gateway.URL, provider, cfg.RemoteTimeout(), logger)
	}, nil
}

func printAuthorizationURL(cfg *conf.Config, logger *slog.Logger) error {
	client, err := auth.NewOAuth2Client(cfg.OAuth2, logger)
	if err != nil {
		return err
	}
	fmt.Println(client.AuthorizationURL("mailgate"))
	return nil
}
