package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/joshsymonds/gmailpack/internal/config"
	"github.com/joshsymonds/gmailpack/internal/gmail"
	"github.com/joshsymonds/gmailpack/internal/pack"
	"github.com/joshsymonds/gmailpack/internal/rate"
	"github.com/joshsymonds/gmailpack/internal/render"
	"github.com/joshsymonds/gmailpack/internal/runtime"
)

const defaultKeyringService = "gmailpack"

type clientFactory func(ctx context.Context, auth runtime.AuthOptions, cache runtime.CacheOptions) (gmail.Client, error)

// app carries per-invocation state shared by the subcommands.
type app struct {
	v         *viper.Viper
	settings  config.Settings
	logger    *slog.Logger
	out       io.Writer
	newClient clientFactory
	tokens    func(service, dir string) (*runtime.TokenStore, error)
	stops     []func()
}

func newApp() *app {
	return &app{
		v:      config.New(),
		out:    os.Stdout,
		logger: runtime.DefaultLogger(),
		newClient: func(ctx context.Context, auth runtime.AuthOptions, cache runtime.CacheOptions) (gmail.Client, error) {
			client, err := runtime.NewGmailClient(ctx, auth, cache)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		tokens: runtime.OpenTokenStore,
	}
}

// load resolves settings once flags have been parsed.
func (a *app) load(configFile string) error {
	if err := config.ReadFile(a.v, configFile); err != nil {
		return err
	}
	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings
	logger, err := runtime.NewLogger(os.Stderr, settings.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger.With("run", uuid.NewString())
	return nil
}

func (a *app) service(ctx context.Context, scope runtime.Scope) (*pack.Service, error) {
	token, err := a.accessToken()
	if err != nil {
		return nil, err
	}
	client, err := a.newClient(ctx,
		runtime.AuthOptions{Dir: a.settings.AuthDir, AccessToken: token, Scope: scope},
		runtime.CacheOptions{TTL: a.settings.CacheTTL, Size: a.settings.CacheSize},
	)
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}
	a.logger.DebugContext(ctx, "gmail client ready", "scope", scope, "static_token", token != "")

	bucket := rate.NewTokenBucket(a.settings.RPS)
	a.stops = append(a.stops, bucket.Stop)

	svc := pack.NewService(client, bucket, a.logger)
	svc.Concurrency = a.settings.Concurrency
	svc.PageSize = a.settings.PageSize
	svc.IncludeSpamTrash = a.settings.IncludeSpamTrash
	svc.Branding = a.settings.OutboundBranding()
	return svc, nil
}

func (a *app) accessToken() (string, error) {
	if a.settings.AccessToken != "" || a.settings.KeyringService == "" {
		return a.settings.AccessToken, nil
	}
	store, err := a.tokens(a.settings.KeyringService, a.keyringDir())
	if err != nil {
		return "", err
	}
	return store.AccessToken()
}

func (a *app) keyringDir() string {
	return filepath.Join(a.settings.AuthDir, "gmailpack")
}

func (a *app) render(v any) error {
	return render.Write(a.out, a.settings.Output, v)
}

func (a *app) close() {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
}
