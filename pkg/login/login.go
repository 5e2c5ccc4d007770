// Package login orchestrates one browser-based PKCE login end to end: PKCE
// material, authorize URL, loopback callback server, token exchange, tenant
// resolution and persistence.
package login

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/uipathcommunity/uipcli/pkg/auth"
	"github.com/uipathcommunity/uipcli/pkg/callback"
	"github.com/uipathcommunity/uipcli/pkg/store"
	"github.com/uipathcommunity/uipcli/pkg/tenant"
)

// Options wires one login flow. Everything is injected explicitly; the flow
// consults no process-wide state.
type Options struct {
	Config    auth.Config
	Port      int // 0 uses Config.DefaultPort
	FolderKey string
	Prompter  tenant.Prompter
	Store     *store.Store
	Log       *zap.Logger
	Out       io.Writer

	// OpenBrowser launches the system browser; nil uses the platform default.
	// The authorize URL is always printed as a fallback.
	OpenBrowser func(url string) error
	// Exchanger overrides the token exchange client, for tests.
	Exchanger auth.Exchanger
}

// Result is a completed login.
type Result struct {
	Token  *auth.TokenResponse
	Tenant tenant.SelectedTenant
}

// Flow is a single login attempt. Use one Flow per attempt.
type Flow struct {
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	server *callback.Server
}

// New builds a flow, filling in defaults for anything not injected.
func New(opts Options) *Flow {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Store == nil {
		opts.Store = store.NewStore(opts.Log)
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = openBrowser
	}
	return &Flow{opts: opts, log: opts.Log}
}

// Login runs the whole sequence and persists the result. All component
// failures bubble up here; user-facing messaging is finalized by the caller.
func (f *Flow) Login(ctx context.Context) (*Result, error) {
	cfg := f.opts.Config

	pkce, err := auth.GeneratePKCE()
	if err != nil {
		return nil, err
	}

	port := f.opts.Port
	if port == 0 {
		port = cfg.DefaultPort
	}
	// The probe is advisory; the bind in Start is the authoritative check.
	if port != 0 && !callback.PortAvailable(port) {
		return nil, fmt.Errorf("%w: port %d", auth.ErrPortInUse, port)
	}

	if _, known := cfg.BaseURL(); !known {
		f.log.Warn("unknown domain, falling back to cloud", zap.String("domain", cfg.Domain))
	}

	exchanger := f.opts.Exchanger
	if exchanger == nil {
		exchanger = auth.NewTokenExchangeClient(cfg, nil)
	}

	server := callback.NewServer(callback.ServerConfig{
		Port:  port,
		State: pkce.State,
		Exchange: func(ctx context.Context, code string, port int) (*auth.TokenResponse, error) {
			return exchanger.Exchange(ctx, code, pkce.CodeVerifier, port)
		},
		Timeout: cfg.Timeout,
		Log:     f.log,
	})
	f.mu.Lock()
	f.server = server
	f.mu.Unlock()

	if err := server.Start(); err != nil {
		return nil, err
	}
	defer server.Stop()

	authURL, err := auth.BuildAuthorizeURL(cfg, pkce, server.Port())
	if err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(f.opts.Out, "Open the following URL in your browser to sign in:\n%s\n", authURL)
	if err := f.opts.OpenBrowser(authURL); err != nil {
		f.log.Debug("failed to open browser", zap.Error(err))
	}

	token, err := server.Wait(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := tenant.NewResolver(cfg, f.opts.Prompter, f.log).Resolve(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := f.opts.Store.Save(token, cfg, selected, f.opts.FolderKey); err != nil {
		return nil, err
	}

	return &Result{Token: token, Tenant: selected}, nil
}

// Stop cancels a pending attempt; the waiter gets auth.ErrLoginCancelled.
func (f *Flow) Stop() {
	f.mu.Lock()
	server := f.server
	f.mu.Unlock()
	if server != nil {
		server.Stop()
	}
}
