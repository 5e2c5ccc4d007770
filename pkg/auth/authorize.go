package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultDomain is the fallback domain key when the configured one is
	// unknown. The fallback is deliberate and logged by the orchestrator, not
	// silent: an unrecognized --domain still lands on the public cloud.
	DefaultDomain = "cloud"

	// DefaultPort is the loopback port baked into the registered redirect URI.
	DefaultPort = 8104

	// DefaultRedirectURI is the redirect template; the default port inside it
	// is substituted with the actually bound port.
	DefaultRedirectURI = "http://localhost:8104/oidc/login"

	// DefaultLoginTimeout bounds one whole login attempt.
	DefaultLoginTimeout = 5 * time.Minute

	authorizePath = "/identity_/connect/authorize"
	tokenPath     = "/identity_/connect/token"
)

// defaultBaseURLs maps domain keys to identity/portal base URLs.
var defaultBaseURLs = map[string]string{
	"cloud":   "https://cloud.uipath.com",
	"alpha":   "https://alpha.uipath.com",
	"staging": "https://staging.uipath.com",
}

// Config carries everything one login attempt needs. It is constructed once at
// startup and passed down; no package-level state is consulted.
type Config struct {
	Domain      string
	ClientID    string
	Scope       string
	RedirectURI string
	DefaultPort int
	Timeout     time.Duration

	// BaseURLs overrides the built-in domain map when non-nil.
	BaseURLs map[string]string
}

// DefaultConfig returns the stock cloud configuration.
func DefaultConfig() Config {
	return Config{
		Domain:      DefaultDomain,
		ClientID:    "36dea5b8-e8bb-423d-8e7b-c808df8f1c00",
		Scope:       "openid profile offline_access IdentityServerApi",
		RedirectURI: DefaultRedirectURI,
		DefaultPort: DefaultPort,
		Timeout:     DefaultLoginTimeout,
	}
}

// BaseURL resolves the configured domain to a base URL, falling back to the
// cloud domain when the key is unrecognized. The second return reports whether
// the domain was known so callers can surface the fallback.
func (c Config) BaseURL() (string, bool) {
	urls := c.BaseURLs
	if urls == nil {
		urls = defaultBaseURLs
	}
	if base, ok := urls[c.Domain]; ok {
		return base, true
	}
	base, ok := urls[DefaultDomain]
	if !ok {
		return "", false
	}
	return base, false
}

// RedirectURL substitutes the configured default port in the redirect template
// with the actually bound port, supporting dynamic port assignment.
func (c Config) RedirectURL(port int) string {
	from := ":" + strconv.Itoa(c.defaultPort())
	to := ":" + strconv.Itoa(port)
	return strings.Replace(c.redirectURI(), from, to, 1)
}

// BuildAuthorizeURL composes the provider authorize URL with the standard
// Authorization Code + PKCE parameters. Pure; no side effects.
func BuildAuthorizeURL(cfg Config, pkce PKCEChallenge, port int) (string, error) {
	base, _ := cfg.BaseURL()
	if base == "" {
		return "", fmt.Errorf("no base URL configured for domain %q", cfg.Domain)
	}
	oauthCfg := oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURL(port),
		Scopes:      strings.Fields(cfg.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  base + authorizePath,
			TokenURL: base + tokenPath,
		},
	}
	return oauthCfg.AuthCodeURL(pkce.State,
		oauth2.SetAuthURLParam("code_challenge", pkce.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

func (c Config) defaultPort() int {
	if c.DefaultPort != 0 {
		return c.DefaultPort
	}
	return DefaultPort
}

func (c Config) redirectURI() string {
	if c.RedirectURI != "" {
		return c.RedirectURI
	}
	return DefaultRedirectURI
}
