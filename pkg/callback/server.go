// Package callback implements the short-lived loopback HTTP server that
// receives the browser redirect of an OAuth authorization-code login.
package callback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uipathcommunity/uipcli/pkg/auth"
	"github.com/uipathcommunity/uipcli/pkg/ratelimit"
)

const (
	// LoginPath serves the static redirect-target page.
	LoginPath = "/oidc/login"
	// TokensPath receives the code/state POST from the page.
	TokensPath = "/oidc/tokens"
	// ErrorsPath is the best-effort error-telemetry sink.
	ErrorsPath = "/oidc/errors"
	// HealthPath is the unauthenticated, unthrottled health probe.
	HealthPath = "/oidc/health"

	// DefaultErrorLogPath is where client-reported errors are appended.
	DefaultErrorLogPath = ".uipath/error.log"
)

// ExchangeFunc turns an authorization code into a validated token set. The
// orchestrator binds the PKCE verifier into it so the server never holds the
// verifier itself; the server supplies its bound port.
type ExchangeFunc func(ctx context.Context, code string, port int) (*auth.TokenResponse, error)

// Server is the temporary loopback callback server for one login attempt. One
// pending completion represents the eventual result; exactly one of the token
// route succeeding, the token route failing, or the overall timeout fulfills
// it.
type Server struct {
	log          *zap.Logger
	exchange     ExchangeFunc
	state        string
	port         int
	timeout      time.Duration
	errorLogPath string
	attemptID    string

	completion *Completion[*auth.TokenResponse]
	limiter    *ratelimit.IPRateLimiter
	listener   net.Listener
	httpSrv    *http.Server
	timer      *time.Timer
	stopOnce   sync.Once
}

// ServerConfig configures a callback server.
type ServerConfig struct {
	// Port to bind on 127.0.0.1. Zero asks the OS for a free port.
	Port int
	// State is the anti-CSRF token the callback must echo exactly.
	State string
	// Exchange is invoked only after the state check passes.
	Exchange ExchangeFunc
	// Timeout bounds the whole attempt; zero means auth.DefaultLoginTimeout.
	Timeout time.Duration
	// ErrorLogPath overrides DefaultErrorLogPath when non-empty.
	ErrorLogPath string
	// Log must be non-nil.
	Log *zap.Logger
}

// NewServer builds an idle callback server. Start binds it.
func NewServer(cfg ServerConfig) *Server {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = auth.DefaultLoginTimeout
	}
	errorLogPath := cfg.ErrorLogPath
	if errorLogPath == "" {
		errorLogPath = DefaultErrorLogPath
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:          log,
		exchange:     cfg.Exchange,
		state:        cfg.State,
		port:         cfg.Port,
		timeout:      timeout,
		errorLogPath: errorLogPath,
		attemptID:    uuid.NewString(),
		completion:   NewCompletion[*auth.TokenResponse](),
	}
}

// Start binds the listener and begins serving. A port held by another process
// is reported as auth.ErrPortInUse, distinct from other startup failures, so
// the caller can suggest another port.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port)))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w: port %d", auth.ErrPortInUse, s.port)
		}
		return fmt.Errorf("failed to start callback listener: %w", err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.limiter = ratelimit.New(ratelimit.DefaultCallbackConfig())
	s.httpSrv = &http.Server{Handler: s.buildEngine(), ReadHeaderTimeout: 10 * time.Second}

	s.timer = time.AfterFunc(s.timeout, func() {
		if s.completion.Reject(auth.ErrLoginTimeout) {
			s.log.Warn("login attempt timed out", zap.String("attempt", s.attemptID))
			s.Stop()
		}
	})

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.completion.Reject(fmt.Errorf("callback server failed: %w", err))
		}
	}()

	s.log.Debug("callback server listening",
		zap.Int("port", s.port),
		zap.String("attempt", s.attemptID))
	return nil
}

// Port returns the bound port. Valid after Start.
func (s *Server) Port() int {
	return s.port
}

// Wait blocks until the attempt completes, times out, or ctx ends. A ctx end
// rejects the pending completion so no other waiter hangs.
func (s *Server) Wait(ctx context.Context) (*auth.TokenResponse, error) {
	select {
	case <-ctx.Done():
		s.completion.Reject(auth.ErrLoginCancelled)
		<-s.completion.Done()
		return s.completion.Wait(context.Background())
	case <-s.completion.Done():
		return s.completion.Wait(context.Background())
	}
}

// Stop shuts the server down. Idempotent; clears the pending timeout, closes
// the listener without draining in-flight connections, and rejects the
// completion if nothing fulfilled it yet.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.completion.Reject(auth.ErrLoginCancelled)
		if s.httpSrv != nil {
			_ = s.httpSrv.Close()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
	})
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(s.log, time.RFC3339, true),
		ginzap.RecoveryWithZap(s.log, true),
	)
	engine.Use(cors.New(cors.Config{
		AllowOrigins: localOrigins(s.port),
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	throttled := engine.Group("", s.limiter.Middleware())
	throttled.GET(LoginPath, s.handleLoginPage)
	throttled.POST(TokensPath, s.handleTokenExchange)
	throttled.POST(ErrorsPath, s.handleErrorReport)

	engine.GET(HealthPath, s.handleHealth)

	return engine
}

// localOrigins is the explicit cross-origin allow-list. Anything not on it is
// denied by the CORS middleware; there is deliberately no wildcard.
func localOrigins(port int) []string {
	return []string{
		fmt.Sprintf("http://localhost:%d", port),
		fmt.Sprintf("http://127.0.0.1:%d", port),
	}
}

func (s *Server) handleLoginPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, loginPage)
}

func (s *Server) handleTokenExchange(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.reject(c, fmt.Errorf("failed to read request body: %w", err))
		return
	}
	req, err := auth.ValidateTokenExchangeRequest(body)
	if err != nil {
		s.reject(c, err)
		return
	}
	// The single most important invariant of the subsystem: a state token
	// that does not match the generated one must never reach the exchanger.
	if req.State != s.state {
		s.reject(c, auth.ErrInvalidState)
		return
	}

	token, err := s.exchange(c.Request.Context(), req.Code, s.port)
	if err != nil {
		s.reject(c, err)
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.completion.Resolve(token) {
		s.log.Info("login callback resolved", zap.String("attempt", s.attemptID))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// reject answers the browser with 400 and rejects the pending completion.
// Later callbacks after fulfillment still get a valid HTTP response so the
// browser never hangs.
func (s *Server) reject(c *gin.Context, err error) {
	message := err.Error()
	if errors.Is(err, auth.ErrInvalidState) {
		message = "Invalid state parameter"
	}
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
	if s.completion.Reject(err) {
		s.log.Warn("login callback rejected",
			zap.String("attempt", s.attemptID),
			zap.Error(err))
	}
}

func (s *Server) handleErrorReport(c *gin.Context) {
	var report struct {
		Error string `json:"error"`
	}
	_ = c.ShouldBindJSON(&report)
	s.appendErrorLog(report.Error)
	c.Status(http.StatusOK)
}

// appendErrorLog is best-effort: a failure to record a client-side diagnostic
// must never fail the surrounding login.
func (s *Server) appendErrorLog(message string) {
	if message == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.errorLogPath), 0o700); err != nil {
		s.log.Debug("failed to create error log dir", zap.Error(err))
		return
	}
	f, err := os.OpenFile(s.errorLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		s.log.Debug("failed to open error log", zap.Error(err))
		return
	}
	defer func() {
		_ = f.Close()
	}()
	line := fmt.Sprintf("%s [%s] %s\n", time.Now().UTC().Format(time.RFC3339), s.attemptID, message)
	if _, err := f.WriteString(line); err != nil {
		s.log.Debug("failed to append error log", zap.Error(err))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "port": s.port})
}
