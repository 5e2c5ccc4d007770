package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/uipathcommunity/uipcli/pkg/auth"
	"github.com/uipathcommunity/uipcli/pkg/uipcli/config"
)

// Config seeds the root command; tests inject their own writer and paths.
type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
}

type runtimeState struct {
	configPath      string
	cfg             *config.Config
	domainOverride  string
	portOverride    int
	folderOverride  string
	storageOverride string
	nonInteractive  bool
	verbose         bool
	writer          io.Writer
	logger          *zap.Logger
}

type runtimeKey struct{}

// DefaultConfig returns the stock root command configuration.
func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
	}
}

// NewRootCommand builds the uipcli command tree.
func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter}

	root := &cobra.Command{
		Use:           "uipcli",
		Short:         "UiPath cloud CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.domainOverride == "" {
				rt.domainOverride = os.Getenv("UIPCLI_DOMAIN")
			}
			if rt.portOverride == 0 {
				if port, err := strconv.Atoi(os.Getenv("UIPCLI_PORT")); err == nil {
					rt.portOverride = port
				}
			}
			if rt.storageOverride == "" {
				rt.storageOverride = os.Getenv("UIPCLI_TOKEN_STORAGE")
			}
			if !rt.nonInteractive {
				rt.nonInteractive = strings.EqualFold(os.Getenv("UIPCLI_NON_INTERACTIVE"), "true")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("UIPCLI_VERBOSE"), "true")
			}
			if cmd.Name() == "version" {
				return nil
			}
			loaded, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.domainOverride, "domain", "d", "", "Cloud domain: cloud, alpha, staging")
	root.PersistentFlags().IntVarP(&rt.portOverride, "port", "p", 0, "Loopback callback port override")
	root.PersistentFlags().StringVar(&rt.folderOverride, "folder-key", "", "Folder key to persist with the login")
	root.PersistentFlags().StringVar(&rt.storageOverride, "token-storage", "", "Refresh token storage backend: file or keychain")
	root.PersistentFlags().BoolVar(&rt.nonInteractive, "non-interactive", false, "Fail instead of prompting")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose logging")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewAuthCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

// authConfig merges the config file with flag/env overrides.
func (rt *runtimeState) authConfig() (auth.Config, error) {
	fileCfg := rt.cfg
	if fileCfg == nil {
		fileCfg = &config.Config{}
	}
	cfg, err := fileCfg.AuthConfig()
	if err != nil {
		return auth.Config{}, err
	}
	if rt.domainOverride != "" {
		cfg.Domain = rt.domainOverride
	}
	return cfg, nil
}

func (rt *runtimeState) port() int {
	if rt.portOverride != 0 {
		return rt.portOverride
	}
	if rt.cfg != nil && rt.cfg.Port != 0 {
		return rt.cfg.Port
	}
	return 0
}

func (rt *runtimeState) folderKey() string {
	if rt.folderOverride != "" {
		return rt.folderOverride
	}
	if rt.cfg != nil {
		return rt.cfg.FolderKey
	}
	return ""
}

func (rt *runtimeState) tokenStorage() string {
	if rt.storageOverride != "" {
		return rt.storageOverride
	}
	if rt.cfg != nil {
		return rt.cfg.TokenStorage
	}
	return ""
}

func (rt *runtimeState) interactive() bool {
	if rt.nonInteractive {
		return false
	}
	if rt.cfg != nil && rt.cfg.NonInteractive {
		return false
	}
	return true
}

// buildLogger returns the CLI logger: human-readable debug output when
// verbose, warnings and up otherwise.
func (rt *runtimeState) buildLogger() *zap.Logger {
	if rt.logger != nil {
		return rt.logger
	}
	var err error
	if rt.verbose {
		rt.logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		rt.logger, err = cfg.Build()
	}
	if err != nil {
		rt.logger = zap.NewNop()
	}
	return rt.logger
}
