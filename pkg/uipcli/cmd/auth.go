package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/uipathcommunity/uipcli/pkg/auth"
	"github.com/uipathcommunity/uipcli/pkg/login"
	"github.com/uipathcommunity/uipcli/pkg/store"
	"github.com/uipathcommunity/uipcli/pkg/tenant"
)

// NewAuthCommand groups the authentication subcommands.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate against UiPath cloud",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser",
		Long: `Starts a local callback server, opens the identity provider sign-in
page in your browser and waits for the redirect to complete the login.
The resulting tokens and tenant selection are written to .uipath/.auth.json
and merged into .env in the current directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			logger := rt.buildLogger()
			defer func() { _ = logger.Sync() }()

			cfg, err := rt.authConfig()
			if err != nil {
				return err
			}

			var prompter tenant.Prompter
			if rt.interactive() {
				prompter = &tenant.StdioPrompter{In: cmd.InOrStdin(), Out: rt.Writer()}
			}

			st := store.NewStore(logger)
			st.Backend = rt.tokenStorage()

			flow := login.New(login.Options{
				Config:    cfg,
				Port:      rt.port(),
				FolderKey: rt.folderKey(),
				Prompter:  prompter,
				Store:     st,
				Log:       logger,
				Out:       rt.Writer(),
			})

			result, err := flow.Login(cmd.Context())
			if err != nil {
				return loginError(err)
			}

			fmt.Fprintf(rt.Writer(), "Signed in to organization %q, tenant %q.\n",
				result.Tenant.OrganizationName, result.Tenant.TenantName)
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current login state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			logger := rt.buildLogger()
			defer func() { _ = logger.Sync() }()

			st := store.NewStore(logger)
			st.Backend = rt.tokenStorage()

			record := st.Load()
			if record == nil {
				fmt.Fprintln(rt.Writer(), "Not signed in. Run `uipcli auth login` to sign in.")
				return nil
			}

			expiry := time.UnixMilli(record.ExpiresAt).Format(time.RFC3339)
			fmt.Fprintf(rt.Writer(), "Organization: %s (%s)\n", record.OrganizationName, record.OrganizationID)
			fmt.Fprintf(rt.Writer(), "Tenant:       %s (%s)\n", record.TenantName, record.TenantID)
			fmt.Fprintf(rt.Writer(), "Domain:       %s\n", record.Domain)
			if record.FolderKey != "" {
				fmt.Fprintf(rt.Writer(), "Folder key:   %s\n", record.FolderKey)
			}
			if store.IsExpired(record) {
				fmt.Fprintf(rt.Writer(), "Token:        expired at %s\n", expiry)
			} else {
				fmt.Fprintf(rt.Writer(), "Token:        valid until %s\n", expiry)
			}
			return nil
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			logger := rt.buildLogger()
			defer func() { _ = logger.Sync() }()

			st := store.NewStore(logger)
			st.Backend = rt.tokenStorage()

			if err := st.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(rt.Writer(), "Signed out.")
			return nil
		},
	}
}

// loginError turns flow failures into single-line user-facing messages. Only
// errors with no known cause keep their raw text.
func loginError(err error) error {
	switch {
	case errors.Is(err, auth.ErrPortInUse):
		return fmt.Errorf("%w\nStop the process holding the port or pass --port to use another one", err)
	case errors.Is(err, auth.ErrLoginTimeout):
		return errors.New("login timed out waiting for the browser redirect; run `uipcli auth login` again")
	case errors.Is(err, auth.ErrLoginCancelled):
		return errors.New("login cancelled")
	case errors.Is(err, tenant.ErrNoOrganizationID):
		return errors.New("the access token carries no organization id; sign in with an organization account")
	case errors.Is(err, tenant.ErrNoTenants):
		return errors.New("no tenants are provisioned for this organization")
	case errors.Is(err, tenant.ErrTenantAmbiguous):
		return errors.New("multiple tenants available; re-run without --non-interactive to choose one")
	default:
		return err
	}
}
