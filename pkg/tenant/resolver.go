package tenant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/uipathcommunity/uipcli/pkg/auth"
)

// Resolver turns a fresh access token into a selected tenant/organization.
type Resolver struct {
	cfg      auth.Config
	prompter Prompter
	log      *zap.Logger

	// newClient is swappable for tests.
	newClient func(baseURL, accessToken string) *Client
}

// NewResolver builds a resolver. A nil prompter makes ambiguous selections
// fail with ErrTenantAmbiguous instead of prompting.
func NewResolver(cfg auth.Config, prompter Prompter, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{cfg: cfg, prompter: prompter, log: log, newClient: NewClient}
}

// Resolve decodes the access token's organization id, fetches the caller's
// tenants and picks one. Exactly one tenant is auto-selected without
// prompting so unattended logins keep working.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (SelectedTenant, error) {
	claims, err := auth.DecodeAccessTokenClaims(accessToken)
	if err != nil {
		return SelectedTenant{}, err
	}
	if claims.OrganizationID == "" {
		return SelectedTenant{}, ErrNoOrganizationID
	}

	baseURL, known := r.cfg.BaseURL()
	if baseURL == "" {
		return SelectedTenant{}, fmt.Errorf("no base URL configured for domain %q", r.cfg.Domain)
	}
	if !known {
		r.log.Warn("unknown domain, falling back to cloud", zap.String("domain", r.cfg.Domain))
	}

	portal, err := r.newClient(baseURL, accessToken).TenantsAndOrganization(ctx, claims.OrganizationID)
	if err != nil {
		return SelectedTenant{}, err
	}
	if portal.Organization == nil {
		return SelectedTenant{}, errors.New("portal response has no organization")
	}
	if len(portal.Tenants) == 0 {
		return SelectedTenant{}, ErrNoTenants
	}

	chosen, err := r.choose(portal.Tenants)
	if err != nil {
		return SelectedTenant{}, err
	}
	return SelectedTenant{
		TenantID:                chosen.ID,
		TenantName:              chosen.Name,
		TenantDisplayName:       chosen.DisplayName,
		OrganizationID:          portal.Organization.ID,
		OrganizationName:        portal.Organization.Name,
		OrganizationDisplayName: portal.Organization.DisplayName,
	}, nil
}

func (r *Resolver) choose(tenants []Tenant) (Tenant, error) {
	if len(tenants) == 1 {
		return tenants[0], nil
	}
	if r.prompter == nil {
		return Tenant{}, ErrTenantAmbiguous
	}

	options := make([]string, len(tenants))
	for i, t := range tenants {
		options[i] = t.label()
	}
	choice, err := r.prompter.Select("Select a tenant", options)
	if err != nil {
		return Tenant{}, fmt.Errorf("tenant selection failed: %w", err)
	}
	for _, t := range tenants {
		if t.label() == choice {
			return t, nil
		}
	}
	// The choice should always come from the presented list; if it somehow
	// does not, prefer a usable login over failing outright.
	r.log.Warn("selected tenant not found, falling back to first", zap.String("choice", choice))
	return tenants[0], nil
}
