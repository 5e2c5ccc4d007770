// Package tenant resolves which organization and tenant a fresh login should
// be scoped to.
package tenant

import "errors"

var (
	// ErrTokenExpired indicates the portal rejected the access token (401),
	// distinct from other fetch failures.
	ErrTokenExpired = errors.New("access token expired or invalid")

	// ErrNoOrganizationID indicates the access token carries no organization
	// id claim.
	ErrNoOrganizationID = errors.New("no organization id in access token")

	// ErrNoTenants indicates the organization has no tenants to select.
	ErrNoTenants = errors.New("no tenants available")

	// ErrTenantAmbiguous indicates several tenants exist but prompting is not
	// allowed.
	ErrTenantAmbiguous = errors.New("multiple tenants available, cannot choose non-interactively")
)

// ServiceInstance is a read-only record of a service provisioned in a tenant.
type ServiceInstance struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// Tenant is a read-only record fetched from the portal API.
type Tenant struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	DisplayName      string            `json:"displayName,omitempty"`
	ServiceInstances []ServiceInstance `json:"serviceInstances,omitempty"`
}

// Organization is a read-only record fetched from the portal API.
type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// SelectedTenant is the tenant/organization pair a login resolves to.
type SelectedTenant struct {
	TenantID                string
	TenantName              string
	TenantDisplayName       string
	OrganizationID          string
	OrganizationName        string
	OrganizationDisplayName string
}

// label returns the name a tenant is presented under: display name first,
// internal name as fallback.
func (t Tenant) label() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}
