package tenant

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const tenantsEndpoint = "/{orgId}/portal_/api/filtering/leftnav/tenants"

// PortalResponse is the payload of the tenants-and-organization fetch.
type PortalResponse struct {
	Tenants      []Tenant      `json:"tenants"`
	Organization *Organization `json:"organization"`
}

// HTTPError carries the status and body of a failed portal call.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("portal request failed (%d): %s", e.StatusCode, e.Message)
}

// Client is a bearer-authenticated portal API client.
type Client struct {
	rest *resty.Client
}

// NewClient builds a portal client for the given base URL and access token.
func NewClient(baseURL, accessToken string) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "uipcli")
	return &Client{rest: rest}
}

// TenantsAndOrganization fetches the caller's tenants and organization record
// scoped to the given organization id. A 401 maps to ErrTokenExpired so
// callers can suggest re-login instead of reporting a generic failure.
func (c *Client) TenantsAndOrganization(ctx context.Context, orgID string) (*PortalResponse, error) {
	var payload PortalResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("orgId", orgID).
		SetResult(&payload).
		Get(tenantsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenants: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, ErrTokenExpired
	}
	if resp.IsError() {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(resp.String()),
		}
	}
	return &payload, nil
}
