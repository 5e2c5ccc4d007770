package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenClaims is the decoded (not verified) access-token payload. It is
// used read-only to route the login to the right organization, never for
// authorization decisions that require trust.
type AccessTokenClaims struct {
	Subject        string
	OrganizationID string
	ClientID       string
	Issuer         string
	Audience       []string
	ExpiresAt      int64
	IssuedAt       int64
	AuthTime       int64
}

// organizationIDAliases is the ordered list of claim names carrying the
// portal/organization id, checked first to last.
var organizationIDAliases = []string{"prt_id", "partition_id", "organization_id"}

// DecodeAccessTokenClaims parses the access token without signature
// verification after a structural shape check.
func DecodeAccessTokenClaims(accessToken string) (*AccessTokenClaims, error) {
	if err := ValidateJWT(accessToken); err != nil {
		return nil, fmt.Errorf("malformed access token: %w", err)
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	decoded := &AccessTokenClaims{
		Subject:        stringClaim(claims, "sub"),
		OrganizationID: firstStringClaim(claims, organizationIDAliases...),
		ClientID:       stringClaim(claims, "client_id"),
		Issuer:         stringClaim(claims, "iss"),
		ExpiresAt:      numericClaim(claims, "exp"),
		IssuedAt:       numericClaim(claims, "iat"),
		AuthTime:       numericClaim(claims, "auth_time"),
	}
	decoded.Audience = audienceClaim(claims)
	return decoded, nil
}

// audienceClaim normalizes aud, which providers emit as either a single
// string or an array.
func audienceClaim(claims jwt.MapClaims) []string {
	switch v := claims["aud"].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// firstStringClaim returns the first non-empty string value among the given
// claim names, in order. This replaces ad hoc fallback chains at call sites.
func firstStringClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		if v := stringClaim(claims, name); v != "" {
			return v
		}
	}
	return ""
}

func stringClaim(claims jwt.MapClaims, name string) string {
	v, _ := claims[name].(string)
	return v
}

func numericClaim(claims jwt.MapClaims, name string) int64 {
	switch v := claims[name].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
