package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// TokenResponse is the validated result of a token-endpoint call.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	IDToken      string `json:"id_token,omitempty"`
}

// ValidateTokenResponse checks the raw token-endpoint payload for the four
// mandatory fields and their types, enumerating every problem in one error.
// refresh_token and id_token are optional passthroughs.
func ValidateTokenResponse(raw []byte) (*TokenResponse, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("token response is not valid JSON: %w", err)
	}

	var problems []string
	resp := &TokenResponse{}

	if v, ok := fields["access_token"].(string); ok && v != "" {
		resp.AccessToken = v
	} else {
		problems = append(problems, "access_token must be a non-empty string")
	}
	if v, ok := fields["expires_in"].(float64); ok {
		resp.ExpiresIn = int64(v)
	} else {
		problems = append(problems, "expires_in must be a number")
	}
	if v, ok := fields["token_type"].(string); ok && v != "" {
		resp.TokenType = v
	} else {
		problems = append(problems, "token_type must be a non-empty string")
	}
	if v, ok := fields["scope"].(string); ok && v != "" {
		resp.Scope = v
	} else {
		problems = append(problems, "scope must be a non-empty string")
	}

	if v, ok := fields["refresh_token"].(string); ok {
		resp.RefreshToken = v
	}
	if v, ok := fields["id_token"].(string); ok {
		resp.IDToken = v
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid token response: %s", strings.Join(problems, "; "))
	}
	return resp, nil
}

// ValidateJWT performs a structural check only: three dot-separated segments
// and a base64url payload that decodes to JSON. It never verifies signatures
// and must not be used as a trust decision.
func ValidateJWT(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("token must have 3 segments, got %d", len(parts))
	}
	payload, err := decodeJWTSegment(parts[1])
	if err != nil {
		return fmt.Errorf("token payload is not decodable: %w", err)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("token payload is not valid JSON")
	}
	return nil
}

// TokenExchangeRequest is the body the browser posts back to the loopback
// server after the provider redirect.
type TokenExchangeRequest struct {
	Code  string
	State string
}

// ValidateTokenExchangeRequest guards the loopback token route: both fields
// must be present, strings and non-empty.
func ValidateTokenExchangeRequest(body []byte) (*TokenExchangeRequest, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	code, ok := fields["code"].(string)
	if !ok || code == "" {
		return nil, fmt.Errorf("code must be a non-empty string")
	}
	state, ok := fields["state"].(string)
	if !ok || state == "" {
		return nil, fmt.Errorf("state must be a non-empty string")
	}
	return &TokenExchangeRequest{Code: code, State: state}, nil
}

func decodeJWTSegment(segment string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(segment); err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(segment)
}
