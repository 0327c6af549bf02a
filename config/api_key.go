package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InspectAPIKey decodes a JWT-shaped public key without verifying it and
// returns warnings about keys that should not be handed to browsers.
// Opaque (non-JWT) keys yield no warnings.
func InspectAPIKey(key string, now time.Time) []string {
	if strings.Count(key, ".") != 2 {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return []string{fmt.Sprintf("public API key looks like a JWT but does not parse: %v", err)}
	}

	var warnings []string
	if role, _ := claims["role"].(string); role != "" && role != "anon" {
		warnings = append(warnings, fmt.Sprintf("public API key carries role %q; only anon keys are safe to expose", role))
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(now) {
		warnings = append(warnings, fmt.Sprintf("public API key expired at %s", exp.Format(time.RFC3339)))
	}
	return warnings
}
