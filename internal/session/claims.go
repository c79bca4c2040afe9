package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeActor extracts the actor identity embedded in a bearer credential.
//
// The signature is deliberately not verified here: the remote clinical API
// authenticates every call, and this decode only informs client-side gating.
// Malformed or empty credentials yield a zero Actor rather than an error.
func DecodeActor(credential string) Actor {
	credential = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(credential), "Bearer "))
	if credential == "" {
		return Actor{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(credential, claims); err != nil {
		return Actor{}
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		if raw, ok := claims["user_id"].(string); ok {
			sub = raw
		}
	}
	if strings.TrimSpace(sub) == "" {
		return Actor{}
	}

	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)

	return Actor{
		ID:          strings.TrimSpace(sub),
		DisplayName: strings.TrimSpace(name),
		Role:        ParseRole(role),
	}
}
