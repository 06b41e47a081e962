package auth

import (
	"net/http"
	"strings"

	apperrors "solid-service/pkg/errors"
)

// CredentialsExtractor derives the credential set of a request.
type CredentialsExtractor interface {
	Extract(req *http.Request) (CredentialSet, error)
}

// BearerWebIDExtractor yields the public credential for every request
// and adds the agent credential when a valid bearer token with a webid
// claim is present. A malformed or expired token is rejected outright
// rather than silently downgraded to public.
type BearerWebIDExtractor struct {
	jwtService *JWTService
}

func NewBearerWebIDExtractor(jwtService *JWTService) *BearerWebIDExtractor {
	return &BearerWebIDExtractor{jwtService: jwtService}
}

func (e *BearerWebIDExtractor) Extract(req *http.Request) (CredentialSet, error) {
	credentials := CredentialSet{Public: &Credential{}}

	token := extractBearerToken(req)
	if token == "" {
		return credentials, nil
	}

	claims, err := e.jwtService.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	credentials[Agent] = &Credential{WebID: claims.WebID}
	return credentials, nil
}

func extractBearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
