package auth

import (
	"net/http"
	"strings"
)

const DefaultUserHeader = "X-User-ID"

// Identity is the caller as established by the identity provider in front of
// this service. The zero value is an anonymous caller.
type Identity struct {
	UserID string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

type Provider interface {
	Identify(r *http.Request) Identity
}

// HeaderProvider trusts a user id header set by the gateway that terminated
// authentication.
type HeaderProvider struct {
	Header string
}

func NewHeaderProvider(header string) *HeaderProvider {
	if header == "" {
		header = DefaultUserHeader
	}
	return &HeaderProvider{Header: header}
}

func (p *HeaderProvider) Identify(r *http.Request) Identity {
	return Identity{UserID: strings.TrimSpace(r.Header.Get(p.Header))}
}
