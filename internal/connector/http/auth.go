package http

import (
	"net/http"

	"github.com/Azure/go-ntlmssp"
)

// =============================================================================
// AUTHENTICATION STRATEGIES
// =============================================================================

// AuthConfig represents authentication configuration.
type AuthConfig interface {
	Apply(req *http.Request)
}

// TransportWrapper is implemented by auth strategies that need to take part
// in the connection handshake rather than just set a header.
type TransportWrapper interface {
	WrapTransport(rt http.RoundTripper) http.RoundTripper
}

// NoAuth represents no authentication.
type NoAuth struct{}

func (a NoAuth) Apply(req *http.Request) {}

// NTLMAuth authenticates against Windows-integrated services such as
// Report Server. The credential is static: it is built once and replayed on
// every request.
type NTLMAuth struct {
	// Domain is the workstation or AD domain prefixed to the user name.
	Domain   string
	Username string
	Password string
}

// NewNTLMAuth builds a `{domain}\{username}` credential.
func NewNTLMAuth(domain, username, password string) NTLMAuth {
	return NTLMAuth{Domain: domain, Username: username, Password: password}
}

// Principal returns the qualified account name sent to the server.
func (a NTLMAuth) Principal() string {
	if a.Domain == "" {
		return a.Username
	}
	return a.Domain + `\` + a.Username
}

// Apply stages the credential as basic auth; the negotiator installed by
// WrapTransport turns it into an NTLM handshake when the server asks for one.
func (a NTLMAuth) Apply(req *http.Request) {
	if a.Username == "" {
		return
	}
	req.SetBasicAuth(a.Principal(), a.Password)
}

// WrapTransport installs the NTLM negotiator around rt.
func (a NTLMAuth) WrapTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return ntlmssp.Negotiator{RoundTripper: rt}
}
