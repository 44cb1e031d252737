package router

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/net/idna"

	"mipy/internal/security"
)

// Settings is an immutable snapshot of the router connection parameters.
type Settings struct {
	Host      string
	Port      int
	UseTLS    bool
	VerifyTLS bool
	Username  string
	Password  string
}

// Address returns host:port suitable for net.Dial.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate rejects snapshots that could never produce a session.
func (s Settings) Validate() error {
	if s.Host == "" {
		return NewError(KindInvalidSettings, "validate", "router host is empty")
	}
	if net.ParseIP(s.Host) == nil {
		if _, err := idna.Lookup.ToASCII(s.Host); err != nil {
			return &Error{Kind: KindInvalidSettings, Op: "validate", Detail: fmt.Sprintf("router host %q", s.Host), Err: err}
		}
	}
	if !security.ValidatePort(s.Port) {
		return NewError(KindInvalidSettings, "validate", fmt.Sprintf("port %d out of range", s.Port))
	}
	if s.Username == "" {
		return NewError(KindInvalidSettings, "validate", "router username is empty")
	}
	return nil
}

// tlsConfig builds the client TLS context. Verification is only disabled
// when the snapshot explicitly asks for it.
func (s Settings) tlsConfig() (*tls.Config, error) {
	if !s.UseTLS {
		return nil, nil
	}
	serverName := s.Host
	if net.ParseIP(s.Host) == nil {
		ascii, err := idna.Lookup.ToASCII(s.Host)
		if err != nil {
			return nil, &Error{Kind: KindTLSConfiguration, Op: "tls", Detail: fmt.Sprintf("server name %q", s.Host), Err: err}
		}
		serverName = ascii
	}
	return &tls.Config{
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !s.VerifyTLS,
	}, nil
}
