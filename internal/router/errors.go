package router

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/go-routeros/routeros/v3"
)

// Kind is the closed set of failure classes surfaced to operators.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnreachable
	KindNameResolution
	KindAuthentication
	KindConnectionClosed
	KindProtocol
	KindTLSConfiguration
	KindInvalidSettings
	KindRecordNotFound
	KindDuplicateName
	KindEmptyProfileList
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindUnreachable:      "unreachable",
	KindNameResolution:   "name resolution failed",
	KindAuthentication:   "authentication failed",
	KindConnectionClosed: "connection closed by peer",
	KindProtocol:         "protocol error",
	KindTLSConfiguration: "tls configuration error",
	KindInvalidSettings:  "invalid settings",
	KindRecordNotFound:   "record not found",
	KindDuplicateName:    "duplicate name",
	KindEmptyProfileList: "empty profile list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. Op names the step that failed
// ("probe", "login", "query", ...); Detail carries the operator-facing
// particulars such as the address or the username involved.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error without an underlying cause.
func NewError(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Classify maps a transport or RouterOS error onto a Kind. Errors that are
// already classified pass through untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return err
	}
	return &Error{Kind: classifyKind(err), Op: op, Err: err}
}

func classifyKind(err error) Kind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNameResolution
	}

	var devErr *routeros.DeviceError
	if errors.As(err, &devErr) {
		msg := strings.ToLower(deviceMessage(devErr))
		switch {
		case strings.Contains(msg, "invalid user name or password"),
			strings.Contains(msg, "cannot log in"),
			strings.Contains(msg, "not logged in"):
			return KindAuthentication
		case strings.Contains(msg, "already have"):
			return KindDuplicateName
		}
		return KindProtocol
	}
	var replyErr *routeros.UnknownReplyError
	if errors.As(err, &replyErr) {
		return KindProtocol
	}

	if isTLSMismatch(err) {
		return KindTLSConfiguration
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return KindConnectionClosed
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return KindUnreachable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindUnreachable
	}

	return KindUnknown
}

func isTLSMismatch(err error) bool {
	var (
		recordErr    tls.RecordHeaderError
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &recordErr) || errors.As(err, &verifyErr) ||
		errors.As(err, &authorityErr) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

// DeviceMessage returns the text RouterOS attached to a !trap reply, or
// the empty string when err is not a device error.
func DeviceMessage(err error) string {
	var devErr *routeros.DeviceError
	if errors.As(err, &devErr) {
		return deviceMessage(devErr)
	}
	return ""
}

func deviceMessage(devErr *routeros.DeviceError) string {
	if devErr.Sentence == nil {
		return ""
	}
	return devErr.Sentence.Map["message"]
}
