package router

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/go-routeros/routeros/v3"
	"github.com/go-routeros/routeros/v3/proto"
)

func deviceErr(msg string) error {
	return &routeros.DeviceError{Sentence: &proto.Sentence{Map: map[string]string{"message": msg}}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "x"}, KindNameResolution},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, KindUnreachable},
		{"timeout", &net.OpError{Op: "dial", Err: context.DeadlineExceeded}, KindUnreachable},
		{"eof", fmt.Errorf("read: %w", io.EOF), KindConnectionClosed},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, KindConnectionClosed},
		{"auth", deviceErr("invalid user name or password (6)"), KindAuthentication},
		{"duplicate", deviceErr("failure: already have user with this name"), KindDuplicateName},
		{"device other", deviceErr("no such command"), KindProtocol},
		{"tls record", tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"}, KindTLSConfiguration},
		{"x509", x509.UnknownAuthorityError{}, KindTLSConfiguration},
		{"unknown", errors.New("something odd"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(Classify("op", tt.err)); got != tt.want {
				t.Errorf("KindOf(Classify(%v)) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyKeepsExistingKind(t *testing.T) {
	orig := NewError(KindRecordNotFound, "detail", "alice")
	wrapped := fmt.Errorf("lookup: %w", orig)
	if got := Classify("other", wrapped); got != wrapped {
		t.Errorf("Classify() rewrapped an already classified error: %v", got)
	}
	if KindOf(wrapped) != KindRecordNotFound {
		t.Errorf("KindOf(wrapped) = %v, want %v", KindOf(wrapped), KindRecordNotFound)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindUnreachable, Op: "probe", Detail: "10.0.0.1:8728", Err: syscall.ECONNREFUSED}
	msg := err.Error()
	for _, want := range []string{"probe", "unreachable", "10.0.0.1:8728", "refused"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestDeviceMessage(t *testing.T) {
	if got := DeviceMessage(fmt.Errorf("add: %w", deviceErr("failure: already have user with this name"))); got != "failure: already have user with this name" {
		t.Errorf("DeviceMessage() = %q", got)
	}
	if got := DeviceMessage(io.EOF); got != "" {
		t.Errorf("DeviceMessage(io.EOF) = %q, want empty", got)
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"bytes-in": "1536", "disabled": "true", "name": "alice"}
	if r.Uint("bytes-in") != 1536 {
		t.Errorf("Uint(bytes-in) = %d, want 1536", r.Uint("bytes-in"))
	}
	if r.Uint("missing") != 0 {
		t.Error("Uint(missing) should be 0")
	}
	if !r.Bool("disabled") {
		t.Error("Bool(disabled) = false, want true")
	}
	if got := r.Get("comment", "none"); got != "none" {
		t.Errorf("Get(comment) = %q, want %q", got, "none")
	}
}

type resourceSession struct {
	stubSession
	rows []Record
}

func (s *resourceSession) Query(path string, _ ...string) ([]Record, error) {
	return s.rows, nil
}

func TestSystemResource(t *testing.T) {
	sess := &resourceSession{rows: []Record{{"version": "7.14", "uptime": "1d2h", "cpu-load": "3", "free-memory": "52428800"}}}
	res, err := SystemResource(sess)
	if err != nil {
		t.Fatalf("SystemResource() error: %v", err)
	}
	if res.Version != "7.14" || res.FreeMemory != 52428800 || res.BoardName != "unknown" {
		t.Errorf("SystemResource() = %+v", res)
	}

	empty, err := SystemResource(&resourceSession{})
	if err != nil || empty != nil {
		t.Errorf("SystemResource(empty) = %v, %v; want nil, nil", empty, err)
	}
}
