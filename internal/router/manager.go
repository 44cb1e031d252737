package router

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"mipy/internal/constants"
)

// DialFunc opens a transport connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// LoginFunc performs the router login exchange over conn and returns the
// authenticated session. It owns conn and must close it on failure.
type LoginFunc func(conn io.ReadWriteCloser, username, password string) (Session, error)

// Manager turns a Settings snapshot into an authenticated Session or a
// classified *Error. It never retries.
type Manager struct {
	ProbeTimeout time.Duration
	Dial         DialFunc
	Login        LoginFunc
}

func NewManager() *Manager {
	dialer := &net.Dialer{}
	return &Manager{
		ProbeTimeout: constants.ProbeTimeout,
		Dial:         dialer.DialContext,
		Login:        loginRouterOS,
	}
}

// Open probes the router, negotiates TLS when requested and logs in. The
// returned session is closed automatically if ctx is cancelled before the
// caller closes it.
func (m *Manager) Open(ctx context.Context, s Settings) (Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	tlsCfg, err := s.tlsConfig()
	if err != nil {
		return nil, err
	}

	addr := s.Address()
	if err := m.probe(ctx, addr); err != nil {
		log.Printf("❌ Router %s not reachable: %v", addr, err)
		return nil, err
	}

	conn, err := m.Dial(ctx, "tcp", addr)
	if err != nil {
		return nil, m.fail(ctx, addr, "dial", err)
	}
	raw := conn
	stop := context.AfterFunc(ctx, func() { raw.Close() })

	if tlsCfg != nil {
		if tlsCfg.InsecureSkipVerify {
			log.Printf("⚠️  TLS certificate verification disabled for %s", addr)
		}
		tlsConn := tls.Client(raw, tlsCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			stop()
			raw.Close()
			return nil, m.fail(ctx, addr, "tls handshake", err)
		}
		conn = tlsConn
	}

	sess, err := m.Login(conn, s.Username, s.Password)
	if err != nil {
		stop()
		conn.Close()
		return nil, m.fail(ctx, addr, "login", err)
	}

	log.Printf("🔌 Connected to RouterOS API %s", addr)
	return &boundSession{Session: sess, addr: addr, stop: stop}, nil
}

// WithSession opens a session, hands it to fn and closes it on every exit
// path, including panics inside fn.
func (m *Manager) WithSession(ctx context.Context, s Settings, fn func(Session) error) error {
	sess, err := m.Open(ctx, s)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}

func (m *Manager) probe(ctx context.Context, addr string) error {
	timeout := m.ProbeTimeout
	if timeout <= 0 {
		timeout = constants.ProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := m.Dial(probeCtx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("probe %s: %w", addr, ctx.Err())
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return &Error{Kind: KindNameResolution, Op: "probe", Detail: addr, Err: err}
		}
		return &Error{Kind: KindUnreachable, Op: "probe", Detail: addr, Err: err}
	}
	conn.Close()
	return nil
}

func (m *Manager) fail(ctx context.Context, addr, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s %s: %w", op, addr, ctx.Err())
	}
	classified := Classify(op, err)
	var rerr *Error
	if errors.As(classified, &rerr) && rerr.Detail == "" {
		rerr.Detail = addr
	}
	log.Printf("❌ Router %s %s failed: %v", addr, op, classified)
	return classified
}
