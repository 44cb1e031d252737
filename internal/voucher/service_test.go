package voucher

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"mipy/internal/constants"
	"mipy/internal/router"
)

func pipeManager(sess *fakeSession) *router.Manager {
	m := router.NewManager()
	m.Dial = func(context.Context, string, string) (net.Conn, error) {
		client, server := net.Pipe()
		server.Close()
		return client, nil
	}
	m.Login = func(conn io.ReadWriteCloser, _, _ string) (router.Session, error) {
		return sess, nil
	}
	return m
}

func staticSettings() (router.Settings, error) {
	return router.Settings{Host: "192.168.88.1", Port: 8728, Username: "admin"}, nil
}

func TestServiceSubmitClosesSession(t *testing.T) {
	sess := &fakeSession{}
	svc := NewService(staticSettings, pipeManager(sess))

	id, err := svc.Submit(context.Background(), Draft{Profile: "default", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if id != "*A1" {
		t.Errorf("Submit() id = %q, want %q", id, "*A1")
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestServiceClosesSessionOnFailure(t *testing.T) {
	sess := &fakeSession{createErr: router.NewError(router.KindProtocol, "add", "")}
	svc := NewService(staticSettings, pipeManager(sess))

	if _, err := svc.Submit(context.Background(), Draft{Profile: "default", Username: "u", Password: "p"}); !router.IsKind(err, router.KindProtocol) {
		t.Fatalf("Submit() error = %v, want kind %v", err, router.KindProtocol)
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestServiceRecent(t *testing.T) {
	sess := &fakeSession{rows: map[string][]router.Record{constants.PathHotspotUser: users(12)}}
	svc := NewService(staticSettings, pipeManager(sess))

	got, err := svc.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(got) != 10 || got[0].Name != "user03" {
		t.Errorf("Recent() = %d records starting at %q", len(got), got[0].Name)
	}
}

func TestServiceSettingsError(t *testing.T) {
	want := errors.New("settings missing")
	svc := NewService(func() (router.Settings, error) { return router.Settings{}, want }, router.NewManager())
	if err := svc.Ping(context.Background()); !errors.Is(err, want) {
		t.Errorf("Ping() error = %v, want %v", err, want)
	}
}
