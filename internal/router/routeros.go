package router

import (
	"io"
	"sort"
	"strings"

	"github.com/go-routeros/routeros/v3"
)

type routerosSession struct {
	client *routeros.Client
}

// loginRouterOS runs the API login exchange over an established
// (possibly TLS-wrapped) connection.
func loginRouterOS(conn io.ReadWriteCloser, username, password string) (Session, error) {
	client, err := routeros.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := client.Login(username, password); err != nil {
		client.Close()
		return nil, err
	}
	return &routerosSession{client: client}, nil
}

func menu(path string) string {
	return "/" + strings.Trim(path, "/")
}

func (s *routerosSession) Query(path string, fields ...string) ([]Record, error) {
	args := []string{menu(path) + "/print"}
	if len(fields) > 0 {
		args = append(args, "=.proplist="+strings.Join(fields, ","))
	}
	reply, err := s.client.RunArgs(args)
	if err != nil {
		return nil, Classify("query "+menu(path), err)
	}
	records := make([]Record, 0, len(reply.Re))
	for _, re := range reply.Re {
		records = append(records, Record(re.Map))
	}
	return records, nil
}

func (s *routerosSession) Create(path string, fields map[string]string) (string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []string{menu(path) + "/add"}
	for _, k := range keys {
		args = append(args, "="+k+"="+fields[k])
	}
	reply, err := s.client.RunArgs(args)
	if err != nil {
		return "", Classify("add "+menu(path), err)
	}
	if reply.Done == nil {
		return "", nil
	}
	return reply.Done.Map["ret"], nil
}

func (s *routerosSession) Close() error {
	return s.client.Close()
}
