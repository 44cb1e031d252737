package voucher

import (
	"errors"

	"mipy/internal/router"
)

type createCall struct {
	path   string
	fields map[string]string
}

// fakeSession serves canned rows per menu path and records every call.
type fakeSession struct {
	rows      map[string][]router.Record
	errs      map[string]error
	createErr error
	queried   []string
	created   []createCall
	closed    int
}

func (f *fakeSession) Query(path string, fields ...string) ([]router.Record, error) {
	f.queried = append(f.queried, path)
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return f.rows[path], nil
}

func (f *fakeSession) Create(path string, fields map[string]string) (string, error) {
	f.created = append(f.created, createCall{path: path, fields: fields})
	if f.createErr != nil {
		return "", f.createErr
	}
	return "*A1", nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

var errActiveDown = errors.New("active menu unavailable")
