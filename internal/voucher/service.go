package voucher

import (
	"context"

	"mipy/internal/router"
)

// SettingsFunc supplies a fresh connection snapshot for each operation.
type SettingsFunc func() (router.Settings, error)

// Service runs voucher operations against the router. Every call opens
// and closes its own session; sessions are never shared.
type Service struct {
	Settings SettingsFunc
	Manager  *router.Manager
}

func NewService(settings SettingsFunc, manager *router.Manager) *Service {
	return &Service{Settings: settings, Manager: manager}
}

func (s *Service) with(ctx context.Context, fn func(router.Session) error) error {
	settings, err := s.Settings()
	if err != nil {
		return err
	}
	return s.Manager.WithSession(ctx, settings, fn)
}

// Ping opens and immediately closes a session.
func (s *Service) Ping(ctx context.Context) error {
	return s.with(ctx, func(router.Session) error { return nil })
}

func (s *Service) Status(ctx context.Context) (*router.Resource, error) {
	var res *router.Resource
	err := s.with(ctx, func(sess router.Session) error {
		var err error
		res, err = router.SystemResource(sess)
		return err
	})
	return res, err
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Record, error) {
	var records []Record
	err := s.with(ctx, func(sess router.Session) error {
		var err error
		records, err = ListRecent(sess, limit)
		return err
	})
	return records, err
}

func (s *Service) Detail(ctx context.Context, username string) (*Detail, error) {
	var detail *Detail
	err := s.with(ctx, func(sess router.Session) error {
		var err error
		detail, err = FindDetail(sess, username)
		return err
	})
	return detail, err
}

func (s *Service) Profiles(ctx context.Context) ([]string, error) {
	var names []string
	err := s.with(ctx, func(sess router.Session) error {
		var err error
		names, err = Profiles(sess)
		return err
	})
	return names, err
}

// Submit creates the voucher described by d and returns its router id.
func (s *Service) Submit(ctx context.Context, d Draft) (string, error) {
	var id string
	err := s.with(ctx, func(sess router.Session) error {
		var err error
		id, err = Create(sess, d)
		return err
	})
	return id, err
}
