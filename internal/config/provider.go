package config

import (
	"errors"

	"mipy/internal/router"
)

// FileProvider loads a fresh snapshot from disk for every operation, so
// edits made by `mipy config` apply without a restart.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Settings() (Settings, error) {
	s, err := Load(p.Path)
	if errors.Is(err, ErrNotFound) && s.RouterHost != "" {
		// Environment-only deployments have no file.
		return s, nil
	}
	return s, err
}

// Router returns the connection snapshot; it satisfies voucher.SettingsFunc.
func (p *FileProvider) Router() (router.Settings, error) {
	s, err := p.Settings()
	if err != nil {
		return router.Settings{}, err
	}
	return s.RouterSettings()
}
