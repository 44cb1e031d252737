package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"mipy/internal/constants"
	"mipy/internal/crypto"
	"mipy/internal/router"
	"mipy/internal/utils"
)

// ErrNotFound is returned by Load when the settings file does not exist.
var ErrNotFound = errors.New("settings file not found")

// Settings is the persisted record edited by `mipy config`. JSON keys stay
// compatible with existing config.json files.
type Settings struct {
	RouterHost      string `json:"IP_MIKROTIK"`
	RouterPort      string `json:"PORT_API_MIKROTIK"`
	UseSSL          bool   `json:"USE_SSL"`
	VerifySSL       bool   `json:"VERIFY_SSL"`
	Username        string `json:"USERNAME_MIKROTIK"`
	Password        string `json:"PASSWORD_MIKROTIK"`
	TelegramToken   string `json:"TELEGRAM_TOKEN"`
	TelegramChatID  string `json:"TELEGRAM_CHAT_ID"`
	HotspotLoginURL string `json:"HOTSPOT_LOGIN_URL,omitempty"`
}

func Default() Settings {
	return Settings{
		RouterPort: constants.DefaultRouterPort,
		VerifySSL:  true,
	}
}

// RouterSettings converts the record into a connection snapshot.
func (s Settings) RouterSettings() (router.Settings, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s.RouterPort))
	if err != nil {
		return router.Settings{}, &router.Error{
			Kind:   router.KindInvalidSettings,
			Op:     "settings",
			Detail: fmt.Sprintf("port %q", s.RouterPort),
			Err:    err,
		}
	}
	return router.Settings{
		Host:      strings.TrimSpace(s.RouterHost),
		Port:      port,
		UseTLS:    s.UseSSL,
		VerifyTLS: s.VerifySSL,
		Username:  s.Username,
		Password:  s.Password,
	}, nil
}

// ChatID parses TELEGRAM_CHAT_ID; ok is false when it is unset or invalid.
func (s Settings) ChatID() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s.TelegramChatID), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// LoadEnv reads env files into the process environment. With no paths it
// reads ./.env and a missing file is not an error. Named paths must exist.
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && len(paths) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Path returns the settings file location.
func Path() string {
	return utils.GetEnv(constants.EnvConfigPath, constants.DefaultConfigRef)
}

func sealer() (*crypto.Sealer, error) {
	key := os.Getenv(constants.EnvSecretKey)
	if key == "" {
		return nil, nil
	}
	return crypto.NewSealer(key)
}

// Load reads the settings file, opens sealed secrets and applies
// environment overrides. A missing file yields ErrNotFound together with
// the defaults plus overrides.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		applyEnv(&s)
		return s, ErrNotFound
	case err != nil:
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if err := openSecrets(&s); err != nil {
		return s, err
	}
	applyEnv(&s)
	return s, nil
}

func openSecrets(s *Settings) error {
	if !crypto.IsSealed(s.Password) && !crypto.IsSealed(s.TelegramToken) {
		return nil
	}
	sl, err := sealer()
	if err != nil {
		return fmt.Errorf("settings key: %w", err)
	}
	if sl == nil {
		return fmt.Errorf("settings contain sealed secrets but %s is not set", constants.EnvSecretKey)
	}
	for _, field := range []*string{&s.Password, &s.TelegramToken} {
		plain, err := sl.Open(*field)
		if err != nil {
			return fmt.Errorf("open sealed secret: %w", err)
		}
		*field = plain
	}
	return nil
}

// Save writes the settings atomically with owner-only permissions,
// sealing secrets when a key is configured.
func Save(path string, s Settings) error {
	sl, err := sealer()
	if err != nil {
		return fmt.Errorf("settings key: %w", err)
	}
	if sl != nil {
		for _, field := range []*string{&s.Password, &s.TelegramToken} {
			sealed, err := sl.Seal(*field)
			if err != nil {
				return fmt.Errorf("seal secret: %w", err)
			}
			*field = sealed
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mipy-config-*")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	log.Printf("💾 Settings saved to %s", path)
	return nil
}

func applyEnv(s *Settings) {
	for key, field := range map[string]*string{
		"IP_MIKROTIK":       &s.RouterHost,
		"PORT_API_MIKROTIK": &s.RouterPort,
		"USERNAME_MIKROTIK": &s.Username,
		"PASSWORD_MIKROTIK": &s.Password,
		"TELEGRAM_TOKEN":    &s.TelegramToken,
		"TELEGRAM_CHAT_ID":  &s.TelegramChatID,
		"HOTSPOT_LOGIN_URL": &s.HotspotLoginURL,
	} {
		*field = utils.GetEnv(key, *field)
	}
	if v, ok := utils.EnvBool("USE_SSL"); ok {
		s.UseSSL = v
	}
	if v, ok := utils.EnvBool("VERIFY_SSL"); ok {
		s.VerifySSL = v
	}
}
