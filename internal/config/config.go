// Package config resolves the realm configuration once at startup into an
// immutable value. Sources, in increasing precedence: built-in defaults, an
// optional YAML file, HTREALM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir      = "/var/lib/htrealm"
	DefaultListenAddr   = ":8340"
	defaultSessionTTL   = 12 * time.Hour
	defaultUsersFile    = "users.json"
	defaultHtpasswdFile = "htpasswd"
)

// Duration unmarshals YAML strings like "12h" or "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`

	// UsersFile is the backing account store; HtpasswdFile holds the
	// external credentials.
	UsersFile    string `yaml:"users_file"`
	HtpasswdFile string `yaml:"htpasswd_file"`

	// OverrideLocalAuthentication makes presence in the htpasswd file win
	// over the backing store's locality verdict.
	OverrideLocalAuthentication bool `yaml:"override_local_authentication"`

	// WatchHtpasswd reloads the credential file on filesystem events in
	// addition to the per-request freshness check.
	WatchHtpasswd bool `yaml:"watch_htpasswd"`

	SessionSecret string   `yaml:"session_secret"`
	SessionTTL    Duration `yaml:"session_ttl"`

	// LoginBanner is markdown shown on the login page.
	LoginBanner string `yaml:"login_banner"`
}

func defaults() Config {
	return Config{
		ListenAddr:                  DefaultListenAddr,
		DataDir:                     DefaultDataDir,
		OverrideLocalAuthentication: true,
		WatchHtpasswd:               true,
		SessionTTL:                  Duration(defaultSessionTTL),
	}
}

// Load builds the configuration from an optional YAML file at path plus
// environment overrides, then validates it. An empty path means defaults
// and environment only.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.UsersFile == "" {
		cfg.UsersFile = filepath.Join(cfg.DataDir, defaultUsersFile)
	}
	if cfg.HtpasswdFile == "" {
		cfg.HtpasswdFile = filepath.Join(cfg.DataDir, defaultHtpasswdFile)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTREALM_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("HTREALM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("HTREALM_USERS_FILE"); v != "" {
		cfg.UsersFile = v
	}
	if v := os.Getenv("HTREALM_HTPASSWD_FILE"); v != "" {
		cfg.HtpasswdFile = v
	}
	if v := os.Getenv("HTREALM_SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("HTREALM_OVERRIDE_LOCAL"); v != "" {
		cfg.OverrideLocalAuthentication = v == "1" || v == "true"
	}
}

// validate catches setup-time misconfiguration. Only the parent directories
// need to exist: the htpasswd file itself may legally be missing.
func (c Config) validate() error {
	if c.ListenAddr == "" {
		return errors.New("config: listen_addr must not be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session_ttl must be positive")
	}
	for _, p := range []string{c.UsersFile, c.HtpasswdFile} {
		dir := filepath.Dir(p)
		if st, err := os.Stat(dir); err == nil && !st.IsDir() {
			return fmt.Errorf("config: %s is not a directory", dir)
		}
	}
	return nil
}
