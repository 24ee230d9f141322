package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.True(t, cfg.OverrideLocalAuthentication)
	assert.True(t, cfg.WatchHtpasswd)
	assert.Equal(t, filepath.Join(DefaultDataDir, "users.json"), cfg.UsersFile)
	assert.Equal(t, filepath.Join(DefaultDataDir, "htpasswd"), cfg.HtpasswdFile)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL.Std())
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "htrealm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: "127.0.0.1:9000"
data_dir: `+dir+`
htpasswd_file: `+filepath.Join(dir, "creds")+`
override_local_authentication: false
session_ttl: 30m
login_banner: "**restricted**"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.False(t, cfg.OverrideLocalAuthentication)
	assert.Equal(t, filepath.Join(dir, "creds"), cfg.HtpasswdFile)
	assert.Equal(t, filepath.Join(dir, "users.json"), cfg.UsersFile, "users file defaults relative to data_dir")
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL.Std())
	assert.Equal(t, "**restricted**", cfg.LoginBanner)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "htrealm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":1\"\n"), 0644))

	t.Setenv("HTREALM_LISTEN", ":2")
	t.Setenv("HTREALM_OVERRIDE_LOCAL", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":2", cfg.ListenAddr)
	assert.False(t, cfg.OverrideLocalAuthentication)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicitly named config file must exist")

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("listen_addr: [not"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	ttl := filepath.Join(dir, "ttl.yaml")
	require.NoError(t, os.WriteFile(ttl, []byte("session_ttl: xyz\n"), 0644))
	_, err = Load(ttl)
	assert.Error(t, err)
}

func TestValidateRejectsFileAsParentDir(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "plainfile")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	cfgFile := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("htpasswd_file: "+filepath.Join(notADir, "htpasswd")+"\n"), 0644))

	_, err := Load(cfgFile)
	assert.Error(t, err)
}
