package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
jwt:
  secret: dev-secret
  expire_hours: 2
storage:
  type: r2
  endpoint: acc.r2.cloudflarestorage.com
  bucket: lessons
  public_url_base: https://cdn.example.com
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "r2", cfg.Storage.Type)
	assert.Equal(t, "lessons", cfg.Storage.Bucket)
	assert.Equal(t, "courses/", cfg.Manifest.Prefix)
	assert.Equal(t, "logs/app.log", cfg.Log.File)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: local
  local_path: `+t.TempDir()+`
`)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "short secret in release",
			cfg: Config{
				Server:  ServerConfig{Mode: "release"},
				JWT:     JWTConfig{Secret: "short"},
				Storage: StorageConfig{Type: "local"},
			},
			wantErr: true,
		},
		{
			name:    "r2 without bucket",
			cfg:     Config{Storage: StorageConfig{Type: "r2", Endpoint: "x"}},
			wantErr: true,
		},
		{
			name:    "unknown storage",
			cfg:     Config{Storage: StorageConfig{Type: "ftp"}},
			wantErr: true,
		},
		{
			name:    "local",
			cfg:     Config{Storage: StorageConfig{Type: "local"}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
