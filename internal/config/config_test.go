package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiirun/tracker/internal/history"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, history.PolicyRecency, cfg.History.Policy)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, int64(1), cfg.IDs.Start)
	assert.NotEmpty(t, cfg.DB.Path)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	content := `
db:
  path: /tmp/custom.db
server:
  addr: 127.0.0.1:9000
history:
  policy: ring
  capacity: 3
ids:
  start: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DB.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, history.PolicyRing, cfg.History.Policy)
	assert.Equal(t, 3, cfg.History.Capacity)
	assert.Equal(t, int64(100), cfg.IDs.Start)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TRACKER_SERVER_ADDR", ":9999")
	t.Setenv("TRACKER_HISTORY_POLICY", "ring")
	t.Setenv("TRACKER_HISTORY_CAPACITY", "4")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, history.PolicyRing, cfg.History.Policy)
	assert.Equal(t, 4, cfg.History.Capacity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	v := New()
	v.Set(KeyHistoryPolicy, "fifo")
	v.Set(KeyIDsStart, 0)

	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.policy")
	assert.Contains(t, err.Error(), "ids.start")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:      DBConfig{Path: "x.db"},
			Server:  ServerConfig{Addr: ":8080"},
			History: HistoryConfig{Policy: history.PolicyRecency},
			IDs:     IDsConfig{Start: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"recency ignores capacity", func(c *Config) { c.History.Capacity = 0 }, ""},
		{"empty db path", func(c *Config) { c.DB.Path = " " }, "db.path"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"ring without capacity", func(c *Config) { c.History = HistoryConfig{Policy: history.PolicyRing} }, "history.capacity"},
		{"unknown policy", func(c *Config) { c.History.Policy = "lfu" }, "history.policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
