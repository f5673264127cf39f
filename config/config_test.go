package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	ws := t.TempDir()
	cfg, err := Load(ws, "")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(ws, "hanoibench_config", "runs"), cfg.Store.DSN)
	assert.Equal(t, "goal_achieved", cfg.Acceptance.Expression)
	assert.Equal(t, 4, cfg.Queue.Concurrency)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	ws := t.TempDir()
	path := Path(ws)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: sqlite
  dsn: /tmp/runs.db
acceptance:
  expression: goal_achieved && total_moves == optimal_moves
`), 0o644))

	cfg, err := Load(ws, "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/runs.db", cfg.Store.DSN)
	assert.Equal(t, "goal_achieved && total_moves == optimal_moves", cfg.Acceptance.Expression)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o644))
	_, err := Load("", path)
	require.ErrorContains(t, err, "store.driver")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvStoreDSN, "postgres://db/hanoi")
	t.Setenv(EnvMQTTURL, "tcp://broker:1883")
	t.Setenv(EnvRedisURL, "redis://cache:6379/2")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/hanoi", cfg.Store.DSN)
	assert.Equal(t, "tcp://broker:1883", cfg.Telemetry.MQTT.Broker)
	assert.Equal(t, "redis://cache:6379/2", cfg.Queue.RedisURL)
}

func TestSaveRoundTrip(t *testing.T) {
	ws := t.TempDir()
	cfg := Default(ws)
	cfg.Server.Addr = "127.0.0.1:9000"
	cfg.Log.JSON = true
	require.NoError(t, cfg.Save(Path(ws)))

	loaded, err := Load(ws, "")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDottedValues(t *testing.T) {
	data := map[string]interface{}{}
	require.NoError(t, SetValue(data, "queue.concurrency", ParseValue("8")))
	require.NoError(t, SetValue(data, "log.json", ParseValue("true")))
	require.NoError(t, SetValue(data, "server.addr", ParseValue(":9090")))
	require.Error(t, SetValue(data, "queue..name", "x"))

	v, ok := GetValue(data, "queue.concurrency")
	require.True(t, ok)
	assert.Equal(t, int64(8), v)
	v, ok = GetValue(data, "log.json")
	require.True(t, ok)
	assert.Equal(t, true, v)
	_, ok = GetValue(data, "server.addr.port")
	assert.False(t, ok)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteMap(path, data))
	back, err := ReadMap(path)
	require.NoError(t, err)
	v, ok = GetValue(back, "server.addr")
	require.True(t, ok)
	assert.Equal(t, ":9090", PrettyValue(v))
	assert.Equal(t, "[1, a]", PrettyValue([]interface{}{1, "a"}))
}
