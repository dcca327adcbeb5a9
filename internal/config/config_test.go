package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, DefaultEthRPC, cfg.EthRPC)
	assert.Equal(t, DefaultBscRPC, cfg.BscRPC)
	assert.Equal(t, 10, cfg.Repetitions)
	assert.Equal(t, "rpc-metrics.csv", cfg.Output)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeoutDuration)
	assert.Equal(t, 15*time.Second, cfg.WSTimeoutDuration)
	assert.Equal(t, 100*time.Millisecond, cfg.ThrottleDuration)
	assert.False(t, cfg.Influx.Enabled)
}

func TestLoad_JSONFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultConfigFile, `{
		"eth_ws": "wss://eth.example",
		"count": 3,
		"throttle": "0s",
		"endpoints": [{"name": "local", "url": "http://127.0.0.1:8545"}]
	}`)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, 3, cfg.Repetitions)
	assert.Zero(t, cfg.ThrottleDuration)

	var names []string
	for _, ep := range cfg.ResolveEndpoints() {
		names = append(names, ep.Name)
	}
	assert.Equal(t, []string{"ETH-HTTP", "BSC-HTTP", "ETH-WS", "local"}, names)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "run.yaml", "count: 7\nmethod_set: basic\nmode: concurrent\nworkers: 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, 7, cfg.Repetitions)
	assert.Equal(t, "concurrent", cfg.Mode)
	assert.Equal(t, 2, cfg.Workers)

	methods, unknown, err := cfg.ResolveMethods()
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Len(t, methods, 5)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("nope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "run.toml", "count = 1")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultConfigFile, `{"count": 3}`)
	t.Setenv("ETH_RPC_CHECK_COUNT", "5")
	t.Setenv("ETH_RPC_CHECK_INFLUX_ENABLED", "true")
	t.Setenv("ETH_RPC_CHECK_INFLUX_SAMPLE_RATE", "25%")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, 5, cfg.Repetitions)
	assert.True(t, cfg.Influx.Enabled)
	assert.InDelta(t, 25.0, cfg.Influx.SampleRatePct, 1e-9)
}

func TestLoad_ExplicitZeroIsRejected(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultConfigFile, `{"workers": 0}`)
	t.Setenv("ETH_RPC_CHECK_COUNT", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, cfg.Repetitions)
	assert.Zero(t, cfg.Workers)
	assert.Equal(t, DefaultOutput, cfg.Output)

	err = cfg.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count must be at least 1")
	assert.Contains(t, err.Error(), "workers must be at least 1")
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "ETH_RPC_CHECK_BSC_WS=wss://bsc.example\n")
	t.Cleanup(func() { os.Unsetenv("ETH_RPC_CHECK_BSC_WS") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "wss://bsc.example", cfg.BscWS)
}

func TestLoadEnv_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	assert.Zero(t, n)

	writeFile(t, dir, ".env.local", "ETH_RPC_CHECK_TEST_ONLY=1\n")
	t.Cleanup(func() { os.Unsetenv("ETH_RPC_CHECK_TEST_ONLY") })
	n, err = LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFinalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"repetitions too low", func(c *Config) { c.Repetitions = -1 }, "count must be at least 1"},
		{"zero repetitions", func(c *Config) { c.Repetitions = 0 }, "count must be at least 1"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers must be at least 1"},
		{"repetitions too high", func(c *Config) { c.Repetitions = 101 }, "count must be at most 100"},
		{"bad rpc url", func(c *Config) { c.EthRPC = "not a url" }, "eth_rpc must be a valid URL"},
		{"http scheme for ws", func(c *Config) { c.EthWS = "https://eth.example" }, "eth_ws: scheme must be one of ws, wss"},
		{"ws scheme for rpc", func(c *Config) { c.BscRPC = "wss://bsc.example" }, "bsc_rpc: scheme must be one of http, https"},
		{"bad timeout", func(c *Config) { c.HTTPTimeout = "soon" }, "http_timeout: invalid duration"},
		{"zero timeout", func(c *Config) { c.WSTimeout = "0s" }, "ws_timeout: duration \"0s\" must be positive"},
		{"negative throttle", func(c *Config) { c.Throttle = "-1s" }, "throttle: duration \"-1s\" must not be negative"},
		{"bad mode", func(c *Config) { c.Mode = "parallel" }, "mode must be one of"},
		{"bad method set", func(c *Config) { c.MethodSet = "some" }, "method_set must be one of"},
		{"methods and set", func(c *Config) { c.Methods = "eth_chainId"; c.MethodSet = "basic" }, "cannot be used together"},
		{"missing output dir", func(c *Config) { c.Output = filepath.Join("missing", "out.csv") }, "does not exist"},
		{"duplicate endpoint", func(c *Config) {
			c.Endpoints = []EndpointConfig{{Name: "ETH-HTTP", URL: "http://x.example"}}
		}, `endpoint "ETH-HTTP": duplicate name`},
		{"extra endpoint without url", func(c *Config) {
			c.Endpoints = []EndpointConfig{{Name: "x"}}
		}, "endpoints[0].url is required"},
		{"bad sample rate", func(c *Config) { c.Influx.Enabled = true; c.Influx.SampleRate = "150%" }, "influx: sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Finalize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveMethods(t *testing.T) {
	cfg := Default()
	methods, unknown, err := cfg.ResolveMethods()
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Len(t, methods, 25)

	cfg.Methods = "eth_chainId, bogus ,eth_blockNumber"
	methods, unknown, err = cfg.ResolveMethods()
	require.NoError(t, err)
	assert.Equal(t, []string{"bogus"}, unknown)
	require.Len(t, methods, 2)
	assert.Equal(t, "eth_blockNumber", methods[0].Name)

	cfg.Methods = "bogus"
	_, _, err = cfg.ResolveMethods()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid methods")
}

func TestParsePercent(t *testing.T) {
	for input, want := range map[string]float64{"10%": 10, "100": 100, "0.5": 50, " 2.5% ": 2.5} {
		got, err := parsePercent(input)
		require.NoError(t, err, input)
		assert.InDelta(t, want, got, 1e-9, input)
	}
	for _, input := range []string{"", "0", "abc", "101%", "-3"} {
		_, err := parsePercent(input)
		assert.Error(t, err, input)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Empty(t, SplitList(""))
}
