package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/config"
)

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	var f rootFlags
	cmd := newRootCmdWith(&f)
	require.NoError(t, cmd.ParseFlags([]string{"-c", "3", "--eth-ws", "wss://eth.example", "--basic", "--strict-ids"}))

	cfg := config.Default()
	cfg.BscRPC = "https://from-file.example"
	applyFlags(cmd, cfg, &f)

	assert.Equal(t, 3, cfg.Repetitions)
	assert.Equal(t, "wss://eth.example", cfg.EthWS)
	assert.Equal(t, "basic", cfg.MethodSet)
	assert.Empty(t, cfg.Methods)
	assert.True(t, cfg.StrictIDs)
	assert.Equal(t, "https://from-file.example", cfg.BscRPC)
	assert.Equal(t, config.DefaultOutput, cfg.Output)
}

func TestApplyFlags_MethodsReplaceSet(t *testing.T) {
	var f rootFlags
	cmd := newRootCmdWith(&f)
	require.NoError(t, cmd.ParseFlags([]string{"-m", "eth_chainId,net_version"}))

	cfg := config.Default()
	cfg.MethodSet = "extended"
	applyFlags(cmd, cfg, &f)

	assert.Equal(t, "eth_chainId,net_version", cfg.Methods)
	assert.Empty(t, cfg.MethodSet)
}

func TestLoadConfig_ZeroCountFlagIsRejected(t *testing.T) {
	t.Chdir(t.TempDir())

	var f rootFlags
	cmd := newRootCmdWith(&f)
	require.NoError(t, cmd.ParseFlags([]string{"--count", "0", "--workers", "0"}))

	_, err := loadConfig(cmd, &f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count must be at least 1")
	assert.Contains(t, err.Error(), "workers must be at least 1")
}

func TestMethodFlagsAreMutuallyExclusive(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--basic", "--extended"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestApplySelection(t *testing.T) {
	cfg := config.Default()
	applySelection(cfg, &cli.Selection{MethodSet: "custom", Methods: []string{"eth_call", "eth_chainId"}, Repetitions: 4, Concurrent: true})
	assert.Equal(t, "eth_call,eth_chainId", cfg.Methods)
	assert.Empty(t, cfg.MethodSet)
	assert.Equal(t, 4, cfg.Repetitions)
	assert.Equal(t, "concurrent", cfg.Mode)

	applySelection(cfg, &cli.Selection{MethodSet: "basic", Repetitions: 1})
	assert.Equal(t, "basic", cfg.MethodSet)
	assert.Empty(t, cfg.Methods)
}

func TestFilterEndpoints(t *testing.T) {
	endpoints := []client.Endpoint{
		client.NewEndpoint("ETH-HTTP", "https://a"),
		client.NewEndpoint("BSC-HTTP", "https://b"),
		client.NewEndpoint("ETH-WS", "wss://c"),
	}
	got := filterEndpoints(endpoints, []string{"ETH-WS", "ETH-HTTP"})
	require.Len(t, got, 2)
	assert.Equal(t, "ETH-HTTP", got[0].Name)
	assert.Equal(t, "ETH-WS", got[1].Name)
}

func TestMethodsCommand(t *testing.T) {
	var buf bytes.Buffer
	prev := cli.SetOutput(&buf)
	defer cli.SetOutput(prev)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"methods", "--set", "basic"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Methods (basic, 5)")
	assert.Contains(t, buf.String(), "eth_blockNumber")
}
