package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

func TestAll_OrderAndSize(t *testing.T) {
	methods := All()
	require.Len(t, methods, 25)
	assert.Equal(t, "web3_clientVersion", methods[0].Name)
	assert.Equal(t, "eth_getLogs", methods[len(methods)-1].Name)

	seen := map[string]bool{}
	for _, m := range methods {
		assert.False(t, seen[m.Name], "duplicate %s", m.Name)
		seen[m.Name] = true
		assert.NotNil(t, m.Params, m.Name)
	}
}

func TestBasicAndExtended(t *testing.T) {
	assert.Equal(t, []string{
		"eth_blockNumber", "eth_gasPrice", "eth_chainId", "net_version", "web3_clientVersion",
	}, Names(Basic()))

	ext := Names(Extended())
	require.Len(t, ext, 14)
	assert.Equal(t, Names(Basic()), ext[:5])
	assert.Equal(t, "eth_getBalance", ext[5])
	assert.Equal(t, []string{"eth_syncing", "net_listening"}, ext[12:])
}

func TestFilter_PreservesCatalogOrder(t *testing.T) {
	methods, unknown := Filter(" eth_chainId, web3_sha3,eth_bogus,eth_chainId")
	assert.Equal(t, []string{"web3_sha3", "eth_chainId"}, Names(methods))
	assert.Equal(t, []string{"eth_bogus"}, unknown)

	methods, unknown = Filter("nothing")
	assert.Empty(t, methods)
	assert.Equal(t, []string{"nothing"}, unknown)
}

func TestParseSet(t *testing.T) {
	s, err := ParseSet("")
	require.NoError(t, err)
	assert.Equal(t, SetAll, s)

	s, err = ParseSet("Basic")
	require.NoError(t, err)
	assert.Equal(t, SetBasic, s)
	assert.Len(t, ForSet(s), 5)

	_, err = ParseSet("fast")
	require.Error(t, err)
}

func TestParamsEncode(t *testing.T) {
	byName := map[string]client.Method{}
	for _, m := range All() {
		byName[m.Name] = m
	}

	data, err := json.Marshal(byName["eth_feeHistory"].Params)
	require.NoError(t, err)
	assert.JSONEq(t, `["0x1","latest",[25,50,75]]`, string(data))

	data, err = json.Marshal(byName["eth_getLogs"].Params)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"fromBlock":"latest","toBlock":"latest","address":"0x6b175474e89094c44da98b954eedeac495271d0f","topics":[]}]`, string(data))

	data, err = json.Marshal(byName["eth_chainId"].Params)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
