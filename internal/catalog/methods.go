// Package catalog holds the fixed list of JSON-RPC methods the checker knows
// how to call, grouped the way node operators usually probe them.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
)

// Addresses used as call targets. They exist on Ethereum mainnet; on other
// chains the calls still exercise the node but may return empty values.
const (
	VitalikAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	DAIContract    = "0x6b175474e89094c44da98b954eedeac495271d0f"
	USDCContract   = "0xa0b86a33e6c5bb4d9b0c44a8b5ec23c9b02a1a8a"

	// name() selector.
	nameSelector = "0x06fdde03"
)

type Set string

const (
	SetAll      Set = "all"
	SetBasic    Set = "basic"
	SetExtended Set = "extended"
)

var Sets = []Set{SetAll, SetBasic, SetExtended}

func ParseSet(value string) (Set, error) {
	s := Set(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case "":
		return SetAll, nil
	case SetAll, SetBasic, SetExtended:
		return s, nil
	default:
		return "", fmt.Errorf("unknown method set %q (want all, basic or extended)", value)
	}
}

func web3Methods() []client.Method {
	return []client.Method{
		client.NewMethod("web3_clientVersion", nil, "client version string"),
		client.NewMethod("web3_sha3", []any{"0x68656c6c6f20776f726c64"}, "keccak-256 of \"hello world\""),
	}
}

func netMethods() []client.Method {
	return []client.Method{
		client.NewMethod("net_version", nil, "network id"),
		client.NewMethod("net_listening", nil, "whether the node accepts peers"),
		client.NewMethod("net_peerCount", nil, "connected peer count"),
	}
}

func ethBasicMethods() []client.Method {
	return []client.Method{
		client.NewMethod("eth_protocolVersion", nil, "protocol version"),
		client.NewMethod("eth_syncing", nil, "sync status"),
		client.NewMethod("eth_coinbase", nil, "coinbase address"),
		client.NewMethod("eth_mining", nil, "whether the node is mining"),
		client.NewMethod("eth_hashrate", nil, "mining hashrate"),
		client.NewMethod("eth_gasPrice", nil, "current gas price"),
		client.NewMethod("eth_accounts", nil, "accounts owned by the node"),
		client.NewMethod("eth_blockNumber", nil, "latest block number"),
		client.NewMethod("eth_chainId", nil, "chain id"),
	}
}

func ethQueryMethods() []client.Method {
	return []client.Method{
		client.NewMethod("eth_getBalance", []any{VitalikAddress, "latest"}, "balance of a well-known account"),
		client.NewMethod("eth_getTransactionCount", []any{VitalikAddress, "latest"}, "account nonce"),
		client.NewMethod("eth_getBlockByNumber", []any{"latest", false}, "latest block without transactions"),
		client.NewMethod("eth_getBlockTransactionCountByNumber", []any{"latest"}, "transaction count of the latest block"),
		client.NewMethod("eth_getUncleCountByBlockNumber", []any{"latest"}, "uncle count of the latest block"),
		client.NewMethod("eth_getCode", []any{DAIContract, "latest"}, "DAI contract bytecode"),
		client.NewMethod("eth_getStorageAt", []any{DAIContract, "0x0", "latest"}, "DAI storage slot 0"),
	}
}

func ethAdvancedMethods() []client.Method {
	call := map[string]any{"to": DAIContract, "data": nameSelector}
	return []client.Method{
		client.NewMethod("eth_call", []any{call, "latest"}, "DAI name() read-only call"),
		client.NewMethod("eth_estimateGas", []any{map[string]any{"to": DAIContract, "data": nameSelector}}, "gas estimate for DAI name()"),
		client.NewMethod("eth_feeHistory", []any{"0x1", "latest", []any{25, 50, 75}}, "fee history of the latest block"),
		client.NewMethod("eth_getLogs", []any{map[string]any{
			"fromBlock": "latest",
			"toBlock":   "latest",
			"address":   DAIContract,
			"topics":    []any{},
		}}, "DAI logs in the latest block"),
	}
}

// All returns every known method in catalog order.
func All() []client.Method {
	var methods []client.Method
	methods = append(methods, web3Methods()...)
	methods = append(methods, netMethods()...)
	methods = append(methods, ethBasicMethods()...)
	methods = append(methods, ethQueryMethods()...)
	methods = append(methods, ethAdvancedMethods()...)
	return methods
}

// Basic is a quick five-method health probe.
func Basic() []client.Method {
	return []client.Method{
		client.NewMethod("eth_blockNumber", nil, "latest block number"),
		client.NewMethod("eth_gasPrice", nil, "current gas price"),
		client.NewMethod("eth_chainId", nil, "chain id"),
		client.NewMethod("net_version", nil, "network id"),
		client.NewMethod("web3_clientVersion", nil, "client version string"),
	}
}

// Extended adds the state queries to Basic.
func Extended() []client.Method {
	methods := Basic()
	methods = append(methods, ethQueryMethods()...)
	methods = append(methods,
		client.NewMethod("eth_syncing", nil, "sync status"),
		client.NewMethod("net_listening", nil, "whether the node accepts peers"),
	)
	return methods
}

func ForSet(s Set) []client.Method {
	switch s {
	case SetBasic:
		return Basic()
	case SetExtended:
		return Extended()
	default:
		return All()
	}
}

// Filter keeps the catalog methods named in a comma separated list, in
// catalog order. Names that match nothing are returned as unknown.
func Filter(list string) (methods []client.Method, unknown []string) {
	var names []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	seen := make(map[string]bool, len(names))
	for _, m := range All() {
		if slices.Contains(names, m.Name) {
			methods = append(methods, m)
			seen[m.Name] = true
		}
	}
	for _, name := range names {
		if !seen[name] {
			unknown = append(unknown, name)
		}
	}
	return methods, unknown
}

// Names lists method names in order.
func Names(methods []client.Method) []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	return names
}
