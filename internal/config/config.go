// Package config resolves the run configuration from defaults, an optional
// JSON or YAML file, the environment and command-line overrides.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/catalog"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/client"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/influx"
)

const (
	NameEthHTTP = "ETH-HTTP"
	NameBscHTTP = "BSC-HTTP"
	NameEthWS   = "ETH-WS"
	NameBscWS   = "BSC-WS"
)

// ResolveEndpoints returns the endpoints to probe in run order: the two HTTP
// endpoints, any configured WebSocket endpoints, then file-defined extras.
func (c *Config) ResolveEndpoints() []client.Endpoint {
	endpoints := []client.Endpoint{
		client.NewEndpoint(NameEthHTTP, c.EthRPC),
		client.NewEndpoint(NameBscHTTP, c.BscRPC),
	}
	if c.EthWS != "" {
		endpoints = append(endpoints, client.NewEndpoint(NameEthWS, c.EthWS))
	}
	if c.BscWS != "" {
		endpoints = append(endpoints, client.NewEndpoint(NameBscWS, c.BscWS))
	}
	for _, ep := range c.Endpoints {
		endpoints = append(endpoints, client.NewEndpoint(ep.Name, ep.URL))
	}
	return endpoints
}

// ResolveMethods applies the method list or method set. Unknown names in the
// list are returned so the caller can warn about them.
func (c *Config) ResolveMethods() ([]client.Method, []string, error) {
	if strings.TrimSpace(c.Methods) != "" {
		methods, unknown := catalog.Filter(c.Methods)
		if len(methods) == 0 {
			return nil, unknown, fmt.Errorf("no valid methods in %q", c.Methods)
		}
		return methods, unknown, nil
	}

	set, err := catalog.ParseSet(c.MethodSet)
	if err != nil {
		return nil, nil, err
	}
	return catalog.ForSet(set), nil, nil
}

// Export converts the validated InfluxDB section into client settings.
func (i InfluxConfig) Export() influx.Config {
	return influx.Config{
		Enabled:    i.Enabled,
		URL:        i.URL,
		Database:   i.Database,
		Token:      i.Token,
		SampleRate: i.SampleRatePct / 100,
	}
}

func (c *Config) Print() {
	cli.Section("Configuration")
	cli.KeyValuePairs(
		"Repetitions", strconv.Itoa(c.Repetitions),
		"Mode", c.Mode,
		"Throttle", cli.FormatDuration(c.ThrottleDuration),
		"HTTP timeout", cli.FormatDuration(c.HTTPTimeoutDuration),
		"WS timeout", cli.FormatDuration(c.WSTimeoutDuration),
		"Output", c.Output,
	)
	if c.Mode == "concurrent" {
		cli.KeyValue("Workers", strconv.Itoa(c.Workers))
	}
	if c.Exhaustive {
		cli.KeyValue("Early abort", "disabled")
	}
	if c.StrictIDs {
		cli.KeyValue("Response ids", "strict")
	}
	if c.Influx.Enabled {
		cli.KeyValue("InfluxDB", fmt.Sprintf("%s (%s, sample %s)", c.Influx.URL, c.Influx.Database, c.Influx.SampleRate))
	}
}
