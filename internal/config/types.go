package config

import "time"

type Config struct {
	EthRPC    string           `json:"eth_rpc" yaml:"eth_rpc" env:"ETH_RPC" validate:"required,url"`
	BscRPC    string           `json:"bsc_rpc" yaml:"bsc_rpc" env:"BSC_RPC" validate:"required,url"`
	EthWS     string           `json:"eth_ws,omitempty" yaml:"eth_ws,omitempty" env:"ETH_WS" validate:"omitempty,url"`
	BscWS     string           `json:"bsc_ws,omitempty" yaml:"bsc_ws,omitempty" env:"BSC_WS" validate:"omitempty,url"`
	Endpoints []EndpointConfig `json:"endpoints,omitempty" yaml:"endpoints,omitempty" env:"-" validate:"dive"`

	Methods     string `json:"methods,omitempty" yaml:"methods,omitempty" env:"METHODS"`
	MethodSet   string `json:"method_set,omitempty" yaml:"method_set,omitempty" env:"METHOD_SET" validate:"omitempty,oneof=all basic extended"`
	Repetitions int    `json:"count" yaml:"count" env:"COUNT" validate:"min=1,max=100"`
	Output      string `json:"output" yaml:"output" env:"OUTPUT" validate:"required"`

	HTTPTimeout string `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty" env:"HTTP_TIMEOUT"`
	WSTimeout   string `json:"ws_timeout,omitempty" yaml:"ws_timeout,omitempty" env:"WS_TIMEOUT"`
	Throttle    string `json:"throttle,omitempty" yaml:"throttle,omitempty" env:"THROTTLE"`
	Mode        string `json:"mode,omitempty" yaml:"mode,omitempty" env:"MODE" validate:"omitempty,oneof=sequential concurrent"`
	Workers     int    `json:"workers,omitempty" yaml:"workers,omitempty" env:"WORKERS" validate:"min=1,max=64"`
	Exhaustive  bool   `json:"exhaustive,omitempty" yaml:"exhaustive,omitempty" env:"EXHAUSTIVE"`
	StrictIDs   bool   `json:"strict_ids,omitempty" yaml:"strict_ids,omitempty" env:"STRICT_IDS"`
	LogLevel    string `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"LOG_LEVEL" validate:"omitempty,oneof=error warn info debug"`

	Influx InfluxConfig `json:"influx,omitzero" yaml:"influx,omitempty" envPrefix:"INFLUX_"`

	HTTPTimeoutDuration time.Duration `json:"-" yaml:"-" env:"-"`
	WSTimeoutDuration   time.Duration `json:"-" yaml:"-" env:"-"`
	ThrottleDuration    time.Duration `json:"-" yaml:"-" env:"-"`
}

// EndpointConfig is an extra endpoint beyond the four built-in flags.
type EndpointConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	URL  string `json:"url" yaml:"url" validate:"required,url"`
}

type InfluxConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty" env:"URL" validate:"omitempty,url"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty" env:"DATABASE"`
	Token      string `json:"token,omitempty" yaml:"token,omitempty" env:"TOKEN"`
	SampleRate string `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty" env:"SAMPLE_RATE"`

	SampleRatePct float64 `json:"-" yaml:"-" env:"-"`
}
