package client

import (
	"encoding/json"
	"strings"
)

// TransportKind selects how requests reach an endpoint.
type TransportKind int

const (
	TransportHTTP TransportKind = iota
	TransportPersistent
)

func (k TransportKind) String() string {
	switch k {
	case TransportPersistent:
		return "WebSocket"
	default:
		return "HTTP"
	}
}

// Endpoint is a named JSON-RPC target. The transport kind is fixed when the
// endpoint is built and cannot change afterwards.
type Endpoint struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	kind    TransportKind
}

func NewEndpoint(name, address string) Endpoint {
	return Endpoint{
		Name:    name,
		Address: address,
		kind:    KindOf(address),
	}
}

// KindOf classifies an address by its scheme prefix.
func KindOf(address string) TransportKind {
	lower := strings.ToLower(strings.TrimSpace(address))
	if strings.HasPrefix(lower, "ws://") || strings.HasPrefix(lower, "wss://") {
		return TransportPersistent
	}
	return TransportHTTP
}

func (e Endpoint) Kind() TransportKind {
	return e.kind
}

func (e Endpoint) IsPersistent() bool {
	return e.kind == TransportPersistent
}

func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string `json:"name"`
		Address   string `json:"address"`
		Transport string `json:"transport"`
	}{e.Name, e.Address, e.kind.String()})
}
