package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	jsonRPCVersion   = "2.0"
	DefaultRequestID = 1

	maxResponseSize = 16 << 20
)

// Request is the JSON-RPC 2.0 envelope sent over both transports.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func NewRequest(m Method) Request {
	params := m.Params
	if params == nil {
		params = []any{}
	}
	return Request{
		JSONRPC: jsonRPCVersion,
		ID:      DefaultRequestID,
		Method:  m.Name,
		Params:  params,
	}
}

// Response is the result of one request/response cycle. Success is false when
// the node answered with a JSON-RPC error object.
type Response struct {
	Success      bool
	Latency      time.Duration
	ErrorMessage string
	Body         json.RawMessage
}

type rpcError struct {
	Message *string `json:"message"`
}

// decodeResponse classifies a response body. A body that is not a JSON object
// is reported as ErrJSONRPC; an object carrying a top-level "error" key is a
// well-formed application failure.
func decodeResponse(body []byte, latency time.Duration) (Response, json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		if err == nil {
			err = fmt.Errorf("expected object, got %s", truncate(body, 32))
		}
		return Response{Latency: latency}, nil, fmt.Errorf("%w: failed to parse response: %v", ErrJSONRPC, err)
	}

	resp := Response{
		Success: true,
		Latency: latency,
		Body:    json.RawMessage(body),
	}

	if raw, ok := fields["error"]; ok {
		resp.Success = false
		resp.ErrorMessage = errorMessage(raw)
	}

	return resp, fields["id"], nil
}

func errorMessage(raw json.RawMessage) string {
	var e rpcError
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != nil {
		return *e.Message
	}
	return truncate(bytes.TrimSpace(raw), 200)
}

func idMatches(raw json.RawMessage, id uint64) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return s == strconv.FormatUint(id, 10)
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	return err == nil && n == id
}

func truncate(body []byte, maxLen int) string {
	if len(body) <= maxLen {
		return string(body)
	}
	return string(body[:maxLen]) + "..."
}
