package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_Envelope(t *testing.T) {
	req := NewRequest(Method{Name: "eth_getBalance", Params: []any{"0xabc", "latest"}})
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"eth_getBalance","params":["0xabc","latest"]}`, string(data))

	data, err = json.Marshal(NewRequest(Method{Name: "eth_chainId"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`, string(data))
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantMessage string
		wantErr     bool
	}{
		{name: "result", body: `{"jsonrpc":"2.0","id":1,"result":"0x10"}`, wantSuccess: true},
		{name: "null result", body: `{"jsonrpc":"2.0","id":1,"result":null}`, wantSuccess: true},
		{name: "error with message", body: `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`, wantMessage: "method not found"},
		{name: "error without message", body: `{"jsonrpc":"2.0","id":1,"error":{"code":-32000}}`, wantMessage: `{"code":-32000}`},
		{name: "null error", body: `{"jsonrpc":"2.0","id":1,"error":null}`, wantMessage: "null"},
		{name: "not json", body: `<html>bad gateway</html>`, wantErr: true},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "null body", body: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _, err := decodeResponse([]byte(tt.body), 5*time.Millisecond)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrJSONRPC)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.ErrorMessage)
			assert.Equal(t, 5*time.Millisecond, resp.Latency)
		})
	}
}

func TestIDMatches(t *testing.T) {
	assert.True(t, idMatches(json.RawMessage(`7`), 7))
	assert.True(t, idMatches(json.RawMessage(`"7"`), 7))
	assert.False(t, idMatches(json.RawMessage(`8`), 7))
	assert.False(t, idMatches(json.RawMessage(`null`), 7))
	assert.False(t, idMatches(nil, 7))
}
