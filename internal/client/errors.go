package client

import "errors"

var (
	ErrNetwork    = errors.New("network error")
	ErrWebSocket  = errors.New("websocket error")
	ErrTimeout    = errors.New("timeout")
	ErrJSONRPC    = errors.New("json-rpc error")
	ErrConfig     = errors.New("config error")
	ErrConnection = errors.New("connection failed")
)
