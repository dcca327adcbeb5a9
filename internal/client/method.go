package client

// Method is one JSON-RPC method with the params it is called with.
type Method struct {
	Name        string `json:"name"`
	Params      []any  `json:"params"`
	Description string `json:"description,omitempty"`
}

func NewMethod(name string, params []any, description string) Method {
	if params == nil {
		params = []any{}
	}
	return Method{Name: name, Params: params, Description: description}
}
