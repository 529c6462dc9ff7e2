package methods

import (
	"encoding/json"
	"fmt"
)

// parseParamsArray splits a request's raw params into its positional
// elements. eth_* methods never take a params object, only an array, so
// this is the one params shape every handler in this package needs to
// understand.
func parseParamsArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var params []json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("params must be an array: %w", err)
	}
	return params, nil
}

// paramBool unmarshals an optional boolean positional parameter,
// returning def when the parameter was not supplied at all.
func paramBool(params []json.RawMessage, i int, def bool) (bool, error) {
	if i >= len(params) || len(params[i]) == 0 || string(params[i]) == "null" {
		return def, nil
	}
	var v bool
	if err := json.Unmarshal(params[i], &v); err != nil {
		return false, fmt.Errorf("parameter %d must be a boolean", i)
	}
	return v, nil
}
