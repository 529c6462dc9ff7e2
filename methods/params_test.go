package methods

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseParamsArrayEmpty(t *testing.T) {
	params, err := parseParamsArray(nil)
	require.NoError(t, err)
	require.Nil(t, params)
}

func TestParseParamsArrayRejectsObject(t *testing.T) {
	_, err := parseParamsArray(json.RawMessage(`{"foo":"bar"}`))
	require.Error(t, err)
}

func TestParseParamsArrayOrdersElements(t *testing.T) {
	params, err := parseParamsArray(json.RawMessage(`["0x1", true]`))
	require.NoError(t, err)
	require.Len(t, params, 2)
	require.Equal(t, `"0x1"`, string(params[0]))
	require.Equal(t, `true`, string(params[1]))
}

func TestParamBoolDefaultsWhenMissing(t *testing.T) {
	v, err := paramBool(nil, 1, true)
	require.NoError(t, err)
	require.True(t, v)

	params := []json.RawMessage{json.RawMessage(`"0x1"`)}
	v, err = paramBool(params, 1, false)
	require.NoError(t, err)
	require.False(t, v)
}

func TestParamBoolDefaultsOnNull(t *testing.T) {
	params := []json.RawMessage{json.RawMessage(`"0x1"`), json.RawMessage(`null`)}
	v, err := paramBool(params, 1, true)
	require.NoError(t, err)
	require.True(t, v)
}

func TestParamBoolParsesValue(t *testing.T) {
	params := []json.RawMessage{json.RawMessage(`"0x1"`), json.RawMessage(`true`)}
	v, err := paramBool(params, 1, false)
	require.NoError(t, err)
	require.True(t, v)
}

func TestParamBoolRejectsNonBoolean(t *testing.T) {
	params := []json.RawMessage{json.RawMessage(`"not a bool"`)}
	_, err := paramBool(params, 0, false)
	require.Error(t, err)
}
