package bytesbuilder_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/bytesbuilder"
	"github.com/stretchr/testify/require"
)

func TestPushAndWriteTo(t *testing.T) {
	b := bytesbuilder.New(4)
	b.PushStatic(`{"a":`)
	b.Push([]byte("1"))
	b.PushStatic(`}`)

	require.Equal(t, len(`{"a":1}`), b.TotalLen())

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Equal(t, `{"a":1}`, buf.String())
}

func TestPushJSONList(t *testing.T) {
	b := bytesbuilder.New(0)
	b.PushJSONList(3, func(i int) []byte {
		return []byte(strconv.Itoa(i))
	})
	require.Equal(t, "[0,1,2]", string(b.Bytes()))
}

func TestPushJSONListEmpty(t *testing.T) {
	b := bytesbuilder.New(0)
	b.PushJSONList(0, func(i int) []byte { return nil })
	require.Equal(t, "[]", string(b.Bytes()))
}

func TestPushEmptyIsNoop(t *testing.T) {
	b := bytesbuilder.New(0)
	b.Push(nil)
	b.Push([]byte{})
	require.Equal(t, 0, b.TotalLen())
}

func TestExtend(t *testing.T) {
	a := bytesbuilder.New(0)
	a.PushStatic("a")
	c := bytesbuilder.New(0)
	c.PushStatic("b")
	a.Extend(c)
	require.Equal(t, "ab", string(a.Bytes()))
}
