package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	type payload struct {
		Text string   `json:"text"`
		Tags []string `json:"tags"`
	}

	v := payload{Text: "hello", Tags: []string{"a", "b"}}

	a, err := JSON{}.Marshal(v)
	require.NoError(t, err)

	b, err := GoJSON{}.Marshal(v)
	require.NoError(t, err)

	// A snapshot written with one JSON codec must decode with the other.
	assert.Equal(t, a, b)

	var got payload
	require.NoError(t, GoJSON{}.Unmarshal(a, &got))
	assert.Equal(t, v, got)
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Text string `json:"text"`
		N    int    `json:"n"`
	}

	b, err := JSON{}.Marshal(payload{Text: "hello", N: 3})
	require.NoError(t, err)

	var got payload
	require.NoError(t, JSON{}.Unmarshal(b, &got))
	assert.Equal(t, payload{Text: "hello", N: 3}, got)
}
