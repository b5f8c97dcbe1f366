package livetiming

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventReader(t *testing.T) {
	stream := ": keep-alive\n" +
		"id: 1\n" +
		"event: update\n" +
		"data: {\"a\":1}\n" +
		"\n" +
		"data: {\"b\":\n" +
		"data: 2}\n" +
		"\r\n" +
		"{\"raw\":true}\n" +
		"\n" +
		"\n" +
		"data: {\"tail\":1}"

	er := NewEventReader(strings.NewReader(stream))

	ev, err := er.Next()
	require.NoError(t, err)
	assert.Equal(t, Event{ID: "1", Event: "update", Data: `{"a":1}`}, ev)

	ev, err = er.Next()
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":\n2}", ev.Data)

	ev, err = er.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"raw":true}`, ev.Data)

	ev, err = er.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"tail":1}`, ev.Data)

	_, err = er.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecodeSnapshot(t *testing.T) {
	_, ok := decodeSnapshot(`{"error": "no session"}`)
	assert.False(t, ok)
	_, ok = decodeSnapshot(`not json`)
	assert.False(t, ok)
	_, ok = decodeSnapshot("  ")
	assert.False(t, ok)

	rd, ok := decodeSnapshot(`{"drivers": {"1": {"car_number": "1", "position": "1"}}}`)
	require.True(t, ok)
	assert.Equal(t, TimingValue("1"), rd.Drivers["1"].Position)
}
