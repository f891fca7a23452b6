package mykafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)
}

func TestMessage_EncodesEvent(t *testing.T) {
	msg, err := Message("order_events", "ref-1", map[string]any{
		"type":            "order_paid",
		"transaction_ref": "ref-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "order_events", msg.Topic)
	assert.Equal(t, []byte("ref-1"), msg.Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "order_paid", got["type"])
}

func TestMessage_RejectsUnencodable(t *testing.T) {
	_, err := Message("order_events", "k", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
