package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	ps := NewPubSub[string]()
	a := ps.Subscribe("board")
	b := ps.Subscribe("board")
	other := ps.Subscribe("other")

	ps.Publish("board", "v1")

	assert.Equal(t, "v1", <-a)
	assert.Equal(t, "v1", <-b)
	assert.Empty(t, other)
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	ps := NewPubSub[int]()
	ch := ps.Subscribe("board")

	ps.Publish("board", 1)
	ps.Publish("board", 2)
	ps.Publish("board", 3)

	require.Len(t, ch, 1)
	assert.Equal(t, 3, <-ch)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewPubSub[int]()
	a := ps.Subscribe("board")
	b := ps.Subscribe("board")

	ps.Unsubscribe("board", a)
	assert.Equal(t, 1, ps.Subscribers("board"))

	_, ok := <-a
	assert.False(t, ok)

	ps.Publish("board", 7)
	assert.Equal(t, 7, <-b)
}
