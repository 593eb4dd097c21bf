package hostsfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterSubscribeUnsubscribe(t *testing.T) {
	b := newBroadcaster()
	s1 := b.subscribe()
	s2 := b.subscribe()
	assert.Equal(t, 2, b.count())

	delivered, dropped := b.publish(Event{Content: "x"})
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, "x", (<-s1.C).Content)
	assert.Equal(t, "x", (<-s2.C).Content)

	s1.Close()
	s1.Close()
	assert.Equal(t, 1, b.count())

	_, ok := <-s1.C
	assert.False(t, ok, "closed subscription channel must be closed")
}

func TestBroadcasterDropsForSlowConsumer(t *testing.T) {
	b := newBroadcaster()
	sub := b.subscribe()
	defer sub.Close()

	fast := b.subscribe()
	defer fast.Close()

	for i := 0; i < subscriberBuffer; i++ {
		delivered, dropped := b.publish(Event{})
		require.Equal(t, 2, delivered)
		require.Equal(t, 0, dropped)
	}
	for i := 0; i < subscriberBuffer; i++ {
		<-fast.C
	}

	delivered, dropped := b.publish(Event{Content: "late"})
	assert.Equal(t, 1, delivered, "reader with room still receives")
	assert.Equal(t, 1, dropped, "full buffer drops")
	assert.Len(t, sub.C, subscriberBuffer)
}

func TestBroadcasterClose(t *testing.T) {
	b := newBroadcaster()
	sub := b.subscribe()

	b.close()
	b.close()
	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Equal(t, 0, b.count())

	// Subscribing after close yields a closed channel.
	late := b.subscribe()
	_, ok = <-late.C
	assert.False(t, ok)
	late.Close()
}
