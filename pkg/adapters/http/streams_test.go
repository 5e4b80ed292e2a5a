package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager(nil)

	a, cancelA := sm.Subscribe(TopicItems)
	b, cancelB := sm.Subscribe(TopicServers)
	assert.Equal(t, 1, sm.Count(TopicItems))

	sm.Broadcast(TopicItems, "hello")
	assert.Equal(t, "hello", <-a)
	assert.Empty(t, b, "other topics receive nothing")

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open, "cancel closes the channel")
	assert.Equal(t, 0, sm.Count(TopicItems))

	cancelB()
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe(TopicServers)
	defer cancel()

	for i := 0; i < streamBuffer+5; i++ {
		sm.Broadcast(TopicServers, "x")
	}
	assert.Len(t, ch, streamBuffer)
}
