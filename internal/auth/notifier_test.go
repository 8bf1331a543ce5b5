package auth

import (
	"testing"

	"github.com/psychmag/psychmag/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_FanOut(t *testing.T) {
	n := NewNotifier()
	a, cancelA := n.Subscribe()
	b, cancelB := n.Subscribe()
	defer cancelB()
	assert.Equal(t, 2, n.Subscribers())

	event := core.SessionEvent{Kind: core.SessionSignedIn, AccessToken: "tok"}
	n.Publish(event)

	assert.Equal(t, event, <-a)
	assert.Equal(t, event, <-b)

	cancelA()
	cancelA()
	assert.Equal(t, 1, n.Subscribers())

	_, open := <-a
	assert.False(t, open, "cancelled channel is closed")
}

func TestNotifier_PublishNeverBlocks(t *testing.T) {
	n := NewNotifier()
	_, cancel := n.Subscribe()
	defer cancel()

	for range subscriberBuffer * 2 {
		n.Publish(core.SessionEvent{Kind: core.SessionSignedOut})
	}
}
