package notify

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-ongera/amazon/pkg/logger"
)

func newTestChannel() *Channel {
	return NewChannel(logger.NewWithWriter("notify-test", "error", io.Discard))
}

func TestChannel_ShowAndExpire(t *testing.T) {
	c := newTestChannel()
	defer c.Close()

	id := c.Show("Item added to cart", SeveritySuccess, 30*time.Millisecond)

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)
	assert.Equal(t, "Item added to cart", active[0].Message)
	assert.Equal(t, SeveritySuccess, active[0].Severity)

	assert.Eventually(t, func() bool {
		return len(c.Active()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestChannel_DefaultDuration(t *testing.T) {
	c := newTestChannel()
	defer c.Close()

	c.Show("hello", SeverityInfo, 0)

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, DefaultDuration, active[0].Duration)
}

func TestChannel_DismissIsIdempotent(t *testing.T) {
	c := newTestChannel()
	defer c.Close()

	id := c.Error("Something went wrong")
	c.Dismiss(id)
	c.Dismiss(id)
	c.Dismiss("never-existed")

	assert.Empty(t, c.Active())
}

func TestChannel_InsertionOrder(t *testing.T) {
	c := newTestChannel()
	defer c.Close()

	c.Show("first", SeverityInfo, time.Minute)
	c.Show("second", SeverityInfo, time.Minute)
	c.Show("third", SeverityInfo, time.Minute)

	active := c.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "first", active[0].Message)
	assert.Equal(t, "second", active[1].Message)
	assert.Equal(t, "third", active[2].Message)
}

func TestChannel_SubscriberSeesChanges(t *testing.T) {
	c := newTestChannel()
	defer c.Close()

	var mu sync.Mutex
	var last []Notification
	unsubscribe := c.Subscribe(func(active []Notification) {
		mu.Lock()
		last = active
		mu.Unlock()
	})

	id := c.Success("Order placed")

	mu.Lock()
	require.Len(t, last, 1)
	assert.Equal(t, id, last[0].ID)
	mu.Unlock()

	c.Dismiss(id)

	mu.Lock()
	assert.Empty(t, last)
	mu.Unlock()

	unsubscribe()
	c.Info("after unsubscribe")

	mu.Lock()
	assert.Empty(t, last)
	mu.Unlock()
}
