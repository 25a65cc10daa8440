package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// newTestConn builds a Conn without a live websocket. Send only touches the
// out channel, so dispatcher and registry behavior is fully testable offline.
func newTestConn(user uuid.UUID) *Conn {
	return &Conn{
		id:   uuid.New(),
		user: user,
		out:  make(chan []byte, 16),
	}
}

func TestSubscribeAndUnsubscribePrunesEntry(t *testing.T) {
	reg := NewRegistry()
	c := newTestConn(uuid.New())
	charID := uuid.New().String()

	reg.Subscribe(charID, c)
	assert.Equal(t, 1, reg.Subscribers(charID))
	assert.Equal(t, 1, reg.Characters())

	reg.Unsubscribe(charID, c)
	assert.Equal(t, 0, reg.Subscribers(charID))
	assert.Equal(t, 0, reg.Characters(), "empty subscriber sets must be pruned, not kept")
}

func TestSubscribeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	c := newTestConn(uuid.New())
	charID := uuid.New().String()

	reg.Subscribe(charID, c)
	reg.Subscribe(charID, c)
	assert.Equal(t, 1, reg.Subscribers(charID))

	reg.Unsubscribe(charID, c)
	assert.Equal(t, 0, reg.Characters())
}

func TestUnsubscribeUnknownIsNoop(t *testing.T) {
	reg := NewRegistry()
	c := newTestConn(uuid.New())

	reg.Unsubscribe(uuid.New().String(), c)
	assert.Equal(t, 0, reg.Characters())
}

func TestRemoveConnClearsAllSubscriptions(t *testing.T) {
	reg := NewRegistry()
	a := newTestConn(uuid.New())
	b := newTestConn(uuid.New())
	char1 := uuid.New().String()
	char2 := uuid.New().String()
	char3 := uuid.New().String()

	reg.Subscribe(char1, a)
	reg.Subscribe(char2, a)
	reg.Subscribe(char3, a)
	reg.Subscribe(char1, b)

	reg.RemoveConn(a)

	assert.Equal(t, 1, reg.Subscribers(char1), "b must survive a's teardown")
	assert.Equal(t, 0, reg.Subscribers(char2))
	assert.Equal(t, 0, reg.Subscribers(char3))
	assert.Equal(t, 1, reg.Characters())
	assert.Empty(t, reg.byConn[a])
}

func TestRemoveConnNeverSubscribedIsSafe(t *testing.T) {
	reg := NewRegistry()
	reg.RemoveConn(newTestConn(uuid.New()))
	assert.Equal(t, 0, reg.Characters())
}

func TestTargetsExcludesOriginator(t *testing.T) {
	reg := NewRegistry()
	a := newTestConn(uuid.New())
	b := newTestConn(uuid.New())
	charID := uuid.New().String()

	reg.Subscribe(charID, a)
	reg.Subscribe(charID, b)

	targets := reg.Targets(charID, a)
	assert.Len(t, targets, 1)
	assert.Same(t, b, targets[0])
}

func TestTargetsIsASnapshot(t *testing.T) {
	reg := NewRegistry()
	a := newTestConn(uuid.New())
	b := newTestConn(uuid.New())
	charID := uuid.New().String()

	reg.Subscribe(charID, a)
	reg.Subscribe(charID, b)

	targets := reg.Targets(charID, nil)
	reg.Unsubscribe(charID, a)
	reg.Unsubscribe(charID, b)

	assert.Len(t, targets, 2, "later unsubscribes must not affect an in-flight snapshot")
	assert.Equal(t, 0, reg.Characters())
}

func TestConcurrentChurnLeavesRegistryConsistent(t *testing.T) {
	reg := NewRegistry()
	charIDs := make([]string, 8)
	for i := range charIDs {
		charIDs[i] = uuid.New().String()
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestConn(uuid.New())
			for iter := 0; iter < 100; iter++ {
				for _, id := range charIDs {
					reg.Subscribe(id, c)
				}
				reg.Targets(charIDs[iter%len(charIDs)], c)
				reg.Unsubscribe(charIDs[iter%len(charIDs)], c)
				reg.RemoveConn(c)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Characters())
	assert.Empty(t, reg.byConn)
}
