package realtime

import "sync"

// Registry maps character ids to the set of connections subscribed to them.
// It also keeps the reverse index so teardown is proportional to the number
// of subscriptions a connection holds, not to the number of characters ever
// seen. Invariant: a character id is present iff its subscriber set is
// non-empty; empty sets are pruned on every removal path.
type Registry struct {
	mu     sync.RWMutex
	byChar map[string]map[*Conn]struct{}
	byConn map[*Conn]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byChar: make(map[string]map[*Conn]struct{}),
		byConn: make(map[*Conn]map[string]struct{}),
	}
}

// Subscribe adds c to the subscriber set of characterID. Subscribing an
// already-subscribed connection is a no-op.
func (reg *Registry) Subscribe(characterID string, c *Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	set := reg.byChar[characterID]
	if set == nil {
		set = make(map[*Conn]struct{})
		reg.byChar[characterID] = set
	}
	set[c] = struct{}{}

	chars := reg.byConn[c]
	if chars == nil {
		chars = make(map[string]struct{})
		reg.byConn[c] = chars
	}
	chars[characterID] = struct{}{}
}

// Unsubscribe removes c from the subscriber set of characterID. Removing a
// connection that is not subscribed is a no-op.
func (reg *Registry) Unsubscribe(characterID string, c *Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.removeLocked(characterID, c)
}

// RemoveConn removes c from every entry it belongs to. Called on transport
// close; safe when the connection never subscribed to anything.
func (reg *Registry) RemoveConn(c *Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for characterID := range reg.byConn[c] {
		reg.removeLocked(characterID, c)
	}
}

func (reg *Registry) removeLocked(characterID string, c *Conn) {
	if set, ok := reg.byChar[characterID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(reg.byChar, characterID)
		}
	}
	if chars, ok := reg.byConn[c]; ok {
		delete(chars, characterID)
		if len(chars) == 0 {
			delete(reg.byConn, c)
		}
	}
}

// Targets returns a snapshot of the subscribers of characterID minus the
// excluded connection. Subscription changes after the call do not affect an
// in-flight broadcast iterating the returned slice.
func (reg *Registry) Targets(characterID string, excluding *Conn) []*Conn {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	set := reg.byChar[characterID]
	targets := make([]*Conn, 0, len(set))
	for c := range set {
		if c != excluding {
			targets = append(targets, c)
		}
	}
	return targets
}

// Subscribers reports the current subscriber count for characterID.
func (reg *Registry) Subscribers(characterID string) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.byChar[characterID])
}

// Characters reports how many character ids currently have subscribers.
func (reg *Registry) Characters() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.byChar)
}
