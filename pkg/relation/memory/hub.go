// Package memory provides an in-process relation hub holding both partitions of every
// relation. It stands in for the host's shared data channel in tests and embedded setups.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

// WriteObserver is called after a side wrote its partition of a relation.
type WriteObserver func(writer relation.Side, relationID string)

type Hub struct {
	mu        sync.RWMutex
	relations map[string]map[relation.Side]relation.Databag
	observers []WriteObserver
}

func NewHub() *Hub {
	return &Hub{relations: map[string]map[relation.Side]relation.Databag{}}
}

// Establish creates an empty relation. Establishing an existing relation is a no-op.
func (h *Hub) Establish(relationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.relations[relationID]; ok {
		return
	}
	h.relations[relationID] = map[relation.Side]relation.Databag{
		relation.SideRequirer: {},
		relation.SideProvider: {},
	}
}

func (h *Hub) Remove(relationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.relations, relationID)
}

// Observe registers fn for every subsequent write.
func (h *Hub) Observe(fn WriteObserver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Partition returns a copy of one side's partition, nil if the relation does not exist.
func (h *Hub) Partition(side relation.Side, relationID string) relation.Databag {
	h.mu.RLock()
	defer h.mu.RUnlock()

	partitions, ok := h.relations[relationID]
	if !ok {
		return nil
	}
	return partitions[side].Clone()
}

// Channel returns the view of the hub for one side.
func (h *Hub) Channel(side relation.Side) relation.Channel {
	return &channel{hub: h, side: side}
}

type channel struct {
	hub  *Hub
	side relation.Side
}

var _ relation.Channel = &channel{}

func (c *channel) Relations(_ context.Context) ([]string, error) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	ids := make([]string, 0, len(c.hub.relations))
	for id := range c.hub.relations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (c *channel) LocalData(_ context.Context, relationID string) (relation.Databag, error) {
	return c.read(c.side, relationID)
}

func (c *channel) RemoteData(_ context.Context, relationID string) (relation.Databag, error) {
	return c.read(c.side.Counterpart(), relationID)
}

func (c *channel) read(side relation.Side, relationID string) (relation.Databag, error) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	partitions, ok := c.hub.relations[relationID]
	if !ok {
		return nil, relation.ErrRelationNotFound
	}
	return partitions[side].Clone(), nil
}

func (c *channel) UpdateLocalData(_ context.Context, relationID string, data relation.Databag) error {
	c.hub.mu.Lock()
	partitions, ok := c.hub.relations[relationID]
	if !ok {
		c.hub.mu.Unlock()
		return relation.ErrRelationNotFound
	}
	partitions[c.side] = relation.Merge(partitions[c.side], data)
	observers := slices.Clone(c.hub.observers)
	c.hub.mu.Unlock()

	for _, observe := range observers {
		observe(c.side, relationID)
	}
	return nil
}
