package controller

import (
	"context"
	"sync"
)

// ChangeFunc is called for every established or changed relation.
type ChangeFunc func(ctx context.Context, relationID string) error

// FuncNegotiator is a Negotiator for relations without a negotiation state of their own,
// such as the endpoint-info relation. It tracks established relations and calls onChange.
type FuncNegotiator struct {
	onChange ChangeFunc

	mu          sync.Mutex
	established map[string]struct{}
}

var _ Negotiator = &FuncNegotiator{}

func NewFuncNegotiator(onChange ChangeFunc) *FuncNegotiator {
	return &FuncNegotiator{onChange: onChange, established: map[string]struct{}{}}
}

func (n *FuncNegotiator) RelationEstablished(_ context.Context, relationID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.established[relationID] = struct{}{}
	return nil
}

func (n *FuncNegotiator) RelationChanged(ctx context.Context, relationID string) error {
	return n.onChange(ctx, relationID)
}

func (n *FuncNegotiator) RelationRemoved(relationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.established, relationID)
}

func (n *FuncNegotiator) Established(relationID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.established[relationID]
	return ok
}
