// Package relation describes the shared data channel two cooperating applications use to
// exchange negotiation data. Each relation is split into two partitions, one per side; a
// side only ever writes its own partition and reads the counterpart's.
package relation

import (
	"context"
	"errors"
	"maps"
)

var ErrRelationNotFound = errors.New("relation: relation not found")

type Side string

const (
	SideRequirer Side = "requirer"
	SideProvider Side = "provider"
)

// Counterpart returns the side on the other end of a relation.
func (s Side) Counterpart() Side {
	if s == SideRequirer {
		return SideProvider
	}
	return SideRequirer
}

// Databag is the flat string-keyed, string-valued content of one partition. A missing key
// means "not set".
type Databag map[string]string

func (d Databag) Clone() Databag {
	if d == nil {
		return Databag{}
	}
	return maps.Clone(d)
}

// Channel is the view one side has of its relations.
type Channel interface {
	// Relations lists the ids of every established relation.
	Relations(ctx context.Context) ([]string, error)
	// LocalData returns this side's partition. ErrRelationNotFound if the relation is unknown.
	LocalData(ctx context.Context, relationID string) (Databag, error)
	// RemoteData returns the counterpart's partition, empty if it has written nothing yet.
	RemoteData(ctx context.Context, relationID string) (Databag, error)
	// UpdateLocalData merges data into this side's partition. An empty value deletes the key.
	UpdateLocalData(ctx context.Context, relationID string, data Databag) error
}

// Merge applies update onto current the way UpdateLocalData is specified.
func Merge(current, update Databag) Databag {
	merged := current.Clone()
	for k, v := range update {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
