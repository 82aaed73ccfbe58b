// Package leader adapts controller-runtime leader election to a relation.LeadershipOracle.
package leader

import "github.com/platform-mesh/oauth-relation/pkg/relation"

// Elected reports leadership once the elected channel is closed. With leader election
// disabled the manager closes it right away, so every replica is leader.
type Elected struct {
	elected <-chan struct{}
}

var _ relation.LeadershipOracle = &Elected{}

// New takes the channel returned by manager.Manager.Elected.
func New(elected <-chan struct{}) *Elected {
	return &Elected{elected: elected}
}

func (e *Elected) IsLeader() bool {
	select {
	case <-e.elected:
		return true
	default:
		return false
	}
}
