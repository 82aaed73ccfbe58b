package leader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElected(t *testing.T) {
	elected := make(chan struct{})
	oracle := New(elected)

	assert.False(t, oracle.IsLeader())

	close(elected)
	assert.True(t, oracle.IsLeader())
	assert.True(t, oracle.IsLeader())
}
