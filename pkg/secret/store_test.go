package secret

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ref, err := store.Create(ctx, "client_secret", map[string]string{"secret": "s3cr3t"})
	require.NoError(t, err)
	assert.NotContains(t, ref, "s3cr3t")
	assert.Equal(t, "client_secret", store.Label(ref))

	content, err := store.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"secret": "s3cr3t"}, content)

	content["secret"] = "changed"
	again, err := store.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", again["secret"])

	require.NoError(t, store.Grant(ctx, ref, "oauth:1"))
	require.NoError(t, store.Grant(ctx, ref, "oauth:1"))
	assert.Equal(t, []string{"oauth:1"}, store.Grants(ref))

	require.NoError(t, store.Remove(ctx, ref))
	_, err = store.Resolve(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Grant(ctx, ref, "oauth:1"), ErrNotFound)
	require.NoError(t, store.Remove(ctx, ref))
	assert.Zero(t, store.Len())
}

func TestMemoryStoreRejectsEmptyContent(t *testing.T) {
	_, err := NewMemoryStore().Create(context.Background(), "client_secret", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestReferenceID(t *testing.T) {
	ref := NewReference()
	id, ok := ReferenceID(ref)
	assert.True(t, ok)
	assert.Equal(t, ref, referencePrefix+id)

	for _, invalid := range []string{"", "secret:", "secret:not-a-uuid", "s3cr3t"} {
		_, ok := ReferenceID(invalid)
		assert.False(t, ok, invalid)
	}
}
