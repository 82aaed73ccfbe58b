package secretstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/platform-mesh/oauth-relation/pkg/secret"
)

func TestKubernetesStoreLifecycle(t *testing.T) {
	clt := fake.NewClientBuilder().Build()
	store := NewKubernetesStore(clt, "idp")

	ref, err := store.Create(t.Context(), "client_secret", map[string]string{"secret": "s3cr3t"})
	require.NoError(t, err)
	_, ok := secret.ReferenceID(ref)
	require.True(t, ok)

	name, err := store.SecretName(ref)
	require.NoError(t, err)
	var obj corev1.Secret
	require.NoError(t, clt.Get(t.Context(), client.ObjectKey{Namespace: "idp", Name: name}, &obj))
	assert.Equal(t, "client_secret", obj.Annotations[AnnotationLabel])
	assert.Equal(t, "true", obj.Labels[LabelManaged])

	require.NoError(t, store.Grant(t.Context(), ref, "1"))
	require.NoError(t, store.Grant(t.Context(), ref, "2"))
	require.NoError(t, store.Grant(t.Context(), ref, "1"))
	require.NoError(t, clt.Get(t.Context(), client.ObjectKey{Namespace: "idp", Name: name}, &obj))
	assert.Equal(t, []string{"1", "2"}, Grants(&obj))

	content, err := store.Resolve(t.Context(), ref)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"secret": "s3cr3t"}, content)

	require.NoError(t, store.Remove(t.Context(), ref))
	require.NoError(t, store.Remove(t.Context(), ref))

	_, err = store.Resolve(t.Context(), ref)
	assert.ErrorIs(t, err, secret.ErrNotFound)
}

func TestKubernetesStoreErrors(t *testing.T) {
	store := NewKubernetesStore(fake.NewClientBuilder().Build(), "idp")

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "empty content",
			run: func() error {
				_, err := store.Create(t.Context(), "client_secret", nil)
				return err
			},
			want: secret.ErrEmptyContent,
		},
		{
			name: "malformed reference",
			run: func() error {
				_, err := store.Resolve(t.Context(), "s3cr3t")
				return err
			},
			want: secret.ErrNotFound,
		},
		{
			name: "grant unknown secret",
			run: func() error {
				return store.Grant(t.Context(), secret.NewReference(), "1")
			},
			want: secret.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}
