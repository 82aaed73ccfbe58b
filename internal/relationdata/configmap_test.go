package relationdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

const testNamespace = "apps"

func channels(clt client.Client) (*ConfigMapChannel, *ConfigMapChannel) {
	return NewConfigMapChannel(clt, testNamespace, "oauth", relation.SideRequirer),
		NewConfigMapChannel(clt, testNamespace, "oauth", relation.SideProvider)
}

func TestConfigMapName(t *testing.T) {
	assert.Equal(t, "oauth-1-requirer", ConfigMapName("oauth", "1", relation.SideRequirer))
	assert.Equal(t, "oauth-1-provider", ConfigMapName("oauth", "1", relation.SideProvider))
}

func TestEstablishCreatesBothPartitions(t *testing.T) {
	clt := fake.NewClientBuilder().Build()
	requirer, provider := channels(clt)

	require.NoError(t, requirer.Establish(t.Context(), "1"))
	require.NoError(t, requirer.Establish(t.Context(), "1"))

	for _, side := range []relation.Side{relation.SideRequirer, relation.SideProvider} {
		var cm corev1.ConfigMap
		err := clt.Get(t.Context(), client.ObjectKey{Namespace: testNamespace, Name: ConfigMapName("oauth", "1", side)}, &cm)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			LabelInterface: "oauth",
			LabelRelation:  "1",
			LabelSide:      string(side),
		}, cm.Labels)
	}

	ids, err := provider.Relations(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
}

func TestEstablishRejectsInvalidRelationID(t *testing.T) {
	requirer, _ := channels(fake.NewClientBuilder().Build())

	err := requirer.Establish(t.Context(), "oauth:1")
	assert.Error(t, err)
}

func TestPartitionsAreSeparated(t *testing.T) {
	requirer, provider := channels(fake.NewClientBuilder().Build())
	require.NoError(t, requirer.Establish(t.Context(), "1"))

	remote, err := provider.RemoteData(t.Context(), "1")
	require.NoError(t, err)
	assert.Empty(t, remote)

	require.NoError(t, requirer.UpdateLocalData(t.Context(), "1", relation.Databag{"redirect_uri": "https://app.example.com"}))

	remote, err = provider.RemoteData(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, relation.Databag{"redirect_uri": "https://app.example.com"}, remote)

	local, err := provider.LocalData(t.Context(), "1")
	require.NoError(t, err)
	assert.Empty(t, local)
}

func TestUpdateLocalDataMerges(t *testing.T) {
	_, provider := channels(fake.NewClientBuilder().Build())
	require.NoError(t, provider.Establish(t.Context(), "1"))

	require.NoError(t, provider.UpdateLocalData(t.Context(), "1", relation.Databag{"client_id": "a", "client_secret_id": "secret:1"}))
	require.NoError(t, provider.UpdateLocalData(t.Context(), "1", relation.Databag{"client_id": "b", "client_secret_id": ""}))

	local, err := provider.LocalData(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, relation.Databag{"client_id": "b"}, local)
}

func TestUnknownRelation(t *testing.T) {
	requirer, _ := channels(fake.NewClientBuilder().Build())

	_, err := requirer.LocalData(t.Context(), "1")
	assert.ErrorIs(t, err, relation.ErrRelationNotFound)

	_, err = requirer.RemoteData(t.Context(), "1")
	assert.ErrorIs(t, err, relation.ErrRelationNotFound)

	err = requirer.UpdateLocalData(t.Context(), "1", relation.Databag{"k": "v"})
	assert.ErrorIs(t, err, relation.ErrRelationNotFound)
}

func TestMissingCounterpartIsEmpty(t *testing.T) {
	clt := fake.NewClientBuilder().WithObjects(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName("oauth", "1", relation.SideRequirer),
			Namespace: testNamespace,
			Labels:    map[string]string{LabelInterface: "oauth", LabelRelation: "1", LabelSide: "requirer"},
		},
	}).Build()
	requirer, _ := channels(clt)

	remote, err := requirer.RemoteData(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, relation.Databag{}, remote)
}

func TestRelationsFiltersInterfaceAndSide(t *testing.T) {
	clt := fake.NewClientBuilder().Build()
	requirer, _ := channels(clt)
	other := NewConfigMapChannel(clt, testNamespace, "endpoint-info", relation.SideRequirer)

	require.NoError(t, requirer.Establish(t.Context(), "2"))
	require.NoError(t, requirer.Establish(t.Context(), "1"))
	require.NoError(t, other.Establish(t.Context(), "9"))

	ids, err := requirer.Relations(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)

	require.NoError(t, requirer.Remove(t.Context(), "2"))
	require.NoError(t, requirer.Remove(t.Context(), "2"))

	ids, err = requirer.Relations(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
}

func TestClientErrorsArePropagated(t *testing.T) {
	boom := errors.New("apiserver unavailable")
	clt := fake.NewClientBuilder().WithInterceptorFuncs(interceptor.Funcs{
		List: func(context.Context, client.WithWatch, client.ObjectList, ...client.ListOption) error {
			return boom
		},
		Get: func(context.Context, client.WithWatch, client.ObjectKey, client.Object, ...client.GetOption) error {
			return boom
		},
	}).Build()
	requirer, _ := channels(clt)

	_, err := requirer.Relations(t.Context())
	assert.ErrorIs(t, err, boom)

	_, err = requirer.LocalData(t.Context(), "1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, relation.ErrRelationNotFound)
}
