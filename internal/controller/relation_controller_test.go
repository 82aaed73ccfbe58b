package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/platform-mesh/golang-commons/logger/testlogger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/platform-mesh/oauth-relation/internal/metrics"
	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/pkg/oauth"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

const (
	testNamespace    = "apps"
	testRelationName = "oauth-test"
)

type fakeNegotiator struct {
	established map[string]bool
	calls       []string

	establishErr error
	changeErr    error
}

func newFakeNegotiator() *fakeNegotiator {
	return &fakeNegotiator{established: map[string]bool{}}
}

func (f *fakeNegotiator) RelationEstablished(_ context.Context, relationID string) error {
	f.calls = append(f.calls, "established:"+relationID)
	if f.establishErr != nil {
		return f.establishErr
	}
	f.established[relationID] = true
	return nil
}

func (f *fakeNegotiator) RelationChanged(_ context.Context, relationID string) error {
	f.calls = append(f.calls, "changed:"+relationID)
	return f.changeErr
}

func (f *fakeNegotiator) RelationRemoved(relationID string) {
	f.calls = append(f.calls, "removed:"+relationID)
	delete(f.established, relationID)
}

func (f *fakeNegotiator) Established(relationID string) bool {
	return f.established[relationID]
}

func newReconciler(t *testing.T, clt client.Client, negotiator Negotiator) *RelationReconciler {
	t.Helper()
	channel := relationdata.NewConfigMapChannel(clt, testNamespace, testRelationName, relation.SideProvider)
	return NewRelationReconciler(testlogger.New().Logger, channel, negotiator)
}

func request(relationID string) ctrl.Request {
	return ctrl.Request{NamespacedName: types.NamespacedName{Namespace: testNamespace, Name: relationID}}
}

func establishedClient(t *testing.T, relationID string) client.Client {
	t.Helper()
	clt := fake.NewClientBuilder().Build()
	channel := relationdata.NewConfigMapChannel(clt, testNamespace, testRelationName, relation.SideRequirer)
	require.NoError(t, channel.Establish(t.Context(), relationID))
	return clt
}

func TestReconcileEstablishesAndNotifiesChange(t *testing.T) {
	negotiator := newFakeNegotiator()
	r := newReconciler(t, establishedClient(t, "1"), negotiator)

	res, err := r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, res)

	res, err = r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)
	assert.Equal(t, ctrl.Result{}, res)

	assert.Equal(t, []string{"established:1", "changed:1", "changed:1"}, negotiator.calls)
}

func TestReconcileRemovedRelation(t *testing.T) {
	clt := establishedClient(t, "1")
	negotiator := newFakeNegotiator()
	r := newReconciler(t, clt, negotiator)

	_, err := r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)

	channel := relationdata.NewConfigMapChannel(clt, testNamespace, testRelationName, relation.SideRequirer)
	require.NoError(t, channel.Remove(t.Context(), "1"))

	_, err = r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)
	_, err = r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"established:1", "changed:1", "removed:1"}, negotiator.calls)
	assert.False(t, negotiator.Established("1"))
}

func TestReconcileUnknownRelationIsNoop(t *testing.T) {
	negotiator := newFakeNegotiator()
	r := newReconciler(t, fake.NewClientBuilder().Build(), negotiator)

	_, err := r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)
	assert.Empty(t, negotiator.calls)
}

func TestReconcileErrors(t *testing.T) {
	tests := []struct {
		name         string
		establishErr error
		changeErr    error
		wantErr      bool
		reason       string
	}{
		{
			name:      "invalid relation data is dropped",
			changeErr: &oauth.DataValidationError{Schema: "provider", Err: errors.New("missing issuer_url")},
			reason:    metrics.ReasonInvalidData,
		},
		{
			name:         "invalid client config is dropped",
			establishErr: &oauth.ConfigError{Kind: oauth.ErrInvalidRedirectURI, Value: "http://app"},
			reason:       metrics.ReasonInvalidConfig,
		},
		{
			name:      "transient failure is requeued",
			changeErr: errors.New("apiserver unavailable"),
			wantErr:   true,
			reason:    metrics.ReasonTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			negotiator := newFakeNegotiator()
			negotiator.establishErr = tt.establishErr
			negotiator.changeErr = tt.changeErr
			r := newReconciler(t, establishedClient(t, "1"), negotiator)

			rejected := metrics.RejectedNotificationsTotal.WithLabelValues(testRelationName, string(relation.SideProvider), tt.reason)
			before := testutil.ToFloat64(rejected)

			_, err := r.Reconcile(t.Context(), request("1"))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, before+1, testutil.ToFloat64(rejected))
		})
	}
}

func TestReconcileCountsNotifications(t *testing.T) {
	r := newReconciler(t, establishedClient(t, "1"), newFakeNegotiator())
	changed := metrics.NotificationsTotal.WithLabelValues(testRelationName, string(relation.SideProvider), metrics.NotificationChanged)
	before := testutil.ToFloat64(changed)

	_, err := r.Reconcile(t.Context(), request("1"))
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(changed))
}

func TestMapPartition(t *testing.T) {
	r := newReconciler(t, fake.NewClientBuilder().Build(), newFakeNegotiator())

	cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{
		Name:      relationdata.ConfigMapName(testRelationName, "7", relation.SideRequirer),
		Namespace: testNamespace,
		Labels:    map[string]string{relationdata.LabelRelation: "7"},
	}}
	assert.Equal(t, []ctrl.Request{request("7")}, r.mapPartition(t.Context(), cm))

	cm.Labels = nil
	assert.Empty(t, r.mapPartition(t.Context(), cm))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantRetry  bool
		wantSentry bool
		wantReason string
	}{
		{
			name:       "invalid relation data",
			err:        &oauth.DataValidationError{Schema: "oauth/provider", Err: errors.New("missing issuer_url")},
			wantReason: metrics.ReasonInvalidData,
		},
		{
			name:       "invalid client config",
			err:        &oauth.ConfigError{Kind: oauth.ErrInvalidGrantType, Value: "implicit"},
			wantReason: metrics.ReasonInvalidConfig,
		},
		{
			name:       "transient failure",
			err:        errors.New("apiserver unavailable"),
			wantRetry:  true,
			wantSentry: true,
			wantReason: metrics.ReasonTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opErr, reason := classify(tt.err)
			assert.Equal(t, tt.wantRetry, opErr.Retry())
			assert.Equal(t, tt.wantSentry, opErr.Sentry())
			assert.Equal(t, tt.wantReason, reason)
			assert.Same(t, tt.err, opErr.Err())
		})
	}
}
