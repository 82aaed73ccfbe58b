package predicates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/event"

	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

func partition(labels map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "cm", Labels: labels}}
}

func TestIsRelationPartition(t *testing.T) {
	tests := []struct {
		name     string
		labels   map[string]string
		expected bool
	}{
		{name: "partition", labels: map[string]string{relationdata.LabelInterface: "oauth", relationdata.LabelRelation: "1"}, expected: true},
		{name: "other interface", labels: map[string]string{relationdata.LabelInterface: "endpoint-info", relationdata.LabelRelation: "1"}},
		{name: "missing relation id", labels: map[string]string{relationdata.LabelInterface: "oauth"}},
		{name: "unlabelled"},
	}

	p := IsRelationPartition("oauth")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Generic(event.GenericEvent{Object: partition(tt.labels)}))
		})
	}
}

func TestIsSide(t *testing.T) {
	p := IsSide(relation.SideProvider)
	obj := partition(map[string]string{relationdata.LabelSide: "provider"})

	assert.True(t, p.Create(event.CreateEvent{Object: obj}))
	assert.False(t, p.Create(event.CreateEvent{Object: partition(map[string]string{relationdata.LabelSide: "requirer"})}))
}

func TestLifecycleOnly(t *testing.T) {
	p := LifecycleOnly()
	obj := partition(nil)

	assert.True(t, p.Create(event.CreateEvent{Object: obj}))
	assert.True(t, p.Delete(event.DeleteEvent{Object: obj}))
	assert.False(t, p.Update(event.UpdateEvent{ObjectOld: obj, ObjectNew: obj}))
}
