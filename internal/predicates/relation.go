package predicates

import (
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

// IsRelationPartition returns a predicate that filters for partition ConfigMaps of the
// given relation name.
func IsRelationPartition(relationName string) predicate.Predicate {
	return predicate.NewPredicateFuncs(func(object client.Object) bool {
		labels := object.GetLabels()
		return labels[relationdata.LabelInterface] == relationName && labels[relationdata.LabelRelation] != ""
	})
}

// IsSide returns a predicate that filters for partitions written by side.
func IsSide(side relation.Side) predicate.Predicate {
	return predicate.NewPredicateFuncs(func(object client.Object) bool {
		return object.GetLabels()[relationdata.LabelSide] == string(side)
	})
}

// LifecycleOnly returns a predicate that passes creations and deletions. Updates of a
// side's own partition are its own writes and must not be delivered back to it.
func LifecycleOnly() predicate.Predicate {
	return predicate.Funcs{
		UpdateFunc: func(event.UpdateEvent) bool { return false },
	}
}
