// Package relationdata stores relation partitions as ConfigMaps. Each relation consists of
// two ConfigMaps, one per side, named <relation-name>-<relation-id>-<side>.
package relationdata

import (
	"context"
	"errors"
	"fmt"
	"slices"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

const (
	LabelInterface = "oauth.platform-mesh.io/interface"
	LabelRelation  = "oauth.platform-mesh.io/relation"
	LabelSide      = "oauth.platform-mesh.io/side"
)

// ConfigMapName returns the name of the ConfigMap holding one side's partition.
func ConfigMapName(relationName, relationID string, side relation.Side) string {
	return fmt.Sprintf("%s-%s-%s", relationName, relationID, side)
}

// ConfigMapChannel is the relation.Channel of one side, backed by ConfigMaps in a single
// namespace.
type ConfigMapChannel struct {
	client       client.Client
	namespace    string
	relationName string
	side         relation.Side
}

var _ relation.Channel = &ConfigMapChannel{}

func NewConfigMapChannel(clt client.Client, namespace, relationName string, side relation.Side) *ConfigMapChannel {
	return &ConfigMapChannel{
		client:       clt,
		namespace:    namespace,
		relationName: relationName,
		side:         side,
	}
}

func (c *ConfigMapChannel) Side() relation.Side { return c.side }

func (c *ConfigMapChannel) RelationName() string { return c.relationName }

func (c *ConfigMapChannel) Namespace() string { return c.namespace }

func (c *ConfigMapChannel) Relations(ctx context.Context) ([]string, error) {
	var list corev1.ConfigMapList
	err := c.client.List(ctx, &list,
		client.InNamespace(c.namespace),
		client.MatchingLabels{LabelInterface: c.relationName, LabelSide: string(c.side)},
	)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Items))
	for _, cm := range list.Items {
		if cm.DeletionTimestamp != nil {
			continue
		}
		if id := cm.Labels[LabelRelation]; id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (c *ConfigMapChannel) LocalData(ctx context.Context, relationID string) (relation.Databag, error) {
	cm, err := c.get(ctx, relationID, c.side)
	if err != nil {
		return nil, err
	}
	return relation.Databag(cm.Data).Clone(), nil
}

func (c *ConfigMapChannel) RemoteData(ctx context.Context, relationID string) (relation.Databag, error) {
	cm, err := c.get(ctx, relationID, c.side.Counterpart())
	if errors.Is(err, relation.ErrRelationNotFound) {
		if _, err := c.get(ctx, relationID, c.side); err != nil {
			return nil, err
		}
		return relation.Databag{}, nil
	}
	if err != nil {
		return nil, err
	}
	return relation.Databag(cm.Data).Clone(), nil
}

func (c *ConfigMapChannel) UpdateLocalData(ctx context.Context, relationID string, data relation.Databag) error {
	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		cm, err := c.get(ctx, relationID, c.side)
		if err != nil {
			return err
		}
		cm.Data = relation.Merge(cm.Data, data)
		return c.client.Update(ctx, cm)
	})
}

// Establish creates both partitions of a relation. Existing partitions keep their data.
func (c *ConfigMapChannel) Establish(ctx context.Context, relationID string) error {
	for _, side := range []relation.Side{relation.SideRequirer, relation.SideProvider} {
		name := ConfigMapName(c.relationName, relationID, side)
		if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
			return fmt.Errorf("invalid relation id %q: %v", relationID, errs)
		}

		cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: c.namespace}}
		_, err := controllerutil.CreateOrUpdate(ctx, c.client, cm, func() error {
			if cm.Labels == nil {
				cm.Labels = map[string]string{}
			}
			cm.Labels[LabelInterface] = c.relationName
			cm.Labels[LabelRelation] = relationID
			cm.Labels[LabelSide] = string(side)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to create %s partition of relation %s: %w", side, relationID, err)
		}
	}
	return nil
}

// Remove deletes both partitions of a relation.
func (c *ConfigMapChannel) Remove(ctx context.Context, relationID string) error {
	for _, side := range []relation.Side{relation.SideRequirer, relation.SideProvider} {
		cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName(c.relationName, relationID, side),
			Namespace: c.namespace,
		}}
		if err := c.client.Delete(ctx, cm); client.IgnoreNotFound(err) != nil {
			return fmt.Errorf("failed to delete %s partition of relation %s: %w", side, relationID, err)
		}
	}
	return nil
}

func (c *ConfigMapChannel) get(ctx context.Context, relationID string, side relation.Side) (*corev1.ConfigMap, error) {
	var cm corev1.ConfigMap
	err := c.client.Get(ctx, client.ObjectKey{
		Namespace: c.namespace,
		Name:      ConfigMapName(c.relationName, relationID, side),
	}, &cm)
	if apierrors.IsNotFound(err) {
		return nil, relation.ErrRelationNotFound
	}
	if err != nil {
		return nil, err
	}
	if cm.DeletionTimestamp != nil {
		return nil, relation.ErrRelationNotFound
	}
	return &cm, nil
}
