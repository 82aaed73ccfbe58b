// Package secretstore keeps relation secrets as Kubernetes Secrets. A reference
// secret:<uuid> is stored in the Secret named <prefix>-<uuid>.
package secretstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/platform-mesh/oauth-relation/pkg/secret"
)

const (
	AnnotationLabel  = "oauth.platform-mesh.io/secret-label"
	AnnotationGrants = "oauth.platform-mesh.io/granted-relations"
	LabelManaged     = "oauth.platform-mesh.io/managed-secret"

	DefaultPrefix = "oauth-secret"
)

type KubernetesStore struct {
	client    client.Client
	namespace string
	prefix    string
}

var _ secret.Store = &KubernetesStore{}

func NewKubernetesStore(clt client.Client, namespace string) *KubernetesStore {
	return &KubernetesStore{client: clt, namespace: namespace, prefix: DefaultPrefix}
}

// SecretName returns the name of the Secret behind a reference.
func (s *KubernetesStore) SecretName(reference string) (string, error) {
	id, ok := secret.ReferenceID(reference)
	if !ok {
		return "", fmt.Errorf("invalid secret reference %q: %w", reference, secret.ErrNotFound)
	}
	return s.prefix + "-" + id, nil
}

func (s *KubernetesStore) Create(ctx context.Context, label string, content map[string]string) (string, error) {
	if len(content) == 0 {
		return "", secret.ErrEmptyContent
	}

	reference := secret.NewReference()
	name, err := s.SecretName(reference)
	if err != nil {
		return "", err
	}

	obj := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   s.namespace,
			Labels:      map[string]string{LabelManaged: "true"},
			Annotations: map[string]string{AnnotationLabel: label},
		},
		Type: corev1.SecretTypeOpaque,
		Data: make(map[string][]byte, len(content)),
	}
	for k, v := range content {
		obj.Data[k] = []byte(v)
	}
	if err := s.client.Create(ctx, obj); err != nil {
		return "", fmt.Errorf("failed to create secret %s: %w", name, err)
	}
	return reference, nil
}

func (s *KubernetesStore) Grant(ctx context.Context, reference, relationID string) error {
	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		obj, err := s.get(ctx, reference)
		if err != nil {
			return err
		}

		grants := Grants(obj)
		if slices.Contains(grants, relationID) {
			return nil
		}
		if obj.Annotations == nil {
			obj.Annotations = map[string]string{}
		}
		obj.Annotations[AnnotationGrants] = strings.Join(append(grants, relationID), ",")
		return s.client.Update(ctx, obj)
	})
}

func (s *KubernetesStore) Resolve(ctx context.Context, reference string) (map[string]string, error) {
	obj, err := s.get(ctx, reference)
	if err != nil {
		return nil, err
	}

	content := make(map[string]string, len(obj.Data))
	for k, v := range obj.Data {
		content[k] = string(v)
	}
	return content, nil
}

func (s *KubernetesStore) Remove(ctx context.Context, reference string) error {
	name, err := s.SecretName(reference)
	if err != nil {
		return err
	}
	obj := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: s.namespace}}
	if err := s.client.Delete(ctx, obj); client.IgnoreNotFound(err) != nil {
		return fmt.Errorf("failed to delete secret %s: %w", name, err)
	}
	return nil
}

// Grants lists the relations a Secret was granted to.
func Grants(obj *corev1.Secret) []string {
	value := obj.Annotations[AnnotationGrants]
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func (s *KubernetesStore) get(ctx context.Context, reference string) (*corev1.Secret, error) {
	name, err := s.SecretName(reference)
	if err != nil {
		return nil, err
	}

	var obj corev1.Secret
	err = s.client.Get(ctx, client.ObjectKey{Namespace: s.namespace, Name: name}, &obj)
	if apierrors.IsNotFound(err) {
		return nil, secret.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	return &obj, nil
}
