package controller

import (
	"context"
	"errors"
	"fmt"

	platformeshconfig "github.com/platform-mesh/golang-commons/config"
	commonserrors "github.com/platform-mesh/golang-commons/errors"
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/platform-mesh/golang-commons/sentry"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/platform-mesh/oauth-relation/internal/metrics"
	"github.com/platform-mesh/oauth-relation/internal/predicates"
	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/pkg/oauth"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

// Negotiator reacts to the lifecycle of relations. oauth.Requirer and oauth.Provider
// implement it.
type Negotiator interface {
	RelationEstablished(ctx context.Context, relationID string) error
	RelationChanged(ctx context.Context, relationID string) error
	RelationRemoved(relationID string)
	Established(relationID string) bool
}

var (
	_ Negotiator = &oauth.Requirer{}
	_ Negotiator = &oauth.Provider{}
)

// RelationReconciler turns partition ConfigMap changes into relation notifications for one
// side of a relation. A request names the namespace and the relation id.
type RelationReconciler struct {
	channel    *relationdata.ConfigMapChannel
	negotiator Negotiator
	log        *logger.Logger
}

func NewRelationReconciler(log *logger.Logger, channel *relationdata.ConfigMapChannel, negotiator Negotiator) *RelationReconciler {
	return &RelationReconciler{
		channel:    channel,
		negotiator: negotiator,
		log: log.MustChildLoggerWithAttributes(
			"relation", channel.RelationName(),
			"side", string(channel.Side()),
		),
	}
}

func (r *RelationReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	relationID := req.Name
	log := r.log.ChildLogger("relationId", relationID)

	if _, err := r.channel.LocalData(ctx, relationID); err != nil {
		if !errors.Is(err, relation.ErrRelationNotFound) {
			return r.reject(relationID, err)
		}
		if r.negotiator.Established(relationID) {
			r.count(metrics.NotificationRemoved)
			r.negotiator.RelationRemoved(relationID)
			log.Info().Msg("Relation removed")
		}
		return ctrl.Result{}, nil
	}

	if !r.negotiator.Established(relationID) {
		r.count(metrics.NotificationEstablished)
		if err := r.negotiator.RelationEstablished(ctx, relationID); err != nil {
			return r.reject(relationID, err)
		}
		log.Info().Msg("Relation established")
	}

	r.count(metrics.NotificationChanged)
	if err := r.negotiator.RelationChanged(ctx, relationID); err != nil {
		return r.reject(relationID, err)
	}
	return ctrl.Result{}, nil
}

// reject requeues transient failures and drops notifications that cannot succeed until the
// counterpart writes again. Transient failures are reported to sentry.
func (r *RelationReconciler) reject(relationID string, err error) (ctrl.Result, error) {
	opErr, reason := classify(err)
	metrics.RejectedNotificationsTotal.WithLabelValues(r.channel.RelationName(), string(r.channel.Side()), reason).Inc()

	log := r.log.ChildLogger("relationId", relationID)
	log.Error().
		Bool("retry", opErr.Retry()).
		Bool("sentry", opErr.Sentry()).
		Str("reason", reason).
		Err(opErr.Err()).
		Msg("Relation notification failed")

	if opErr.Sentry() {
		sentry.CaptureError(opErr.Err(), sentry.Tags{
			"relation":   r.channel.RelationName(),
			"side":       string(r.channel.Side()),
			"relationId": relationID,
		})
	}
	if !opErr.Retry() {
		return ctrl.Result{}, nil
	}
	return ctrl.Result{}, opErr.Err()
}

func (r *RelationReconciler) count(notification string) {
	metrics.NotificationsTotal.WithLabelValues(r.channel.RelationName(), string(r.channel.Side()), notification).Inc()
}

func classify(err error) (commonserrors.OperatorError, string) {
	if _, ok := oauth.IsDataValidationError(err); ok {
		return commonserrors.NewOperatorError(err, false, false), metrics.ReasonInvalidData
	}
	if _, ok := oauth.IsConfigError(err); ok {
		return commonserrors.NewOperatorError(err, false, false), metrics.ReasonInvalidConfig
	}
	return commonserrors.NewOperatorError(err, true, true), metrics.ReasonTransient
}

func (r *RelationReconciler) mapPartition(_ context.Context, obj client.Object) []reconcile.Request {
	relationID := obj.GetLabels()[relationdata.LabelRelation]
	if relationID == "" {
		return nil
	}
	return []reconcile.Request{{NamespacedName: types.NamespacedName{
		Namespace: obj.GetNamespace(),
		Name:      relationID,
	}}}
}

// SetupWithManager sets up the controller with the Manager. The controller runs on every
// replica; leadership is checked by the negotiator.
func (r *RelationReconciler) SetupWithManager(mgr ctrl.Manager, cfg *platformeshconfig.CommonServiceConfig) error { // coverage-ignore
	own := r.channel.Side()

	return ctrl.NewControllerManagedBy(mgr).
		Named(fmt.Sprintf("%s-%s", r.channel.RelationName(), own)).
		WithOptions(controller.Options{
			NeedLeaderElection:      ptr.To(false),
			MaxConcurrentReconciles: cfg.MaxConcurrentReconciles,
		}).
		Watches(
			&corev1.ConfigMap{},
			handler.EnqueueRequestsFromMapFunc(r.mapPartition),
			builder.WithPredicates(
				predicates.IsRelationPartition(r.channel.RelationName()),
				predicate.Or[client.Object](
					predicate.And[client.Object](predicates.IsSide(own.Counterpart()), predicate.ResourceVersionChangedPredicate{}),
					predicate.And[client.Object](predicates.IsSide(own), predicates.LifecycleOnly()),
				),
			),
		).
		Complete(r)
}
