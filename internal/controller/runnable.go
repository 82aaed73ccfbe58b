package controller

import (
	"context"

	"github.com/platform-mesh/golang-commons/logger"
	"sigs.k8s.io/controller-runtime/pkg/manager"
)

// electedRunnable runs a callback once this replica becomes leader, for example to
// declare the client config on every relation or to publish provider info.
type electedRunnable struct {
	elected <-chan struct{}
	run     func(ctx context.Context) error
	log     *logger.Logger
}

var (
	_ manager.Runnable               = &electedRunnable{}
	_ manager.LeaderElectionRunnable = &electedRunnable{}
)

// NewElectedRunnable returns a runnable that waits on elected and then calls run. It is
// added to the manager as a non leader election runnable so that it starts on every replica.
func NewElectedRunnable(log *logger.Logger, elected <-chan struct{}, run func(ctx context.Context) error) manager.Runnable {
	return &electedRunnable{elected: elected, run: run, log: log}
}

func (e *electedRunnable) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		e.log.Info().Msg("Context cancelled before leader election")
		return nil
	case <-e.elected:
	}

	if err := e.run(ctx); err != nil {
		// a failed run is retried by the relation controllers on the next change
		e.log.Error().Err(err).Msg("Leader callback failed")
	}
	return nil
}

func (e *electedRunnable) NeedLeaderElection() bool {
	return false
}
