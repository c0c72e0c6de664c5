// Package provision reconciles the desired cluster state against GKE.
//
// The pipeline runs sequential named phases (cluster, node pool), each of
// which is a get-or-create step: re-running with unchanged config makes no
// mutating calls. State produced by earlier phases (endpoint, CA) feeds
// later ones and the credential materializer.
package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/mediagen/gkectl/internal/config"
	"github.com/mediagen/gkectl/internal/gke"
)

// State carries results across phases.
type State struct {
	// Endpoint is the cluster master address, populated by the cluster phase.
	Endpoint string
	// CACert is the base64-encoded cluster CA, populated by the cluster phase.
	CACert string
	// MasterVersion is the control plane version.
	MasterVersion string
}

// Context wraps the dependencies and shared state of one pipeline run.
type Context struct {
	context.Context
	Config   *config.ClusterConfig
	Service  gke.ClusterService
	State    *State
	Observer Observer
}

// NewContext creates a pipeline context with a console observer.
func NewContext(ctx context.Context, cfg *config.ClusterConfig, svc gke.ClusterService) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Service:  svc,
		State:    &State{},
		Observer: NewConsoleObserver(),
	}
}

// Phase is one step of the provisioning pipeline.
type Phase interface {
	// Name returns the human-readable phase name.
	Name() string

	// Run executes the phase, mutating ctx.State as needed.
	Run(ctx *Context) error
}

// RunPhases executes phases in order, logging per-phase timing. The first
// failure aborts the run with the phase name wrapped around the cause.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		label := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Printf("[%s] starting", label)

		if err := phase.Run(ctx); err != nil {
			ctx.Observer.Printf("[%s] failed: %v", label, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", label, time.Since(phaseStart).Round(time.Millisecond))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
