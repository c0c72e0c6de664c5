package provision

import (
	"context"
	"fmt"

	"github.com/mediagen/gkectl/internal/config"
	"github.com/mediagen/gkectl/internal/gke"
)

// Reconciler drives the full provisioning pipeline for one cluster.
type Reconciler struct {
	svc gke.ClusterService
	cfg *config.ClusterConfig
}

// NewReconciler creates a reconciler for the given config.
func NewReconciler(svc gke.ClusterService, cfg *config.ClusterConfig) *Reconciler {
	return &Reconciler{svc: svc, cfg: cfg}
}

// Reconcile ensures cluster and node pool exist as configured and returns
// the populated state (endpoint, CA) for credential materialization.
func (r *Reconciler) Reconcile(ctx context.Context) (*State, error) {
	pCtx := NewContext(ctx, r.cfg, r.svc)

	phases := []Phase{
		&clusterPhase{},
		&nodePoolPhase{},
	}

	if err := RunPhases(pCtx, phases); err != nil {
		return nil, err
	}

	return pCtx.State, nil
}

// clusterPhase ensures the cluster exists and records its endpoint and CA.
type clusterPhase struct{}

func (p *clusterPhase) Name() string { return "cluster" }

func (p *clusterPhase) Run(ctx *Context) error {
	cfg := ctx.Config

	cluster, err := ctx.Service.GetCluster(ctx, cfg.ClusterName)
	if err != nil {
		return err
	}

	if cluster == nil {
		ctx.Observer.Printf("Creating cluster %s in %s...", cfg.ClusterName, cfg.Region)

		opName, err := ctx.Service.CreateCluster(ctx, DesiredCluster(cfg))
		if err != nil {
			return err
		}
		if err := ctx.Service.WaitOperation(ctx, opName); err != nil {
			return err
		}

		cluster, err = ctx.Service.GetCluster(ctx, cfg.ClusterName)
		if err != nil {
			return err
		}
		if cluster == nil {
			return fmt.Errorf("cluster %s not found after creation", cfg.ClusterName)
		}
	} else {
		ctx.Observer.Printf("Cluster %s already exists", cfg.ClusterName)
	}

	ctx.State.Endpoint = cluster.Endpoint
	ctx.State.MasterVersion = cluster.CurrentMasterVersion
	if cluster.MasterAuth != nil {
		ctx.State.CACert = cluster.MasterAuth.ClusterCaCertificate
	}

	return nil
}

// nodePoolPhase ensures the managed pool exists with the configured
// autoscaling bounds, updating the bounds in place when they drift.
type nodePoolPhase struct{}

func (p *nodePoolPhase) Name() string { return "node-pool" }

func (p *nodePoolPhase) Run(ctx *Context) error {
	cfg := ctx.Config

	pool, err := ctx.Service.GetNodePool(ctx, cfg.ClusterName, config.NodePoolName)
	if err != nil {
		return err
	}

	if pool == nil {
		ctx.Observer.Printf("Creating node pool %s (%d nodes, %s)...",
			config.NodePoolName, cfg.NodeCount, cfg.MachineType)

		opName, err := ctx.Service.CreateNodePool(ctx, cfg.ClusterName, DesiredNodePool(cfg))
		if err != nil {
			return err
		}
		return ctx.Service.WaitOperation(ctx, opName)
	}

	if autoscalingMatches(pool, cfg) {
		ctx.Observer.Printf("Node pool %s already up to date", config.NodePoolName)
		return nil
	}

	ctx.Observer.Printf("Updating node pool %s autoscaling to [%d, %d]...",
		config.NodePoolName, cfg.MinNodes, cfg.MaxNodes)

	opName, err := ctx.Service.SetNodePoolAutoscaling(ctx, cfg.ClusterName, config.NodePoolName,
		DesiredNodePool(cfg).Autoscaling)
	if err != nil {
		return err
	}
	return ctx.Service.WaitOperation(ctx, opName)
}

// Destroy deletes the node pool and then the cluster. Absent resources
// are tolerated so a partially destroyed cluster can be retried.
func (r *Reconciler) Destroy(ctx context.Context) error {
	pCtx := NewContext(ctx, r.cfg, r.svc)

	phases := []Phase{
		&deleteNodePoolPhase{},
		&deleteClusterPhase{},
	}

	return RunPhases(pCtx, phases)
}

type deleteNodePoolPhase struct{}

func (p *deleteNodePoolPhase) Name() string { return "delete-node-pool" }

func (p *deleteNodePoolPhase) Run(ctx *Context) error {
	opName, err := ctx.Service.DeleteNodePool(ctx, ctx.Config.ClusterName, config.NodePoolName)
	if err != nil {
		return err
	}
	if opName == "" {
		ctx.Observer.Printf("Node pool %s already gone", config.NodePoolName)
		return nil
	}
	return ctx.Service.WaitOperation(ctx, opName)
}

type deleteClusterPhase struct{}

func (p *deleteClusterPhase) Name() string { return "delete-cluster" }

func (p *deleteClusterPhase) Run(ctx *Context) error {
	opName, err := ctx.Service.DeleteCluster(ctx, ctx.Config.ClusterName)
	if err != nil {
		return err
	}
	if opName == "" {
		ctx.Observer.Printf("Cluster %s already gone", ctx.Config.ClusterName)
		return nil
	}
	return ctx.Service.WaitOperation(ctx, opName)
}
