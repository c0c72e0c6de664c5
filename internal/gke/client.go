// Package gke provides a wrapper around the Google Kubernetes Engine API.
package gke

import (
	"context"

	"google.golang.org/api/container/v1"
)

// ClusterManager defines the cluster-level operations the provisioner needs.
type ClusterManager interface {
	// GetCluster returns the cluster, or nil if it does not exist.
	GetCluster(ctx context.Context, name string) (*container.Cluster, error)
	// CreateCluster starts cluster creation and returns the operation name.
	CreateCluster(ctx context.Context, cluster *container.Cluster) (string, error)
	// DeleteCluster starts cluster deletion and returns the operation name.
	// Deleting an absent cluster is not an error; it returns "".
	DeleteCluster(ctx context.Context, name string) (string, error)
}

// NodePoolManager defines the node pool operations the provisioner needs.
type NodePoolManager interface {
	// GetNodePool returns the named pool of a cluster, or nil if absent.
	GetNodePool(ctx context.Context, clusterName, poolName string) (*container.NodePool, error)
	// CreateNodePool starts pool creation and returns the operation name.
	CreateNodePool(ctx context.Context, clusterName string, pool *container.NodePool) (string, error)
	// DeleteNodePool starts pool deletion and returns the operation name.
	// Deleting an absent pool is not an error; it returns "".
	DeleteNodePool(ctx context.Context, clusterName, poolName string) (string, error)
	// SetNodePoolAutoscaling updates the autoscaling bounds of a pool.
	SetNodePoolAutoscaling(ctx context.Context, clusterName, poolName string, autoscaling *container.NodePoolAutoscaling) (string, error)
}

// OperationWaiter polls long-running operations to completion.
type OperationWaiter interface {
	// WaitOperation blocks until the named operation reaches DONE,
	// returning the operation's error if it failed.
	WaitOperation(ctx context.Context, opName string) error
}

// ClusterService combines everything the provisioning pipeline talks to.
type ClusterService interface {
	ClusterManager
	NodePoolManager
	OperationWaiter
}
