package gke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/container/v1"
	"google.golang.org/api/option"

	"github.com/mediagen/gkectl/internal/util/retry"
)

// RealClient implements ClusterService against the GKE API for one
// project/location pair. All resource names are relative to that pair.
type RealClient struct {
	svc      *container.Service
	project  string
	location string
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithService sets a pre-built container service (useful for testing
// against a stub HTTP server).
func WithService(svc *container.Service) ClientOption {
	return func(c *RealClient) {
		c.svc = svc
	}
}

// NewRealClient creates a client using Application Default Credentials.
// Credential errors surface here, before any resource call is made.
func NewRealClient(ctx context.Context, project, location string, opts ...ClientOption) (*RealClient, error) {
	c := &RealClient{
		project:  project,
		location: location,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.svc == nil {
		creds, err := google.FindDefaultCredentials(ctx, container.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("no Google credentials found: %w\nRun 'gcloud auth application-default login'", err)
		}
		svc, err := container.NewService(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, fmt.Errorf("failed to create GKE service: %w", err)
		}
		c.svc = svc
	}

	return c, nil
}

// NewRealClientWithHTTP creates a client over an explicit HTTP client,
// bypassing credential discovery. Used by tests.
func NewRealClientWithHTTP(ctx context.Context, project, location, endpoint string, hc *http.Client) (*RealClient, error) {
	svc, err := container.NewService(ctx,
		option.WithHTTPClient(hc),
		option.WithEndpoint(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GKE service: %w", err)
	}
	return NewRealClient(ctx, project, location, WithService(svc))
}

func (c *RealClient) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", c.project, c.location)
}

func (c *RealClient) clusterPath(name string) string {
	return fmt.Sprintf("%s/clusters/%s", c.parent(), name)
}

func (c *RealClient) nodePoolPath(clusterName, poolName string) string {
	return fmt.Sprintf("%s/nodePools/%s", c.clusterPath(clusterName), poolName)
}

func (c *RealClient) operationPath(opName string) string {
	return fmt.Sprintf("%s/operations/%s", c.parent(), opName)
}

// GetCluster returns the cluster, or nil if it does not exist.
func (c *RealClient) GetCluster(ctx context.Context, name string) (*container.Cluster, error) {
	cluster, err := c.svc.Projects.Locations.Clusters.Get(c.clusterPath(name)).Context(ctx).Do()
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cluster %s: %w", name, err)
	}
	return cluster, nil
}

// CreateCluster starts cluster creation and returns the operation name.
func (c *RealClient) CreateCluster(ctx context.Context, cluster *container.Cluster) (string, error) {
	req := &container.CreateClusterRequest{Cluster: cluster}
	op, err := c.svc.Projects.Locations.Clusters.Create(c.parent(), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create cluster %s: %w", cluster.Name, err)
	}
	return op.Name, nil
}

// DeleteCluster starts cluster deletion. Absent clusters are a no-op.
func (c *RealClient) DeleteCluster(ctx context.Context, name string) (string, error) {
	op, err := c.svc.Projects.Locations.Clusters.Delete(c.clusterPath(name)).Context(ctx).Do()
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to delete cluster %s: %w", name, err)
	}
	return op.Name, nil
}

// GetNodePool returns the named pool, or nil if it does not exist.
func (c *RealClient) GetNodePool(ctx context.Context, clusterName, poolName string) (*container.NodePool, error) {
	pool, err := c.svc.Projects.Locations.Clusters.NodePools.Get(c.nodePoolPath(clusterName, poolName)).Context(ctx).Do()
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get node pool %s/%s: %w", clusterName, poolName, err)
	}
	return pool, nil
}

// CreateNodePool starts pool creation and returns the operation name.
func (c *RealClient) CreateNodePool(ctx context.Context, clusterName string, pool *container.NodePool) (string, error) {
	req := &container.CreateNodePoolRequest{NodePool: pool}
	op, err := c.svc.Projects.Locations.Clusters.NodePools.Create(c.clusterPath(clusterName), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create node pool %s/%s: %w", clusterName, pool.Name, err)
	}
	return op.Name, nil
}

// DeleteNodePool starts pool deletion. Absent pools are a no-op.
func (c *RealClient) DeleteNodePool(ctx context.Context, clusterName, poolName string) (string, error) {
	op, err := c.svc.Projects.Locations.Clusters.NodePools.Delete(c.nodePoolPath(clusterName, poolName)).Context(ctx).Do()
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to delete node pool %s/%s: %w", clusterName, poolName, err)
	}
	return op.Name, nil
}

// SetNodePoolAutoscaling updates the autoscaling bounds of a pool.
func (c *RealClient) SetNodePoolAutoscaling(ctx context.Context, clusterName, poolName string, autoscaling *container.NodePoolAutoscaling) (string, error) {
	req := &container.SetNodePoolAutoscalingRequest{Autoscaling: autoscaling}
	op, err := c.svc.Projects.Locations.Clusters.NodePools.SetAutoscaling(c.nodePoolPath(clusterName, poolName), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update autoscaling for %s/%s: %w", clusterName, poolName, err)
	}
	return op.Name, nil
}

// WaitOperation polls the named operation until it reaches DONE. A failed
// operation's status message is returned verbatim.
func (c *RealClient) WaitOperation(ctx context.Context, opName string) error {
	if opName == "" {
		return nil
	}

	return retry.Do(ctx, func() error {
		op, err := c.svc.Projects.Locations.Operations.Get(c.operationPath(opName)).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to poll operation %s: %w", opName, err)
		}

		if op.Status != "DONE" {
			return fmt.Errorf("operation %s still %s", opName, op.Status)
		}
		if op.Error != nil {
			return retry.Fatal(fmt.Errorf("operation %s failed: %s", opName, op.Error.Message))
		}
		return nil
	},
		retry.WithMaxAttempts(120),
		retry.WithInitialDelay(5*time.Second),
		retry.WithMaxDelay(30*time.Second),
	)
}
